package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/application/planning"
	"github.com/riceops/production-planning/internal/application/planning/commands"
	"github.com/riceops/production-planning/internal/domain/costing"
)

const dateLayout = "2006-01-02"

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func parseID(flag, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("--%s is required", flag)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	return id, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatDate(*t)
}

func printOutcome(out io.Writer, engine string, o planning.Outcome) {
	switch {
	case o.Failed:
		fmt.Fprintf(out, "%s: FAILED (%s)\n", engine, o.Error)
	case o.Aborted:
		fmt.Fprintf(out, "%s: aborted (%s)\n", engine, o.AbortReason)
	default:
		fmt.Fprintf(out, "%s: ok\n", engine)
	}
	for _, w := range o.Warnings {
		fmt.Fprintf(out, "  warning: %s\n", w)
	}
}

func printExpansion(out io.Writer, r *commands.ExpansionReport) {
	printOutcome(out, "Expansion", r.Outcome)
	if !r.Succeeded() {
		return
	}

	w := newTable(out)
	fmt.Fprintf(w, "  Price date:\t%s\n", formatDate(r.PriceAsOf))
	fmt.Fprintf(w, "  Eligible cultivations:\t%d\n", r.EligibleCultivations)
	fmt.Fprintf(w, "  Tasks created:\t%d\n", r.TasksCreated)
	fmt.Fprintf(w, "  Material lines:\t%d\n", r.TaskMaterialsCreated)
	fmt.Fprintf(w, "  Skipped materials:\t%d\n", r.SkippedMaterials)
	fmt.Fprintf(w, "  Skipped cultivations:\t%d\n", r.SkippedCultivations+r.VersionlessCultivations)
	if r.SkippedTasks > 0 {
		fmt.Fprintf(w, "  Skipped tasks:\t%d\n", r.SkippedTasks)
	}
	if r.PromotedTaskID != nil {
		fmt.Fprintf(w, "  In progress:\t%s\n", r.PromotedTaskID)
	}
	if r.Cost != nil {
		fmt.Fprintf(w, "  Total cost:\t%s\n", r.Cost.Overview.GrandTotal.StringFixed(2))
	}
	w.Flush()
}

func printDistribution(out io.Writer, r *commands.DistributionReport) {
	printOutcome(out, "Distribution", r.Outcome)
	if !r.Succeeded() {
		return
	}

	w := newTable(out)
	if r.Schedule != nil {
		fmt.Fprintf(w, "  Scheduled:\t%s\n", formatDate(r.Schedule.ScheduledDate))
		fmt.Fprintf(w, "  Supervisor deadline:\t%s\n", formatDate(r.Schedule.SupervisorConfirmationDeadline))
		fmt.Fprintf(w, "  Farmer deadline:\t%s\n", formatDate(r.Schedule.FarmerConfirmationDeadline))
		fmt.Fprintf(w, "  Distribution deadline:\t%s\n", formatDate(r.Schedule.DistributionDeadline))
	}
	fmt.Fprintf(w, "  Demands:\t%d\n", r.Demands)
	fmt.Fprintf(w, "  Created:\t%d\n", r.Created)
	fmt.Fprintf(w, "  Already scheduled:\t%d\n", r.SkippedExisting)
	w.Flush()
}

func printCostOverview(out io.Writer, o costing.Overview) {
	w := newTable(out)
	fmt.Fprintf(w, "Grand total:\t%s\n", o.GrandTotal.StringFixed(2))
	fmt.Fprintf(w, "Total area (ha):\t%s\n", o.TotalArea.StringFixed(2))
	fmt.Fprintf(w, "Cost per hectare:\t%s\n", o.CostPerHectare.StringFixed(2))
	fmt.Fprintf(w, "Lines:\t%d\n", o.ItemCount)
	fmt.Fprintf(w, "Materials / tasks / plots:\t%d / %d / %d\n", o.MaterialCount, o.TaskCount, o.PlotCount)
	w.Flush()
}

func printCostBreakdown(out io.Writer, report *costing.Report, by string) error {
	w := newTable(out)
	defer w.Flush()

	switch by {
	case "material":
		fmt.Fprintln(w, "MATERIAL\tUNIT\tUNIT PRICE\tREQUIRED\tPACKAGES\tCOST")
		for _, m := range report.Materials {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				m.MaterialName, m.Unit, m.UnitPrice.StringFixed(2), m.TotalRequired.String(),
				m.TotalPackages.String(), m.TotalCost.StringFixed(2))
		}
	case "task":
		fmt.Fprintln(w, "STAGE\tTASK\tMATERIALS\tCOST")
		for _, t := range report.Tasks {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", t.StageName, t.TaskName, t.MaterialCount, t.TotalCost.StringFixed(2))
		}
	case "variety":
		fmt.Fprintln(w, "VARIETY\tPLOTS\tAREA\tCOST\tCOST/HA")
		for _, v := range report.Varieties {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
				v.VarietyName, v.PlotCount, v.Area.StringFixed(2), v.TotalCost.StringFixed(2), v.CostPerHectare.StringFixed(2))
		}
	case "plot":
		fmt.Fprintln(w, "PLOT\tAREA\tCOST\tCOST/HA")
		for _, p := range report.Plots {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				p.PlotID, p.Area.StringFixed(2), p.TotalCost.StringFixed(2), p.CostPerHectare.StringFixed(2))
		}
	default:
		return fmt.Errorf("unknown breakdown %q (want material, task, variety or plot)", by)
	}
	return nil
}
