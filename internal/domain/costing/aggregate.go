package costing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialSummary totals one material across every line item
type MaterialSummary struct {
	MaterialID    uuid.UUID
	MaterialName  string
	Unit          string
	UnitPrice     decimal.Decimal
	TotalRequired decimal.Decimal
	TotalPackages decimal.Decimal
	TotalCost     decimal.Decimal
	LineCount     int
}

// TaskSummary totals one plan task across every cultivation it was applied to
type TaskSummary struct {
	TaskID        uuid.UUID
	TaskName      string
	StageName     string
	StageSequence int
	TaskSequence  int
	TotalCost     decimal.Decimal
	MaterialCount int
	LineCount     int
}

// VarietySummary totals the cultivations planted with one variety
type VarietySummary struct {
	VarietyID      uuid.UUID
	VarietyName    string
	Area           decimal.Decimal
	TotalCost      decimal.Decimal
	CostPerHectare decimal.Decimal
	PlotCount      int
}

// PlotSummary totals one plot cultivation
type PlotSummary struct {
	PlotCultivationID uuid.UUID
	PlotID            uuid.UUID
	VarietyID         uuid.UUID
	Area              decimal.Decimal
	TotalCost         decimal.Decimal
	CostPerHectare    decimal.Decimal
	LineCount         int
}

// Overview is the headline of a cost analysis
type Overview struct {
	GrandTotal     decimal.Decimal
	TotalArea      decimal.Decimal
	CostPerHectare decimal.Decimal
	ItemCount      int
	MaterialCount  int
	TaskCount      int
	PlotCount      int
}

// Report is the full cost breakdown of a set of line items
type Report struct {
	Overview  Overview
	Materials []MaterialSummary
	Tasks     []TaskSummary
	Varieties []VarietySummary
	Plots     []PlotSummary
}

// Aggregate folds line items into per-material, per-task, per-variety and
// per-plot totals. Totals are plain sums; area is counted once per plot
// cultivation no matter how many lines reference it.
func Aggregate(items []LineItem) *Report {
	var (
		materials     = make(map[uuid.UUID]*MaterialSummary)
		materialOrder []uuid.UUID
		tasks         = make(map[uuid.UUID]*TaskSummary)
		taskMaterials = make(map[uuid.UUID]map[uuid.UUID]struct{})
		varieties     = make(map[uuid.UUID]*VarietySummary)
		varietyOrder  []uuid.UUID
		plots         = make(map[uuid.UUID]*PlotSummary)
		plotOrder     []uuid.UUID
		grandTotal    = decimal.Zero
	)

	for _, item := range items {
		grandTotal = grandTotal.Add(item.TotalCost)

		m, ok := materials[item.MaterialID]
		if !ok {
			m = &MaterialSummary{
				MaterialID:   item.MaterialID,
				MaterialName: item.MaterialName,
				Unit:         item.Unit,
				UnitPrice:    item.UnitPrice,
			}
			materials[item.MaterialID] = m
			materialOrder = append(materialOrder, item.MaterialID)
		}
		m.TotalRequired = m.TotalRequired.Add(item.RequiredQuantity)
		m.TotalPackages = m.TotalPackages.Add(item.Packages)
		m.TotalCost = m.TotalCost.Add(item.TotalCost)
		m.LineCount++

		t, ok := tasks[item.TaskID]
		if !ok {
			t = &TaskSummary{
				TaskID:        item.TaskID,
				TaskName:      item.TaskName,
				StageName:     item.StageName,
				StageSequence: item.StageSequence,
				TaskSequence:  item.TaskSequence,
			}
			tasks[item.TaskID] = t
			taskMaterials[item.TaskID] = make(map[uuid.UUID]struct{})
		}
		t.TotalCost = t.TotalCost.Add(item.TotalCost)
		t.LineCount++
		taskMaterials[item.TaskID][item.MaterialID] = struct{}{}

		p, ok := plots[item.PlotCultivationID]
		if !ok {
			p = &PlotSummary{
				PlotCultivationID: item.PlotCultivationID,
				PlotID:            item.PlotID,
				VarietyID:         item.VarietyID,
				Area:              item.Area,
			}
			plots[item.PlotCultivationID] = p
			plotOrder = append(plotOrder, item.PlotCultivationID)

			v, seen := varieties[item.VarietyID]
			if !seen {
				v = &VarietySummary{VarietyID: item.VarietyID, VarietyName: item.VarietyName}
				varieties[item.VarietyID] = v
				varietyOrder = append(varietyOrder, item.VarietyID)
			}
			v.Area = v.Area.Add(item.Area)
			v.PlotCount++
		}
		p.TotalCost = p.TotalCost.Add(item.TotalCost)
		p.LineCount++
		varieties[p.VarietyID].TotalCost = varieties[p.VarietyID].TotalCost.Add(item.TotalCost)
	}

	report := &Report{}

	totalArea := decimal.Zero
	for _, id := range plotOrder {
		p := plots[id]
		p.CostPerHectare = perHectare(p.TotalCost, p.Area)
		totalArea = totalArea.Add(p.Area)
		report.Plots = append(report.Plots, *p)
	}

	for _, id := range materialOrder {
		report.Materials = append(report.Materials, *materials[id])
	}

	for id, t := range tasks {
		t.MaterialCount = len(taskMaterials[id])
		report.Tasks = append(report.Tasks, *t)
	}
	sort.SliceStable(report.Tasks, func(i, j int) bool {
		a, b := report.Tasks[i], report.Tasks[j]
		if a.StageSequence != b.StageSequence {
			return a.StageSequence < b.StageSequence
		}
		if a.TaskSequence != b.TaskSequence {
			return a.TaskSequence < b.TaskSequence
		}
		return a.TaskName < b.TaskName
	})

	for _, id := range varietyOrder {
		v := varieties[id]
		v.CostPerHectare = perHectare(v.TotalCost, v.Area)
		report.Varieties = append(report.Varieties, *v)
	}

	report.Overview = Overview{
		GrandTotal:     grandTotal,
		TotalArea:      totalArea,
		CostPerHectare: perHectare(grandTotal, totalArea),
		ItemCount:      len(items),
		MaterialCount:  len(report.Materials),
		TaskCount:      len(report.Tasks),
		PlotCount:      len(report.Plots),
	}
	return report
}

// TaskTotal returns the sum of the per-task totals
func (r *Report) TaskTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range r.Tasks {
		total = total.Add(t.TotalCost)
	}
	return total
}

func perHectare(cost, area decimal.Decimal) decimal.Decimal {
	if !area.IsPositive() {
		return decimal.Zero
	}
	return cost.Div(area)
}
