package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/riceops/production-planning/internal/application/planning/queries"
)

// NewPriceCommand creates the price lookup command
func NewPriceCommand() *cobra.Command {
	var (
		materialFlag string
		asOfFlag     string
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Resolve the price of a material on a date",
		Long: `Resolve the price row of a material that covers a date.
When several rows cover the date the one with the latest start wins.

Example:
  planengine price --material <material-id> --as-of 2024-07-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			materialID, err := parseID("material", materialFlag)
			if err != nil {
				return err
			}

			query := &queries.GetMaterialPriceQuery{MaterialID: materialID}
			if asOfFlag != "" {
				asOf, err := time.ParseInLocation(dateLayout, asOfFlag, time.UTC)
				if err != nil {
					return fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", asOfFlag)
				}
				query.AsOf = &asOf
			}

			a, ctx, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			response, err := a.mediator.Send(ctx, query)
			if err != nil {
				return fmt.Errorf("price lookup failed: %w", err)
			}
			result, ok := response.(*queries.GetMaterialPriceResponse)
			if !ok {
				return fmt.Errorf("unexpected response type %T", response)
			}

			out := cmd.OutOrStdout()
			if !result.Found {
				fmt.Fprintf(out, "No price for %s on %s\n", result.Material.Name, formatDate(result.AsOf))
				return nil
			}

			w := newTable(out)
			fmt.Fprintf(w, "Material:\t%s (%s)\n", result.Material.Name, result.Material.Unit)
			fmt.Fprintf(w, "Package size:\t%s\n", result.Material.PackageSize().String())
			fmt.Fprintf(w, "Price:\t%s\n", result.Price.PricePerMaterial.StringFixed(2))
			fmt.Fprintf(w, "Valid:\t%s to %s\n", formatDate(result.Price.ValidFrom), formatOptionalDate(result.Price.ValidTo))
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&materialFlag, "material", "", "Material ID (required)")
	cmd.Flags().StringVar(&asOfFlag, "as-of", "", "Date to resolve at, YYYY-MM-DD (default: today)")
	cmd.MarkFlagRequired("material")
	return cmd
}
