package distribution

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DemandLine is one material requirement of one task on one cultivation
type DemandLine struct {
	PlotCultivationID  uuid.UUID
	MaterialID         uuid.UUID
	QuantityPerHectare decimal.Decimal
	Area               decimal.Decimal
}

// Demand is the total quantity of one material needed on one cultivation
type Demand struct {
	Key
	Quantity decimal.Decimal
}

// AggregateDemand sums quantityPerHectare x area per (cultivation, material).
// Lines with a non-positive area are ignored. Output keeps first-seen order.
func AggregateDemand(lines []DemandLine) []Demand {
	totals := make(map[Key]decimal.Decimal)
	var order []Key
	for _, line := range lines {
		if !line.Area.IsPositive() {
			continue
		}
		key := Key{PlotCultivationID: line.PlotCultivationID, MaterialID: line.MaterialID}
		current, seen := totals[key]
		if !seen {
			order = append(order, key)
			current = decimal.Zero
		}
		totals[key] = current.Add(line.QuantityPerHectare.Mul(line.Area))
	}

	demands := make([]Demand, 0, len(order))
	for _, key := range order {
		demands = append(demands, Demand{Key: key, Quantity: totals[key]})
	}
	return demands
}
