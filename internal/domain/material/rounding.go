package material

import "github.com/shopspring/decimal"

// RoundingPolicy converts a continuous requirement into purchasable packages.
//
// Non-partitionable materials are rounded up to whole packages so the
// purchased quantity never falls short of the requirement. Partitionable
// materials are bought exactly.
type RoundingPolicy struct {
	PackageSize   decimal.Decimal
	Partitionable bool
}

// Purchase is the result of applying a RoundingPolicy to one requirement
type Purchase struct {
	QuantityPerHectare decimal.Decimal
	Area               decimal.Decimal
	RequiredQuantity   decimal.Decimal
	Packages           decimal.Decimal
	ActualQuantity     decimal.Decimal
	UnitPrice          decimal.Decimal
	TotalCost          decimal.Decimal
}

// NewRoundingPolicy normalizes the package size (unset or <= 0 becomes 1)
func NewRoundingPolicy(packageSize decimal.Decimal, partitionable bool) RoundingPolicy {
	if !packageSize.IsPositive() {
		packageSize = decimal.NewFromInt(1)
	}
	return RoundingPolicy{PackageSize: packageSize, Partitionable: partitionable}
}

// PolicyFor builds the rounding policy of a catalog material
func PolicyFor(m *Material) RoundingPolicy {
	if m == nil {
		return NewRoundingPolicy(decimal.Zero, false)
	}
	return NewRoundingPolicy(m.AmountPerMaterial, m.IsPartition)
}

// Packages returns the number of packages needed to cover required
func (p RoundingPolicy) Packages(required decimal.Decimal) decimal.Decimal {
	size := p.size()
	if p.Partitionable {
		return required.Div(size)
	}
	return required.Div(size).Ceil()
}

// Apply computes required quantity, packages, actual quantity and cost
func (p RoundingPolicy) Apply(quantityPerHectare, area, unitPrice decimal.Decimal) Purchase {
	required := quantityPerHectare.Mul(area)
	packages := p.Packages(required)

	actual := required
	if !p.Partitionable {
		actual = packages.Mul(p.size())
	}

	return Purchase{
		QuantityPerHectare: quantityPerHectare,
		Area:               area,
		RequiredQuantity:   required,
		Packages:           packages,
		ActualQuantity:     actual,
		UnitPrice:          unitPrice,
		TotalCost:          packages.Mul(unitPrice),
	}
}

func (p RoundingPolicy) size() decimal.Decimal {
	if !p.PackageSize.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return p.PackageSize
}
