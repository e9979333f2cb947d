package material

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type classifies catalog materials
type Type string

const (
	TypeFertilizer Type = "FERTILIZER"
	TypePesticide  Type = "PESTICIDE"
	TypeSeed       Type = "SEED"
	TypeService    Type = "SERVICE"
	TypeOther      Type = "OTHER"
)

// Material is a catalog entry as seen by the planning engine.
//
// AmountPerMaterial is the package size: one purchasable unit holds
// AmountPerMaterial of Unit (e.g. one 50 kg sack). IsPartition marks
// materials that may be bought in fractional packages.
type Material struct {
	ID                uuid.UUID
	Name              string
	Type              Type
	Unit              string
	AmountPerMaterial decimal.Decimal
	IsPartition       bool
}

// PackageSize returns the purchasable package size, defaulting to 1
// when the catalog value is unset or not positive.
func (m *Material) PackageSize() decimal.Decimal {
	if m == nil || !m.AmountPerMaterial.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return m.AmountPerMaterial
}

// Catalog indexes materials by id
type Catalog map[uuid.UUID]*Material

// NewCatalog builds a catalog from a material list
func NewCatalog(materials []*Material) Catalog {
	catalog := make(Catalog, len(materials))
	for _, m := range materials {
		if m == nil {
			continue
		}
		catalog[m.ID] = m
	}
	return catalog
}

// Get returns the material with the given id, if present
func (c Catalog) Get(id uuid.UUID) (*Material, bool) {
	m, ok := c[id]
	return m, ok
}
