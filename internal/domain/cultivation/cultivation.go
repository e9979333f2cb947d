package cultivation

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlotCultivation is one growing cycle of one plot in one season
type PlotCultivation struct {
	ID          uuid.UUID
	PlotID      uuid.UUID
	SeasonID    uuid.UUID
	VarietyID   uuid.UUID
	VarietyName string
	Area        decimal.Decimal
	CreatedAt   time.Time
}

// HasArea reports whether the cultivation has a positive planted area
func (c PlotCultivation) HasArea() bool {
	return c.Area.IsPositive()
}

// Version is a re-planning snapshot of a cultivation
type Version struct {
	ID                uuid.UUID
	PlotCultivationID uuid.UUID
	VersionOrder      int
	IsActive          bool
	CreatedAt         time.Time
}

// SelectEligible keeps the most recently created cultivation of each plot.
// Ties on CreatedAt are broken by id so the result is deterministic. The
// output is ordered by CreatedAt, then id.
func SelectEligible(cultivations []PlotCultivation) []PlotCultivation {
	latest := make(map[uuid.UUID]PlotCultivation, len(cultivations))
	for _, c := range cultivations {
		current, ok := latest[c.PlotID]
		if !ok || newer(c, current) {
			latest[c.PlotID] = c
		}
	}

	eligible := make([]PlotCultivation, 0, len(latest))
	for _, c := range latest {
		eligible = append(eligible, c)
	}
	sort.Slice(eligible, func(i, j int) bool {
		if !eligible[i].CreatedAt.Equal(eligible[j].CreatedAt) {
			return eligible[i].CreatedAt.Before(eligible[j].CreatedAt)
		}
		return eligible[i].ID.String() < eligible[j].ID.String()
	})
	return eligible
}

func newer(a, b PlotCultivation) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

// VersionIndex groups versions by cultivation
type VersionIndex map[uuid.UUID][]Version

// NewVersionIndex builds an index from a flat version list
func NewVersionIndex(versions []Version) VersionIndex {
	idx := make(VersionIndex)
	for _, v := range versions {
		idx[v.PlotCultivationID] = append(idx[v.PlotCultivationID], v)
	}
	return idx
}

// ActiveFor returns the active version of a cultivation.
// If the data holds several active rows the highest VersionOrder wins.
func (idx VersionIndex) ActiveFor(cultivationID uuid.UUID) (Version, bool) {
	var (
		active Version
		found  bool
	)
	for _, v := range idx[cultivationID] {
		if !v.IsActive {
			continue
		}
		if !found || v.VersionOrder > active.VersionOrder {
			active = v
			found = true
		}
	}
	return active, found
}
