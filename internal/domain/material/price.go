package material

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceops/production-planning/internal/domain/shared"
)

// ErrPriceUnavailable signals that no price row covers the requested date.
// It is a soft condition: callers skip the material and keep going.
var ErrPriceUnavailable = errors.New("price unavailable")

// PriceUnavailableError carries the material and date that failed to resolve
type PriceUnavailableError struct {
	MaterialID uuid.UUID
	AsOf       time.Time
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price for material %s as of %s", e.MaterialID, e.AsOf.Format("2006-01-02"))
}

func (e *PriceUnavailableError) Is(target error) bool {
	return target == ErrPriceUnavailable
}

// OverlappingPriceError reports two price rows whose validity intervals intersect
type OverlappingPriceError struct {
	MaterialID uuid.UUID
	First      uuid.UUID
	Second     uuid.UUID
}

func (e *OverlappingPriceError) Error() string {
	return fmt.Sprintf("material %s has overlapping prices %s and %s", e.MaterialID, e.First, e.Second)
}

// Price is one row of a material's price history.
// ValidTo == nil means the price is open-ended (current).
type Price struct {
	ID               uuid.UUID
	MaterialID       uuid.UUID
	PricePerMaterial decimal.Decimal
	ValidFrom        time.Time
	ValidTo          *time.Time
}

// Covers reports whether the row is valid on asOf.
// ValidTo is compared at calendar-day granularity so a row ending "today"
// still covers any time of that day.
func (p Price) Covers(asOf time.Time) bool {
	if p.ValidFrom.After(asOf) {
		return false
	}
	if p.ValidTo == nil {
		return true
	}
	return !p.ValidTo.Before(shared.StartOfDay(asOf))
}

// IsOpenEnded reports whether the row has no end date
func (p Price) IsOpenEnded() bool {
	return p.ValidTo == nil
}

// PriceHistory is the ordered set of price rows of one material
type PriceHistory struct {
	materialID uuid.UUID
	prices     []Price
}

// NewPriceHistory builds a history sorted by ValidFrom ascending
func NewPriceHistory(materialID uuid.UUID, prices []Price) *PriceHistory {
	sorted := make([]Price, 0, len(prices))
	for _, p := range prices {
		if p.MaterialID == materialID {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ValidFrom.Before(sorted[j].ValidFrom)
	})
	return &PriceHistory{materialID: materialID, prices: sorted}
}

// MaterialID returns the material this history belongs to
func (h *PriceHistory) MaterialID() uuid.UUID {
	return h.materialID
}

// Len returns the number of rows
func (h *PriceHistory) Len() int {
	return len(h.prices)
}

// ResolveAt returns the single price valid on asOf.
// When several rows qualify the one with the latest ValidFrom wins.
func (h *PriceHistory) ResolveAt(asOf time.Time) (Price, error) {
	var (
		best  Price
		found bool
	)
	for _, p := range h.prices {
		if !p.Covers(asOf) {
			continue
		}
		if !found || p.ValidFrom.After(best.ValidFrom) {
			best = p
			found = true
		}
	}
	if !found {
		return Price{}, &PriceUnavailableError{MaterialID: h.materialID, AsOf: asOf}
	}
	return best, nil
}

// Validate checks that no two rows cover the same day.
// A row is valid through the whole day of its ValidTo, as in Covers.
func (h *PriceHistory) Validate() error {
	for i := 1; i < len(h.prices); i++ {
		prev, cur := h.prices[i-1], h.prices[i]
		if prev.ValidTo == nil || !shared.StartOfDay(*prev.ValidTo).Before(shared.StartOfDay(cur.ValidFrom)) {
			return &OverlappingPriceError{MaterialID: h.materialID, First: prev.ID, Second: cur.ID}
		}
	}
	return nil
}

// PriceBook groups price histories by material
type PriceBook map[uuid.UUID]*PriceHistory

// NewPriceBook partitions a flat list of price rows by material
func NewPriceBook(prices []Price) PriceBook {
	grouped := make(map[uuid.UUID][]Price)
	for _, p := range prices {
		grouped[p.MaterialID] = append(grouped[p.MaterialID], p)
	}
	book := make(PriceBook, len(grouped))
	for materialID, rows := range grouped {
		book[materialID] = NewPriceHistory(materialID, rows)
	}
	return book
}

// Validate returns the first overlap in the history of materialID, if any
func (b PriceBook) Validate(materialID uuid.UUID) error {
	history, ok := b[materialID]
	if !ok {
		return nil
	}
	return history.Validate()
}

// ResolveAt resolves the price of one material on asOf
func (b PriceBook) ResolveAt(materialID uuid.UUID, asOf time.Time) (Price, error) {
	history, ok := b[materialID]
	if !ok {
		return Price{}, &PriceUnavailableError{MaterialID: materialID, AsOf: asOf}
	}
	return history.ResolveAt(asOf)
}
