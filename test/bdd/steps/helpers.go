package steps

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return d, nil
}

// expectDecimal compares numerically so "1820" matches "1820.00"
func expectDecimal(what string, got decimal.Decimal, want string) error {
	expected, err := parseDecimal(want)
	if err != nil {
		return err
	}
	if !got.Equal(expected) {
		return fmt.Errorf("expected %s %s, got %s", what, expected, got)
	}
	return nil
}

func expectDate(what string, got time.Time, want string) error {
	if got.Format(dateLayout) != want {
		return fmt.Errorf("expected %s %s, got %s", what, want, got.Format(dateLayout))
	}
	return nil
}
