package settings

import (
	"context"
	"strconv"
	"strings"
)

// Store is the read-only system settings key/value store
type Store interface {
	// Lookup returns the raw value of key. found is false when the key is absent.
	Lookup(ctx context.Context, key string) (value string, found bool, err error)
}

// Source describes where a resolved setting came from
type Source string

const (
	SourceStore   Source = "store"
	SourceDefault Source = "default"
)

// IntValue is a resolved integer setting
type IntValue struct {
	Key    string
	Value  int
	Source Source
	// Raw holds the stored value when it was rejected and the default was used
	Raw      string
	rejected bool
}

// NonNegativeInt reads key as a whole number of days (or any count).
// Absent, unparsable or negative values resolve to def. Store errors are
// returned unchanged.
func NonNegativeInt(ctx context.Context, store Store, key string, def int) (IntValue, error) {
	raw, found, err := store.Lookup(ctx, key)
	if err != nil {
		return IntValue{}, err
	}
	if !found {
		return IntValue{Key: key, Value: def, Source: SourceDefault}, nil
	}

	n, parseErr := strconv.Atoi(strings.TrimSpace(raw))
	if parseErr != nil || n < 0 {
		return IntValue{Key: key, Value: def, Source: SourceDefault, Raw: raw, rejected: true}, nil
	}
	return IntValue{Key: key, Value: n, Source: SourceStore}, nil
}

// Rejected reports whether a stored value existed but could not be used
func (v IntValue) Rejected() bool {
	return v.rejected
}

// MapStore is an in-memory Store backed by a map
type MapStore map[string]string

// Lookup implements Store
func (m MapStore) Lookup(_ context.Context, key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}
