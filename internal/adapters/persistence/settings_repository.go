package persistence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/riceops/production-planning/internal/domain/settings"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// GormSettingsStore implements settings.Store over the system_settings table
type GormSettingsStore struct {
	db    *gorm.DB
	clock shared.Clock
}

// NewGormSettingsStore creates a new GORM settings store
func NewGormSettingsStore(db *gorm.DB, clock shared.Clock) *GormSettingsStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &GormSettingsStore{db: db, clock: clock}
}

// Lookup returns the raw value stored under key
func (s *GormSettingsStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	var model SystemSettingModel
	if err := s.db.WithContext(ctx).Where("setting_key = ?", key).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return model.Value, true, nil
}

// Set inserts or replaces a setting
func (s *GormSettingsStore) Set(ctx context.Context, key, value, description string) error {
	model := &SystemSettingModel{
		Key:         key,
		Value:       value,
		Description: description,
		UpdatedAt:   s.clock.Now(),
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "description", "updated_at"}),
	}).Create(model).Error; err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

type cachedSetting struct {
	value    string
	found    bool
	loadedAt time.Time
}

// CachedSettingsStore memoizes lookups of another store for ttl.
// A zero ttl keeps entries for the life of the process.
type CachedSettingsStore struct {
	inner settings.Store
	clock shared.Clock
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cachedSetting
}

// NewCachedSettingsStore wraps inner with a read-through cache
func NewCachedSettingsStore(inner settings.Store, clock shared.Clock, ttl time.Duration) *CachedSettingsStore {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	return &CachedSettingsStore{
		inner:   inner,
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]cachedSetting),
	}
}

// Lookup implements settings.Store. Errors are not cached.
func (c *CachedSettingsStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	now := c.clock.Now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.fresh(entry, now) {
		return entry.value, entry.found, nil
	}

	value, found, err := c.inner.Lookup(ctx, key)
	if err != nil {
		return "", false, err
	}

	c.mu.Lock()
	c.entries[key] = cachedSetting{value: value, found: found, loadedAt: now}
	c.mu.Unlock()

	return value, found, nil
}

// Invalidate drops every cached entry
func (c *CachedSettingsStore) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cachedSetting)
	c.mu.Unlock()
}

func (c *CachedSettingsStore) fresh(entry cachedSetting, now time.Time) bool {
	return c.ttl <= 0 || now.Sub(entry.loadedAt) < c.ttl
}
