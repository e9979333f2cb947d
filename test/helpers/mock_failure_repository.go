package helpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riceops/production-planning/internal/domain/activation"
)

// MockFailureRepository is a test double for activation.FailureRepository
type MockFailureRepository struct {
	mu      sync.RWMutex
	records []*activation.FailedActivation

	// RecordErr, when set, is returned by Record
	RecordErr error
}

// NewMockFailureRepository creates a new mock failure repository
func NewMockFailureRepository() *MockFailureRepository {
	return &MockFailureRepository{}
}

// All returns every stored record
func (m *MockFailureRepository) All() []*activation.FailedActivation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*activation.FailedActivation(nil), m.records...)
}

// Record stores a failure, replacing a pending one for the same plan and engine
func (m *MockFailureRepository) Record(ctx context.Context, f *activation.FailedActivation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecordErr != nil {
		return m.RecordErr
	}
	for i, r := range m.records {
		if r.PlanID() == f.PlanID() && r.Engine() == f.Engine() && r.Status() == activation.StatusPending {
			m.records[i] = f
			return nil
		}
	}
	m.records = append(m.records, f)
	return nil
}

// FindDue returns due pending records, oldest attempt first
func (m *MockFailureRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*activation.FailedActivation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []*activation.FailedActivation
	for _, r := range m.records {
		if r.IsDue(now) {
			due = append(due, r)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].NextAttemptAt().Before(due[j].NextAttemptAt())
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// Update is a no-op: stored pointers are mutated in place
func (m *MockFailureRepository) Update(ctx context.Context, f *activation.FailedActivation) error {
	return nil
}
