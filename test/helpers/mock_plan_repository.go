package helpers

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/plan"
)

// MockPlanRepository is a test double for plan.Repository
type MockPlanRepository struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*plan.Snapshot

	// FindErr, when set, is returned by FindSnapshot
	FindErr error
}

// NewMockPlanRepository creates a new mock plan repository
func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{snapshots: make(map[uuid.UUID]*plan.Snapshot)}
}

// AddSnapshot stores a plan snapshot
func (m *MockPlanRepository) AddSnapshot(s *plan.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[s.Plan.ID] = s
}

// FindSnapshot returns the stored snapshot or *plan.ErrPlanNotFound
func (m *MockPlanRepository) FindSnapshot(ctx context.Context, planID uuid.UUID) (*plan.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	s, ok := m.snapshots[planID]
	if !ok {
		return nil, &plan.ErrPlanNotFound{ID: planID.String()}
	}
	return s, nil
}
