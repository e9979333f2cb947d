package helpers

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/distribution"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// MockDistributionRepository is a test double for distribution.Repository
type MockDistributionRepository struct {
	mu            sync.RWMutex
	distributions []*distribution.MaterialDistribution

	// CreateErr, when set, makes CreateBatch fail without storing anything
	CreateErr error
}

// NewMockDistributionRepository creates a new mock distribution repository
func NewMockDistributionRepository() *MockDistributionRepository {
	return &MockDistributionRepository{}
}

// Add stores a distribution directly
func (m *MockDistributionRepository) Add(d *distribution.MaterialDistribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.distributions = append(m.distributions, d)
}

// All returns every stored distribution
func (m *MockDistributionRepository) All() []*distribution.MaterialDistribution {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*distribution.MaterialDistribution(nil), m.distributions...)
}

// FindActiveKeys returns keys of active bulk distributions
func (m *MockDistributionRepository) FindActiveKeys(ctx context.Context, cultivationIDs []uuid.UUID) ([]distribution.Key, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := toSet(cultivationIDs)
	var keys []distribution.Key
	for _, d := range m.distributions {
		if _, ok := ids[d.PlotCultivationID()]; ok && d.IsBulk() && d.IsActive() {
			keys = append(keys, d.Key())
		}
	}
	return keys, nil
}

// CreateBatch stores the distributions
func (m *MockDistributionRepository) CreateBatch(ctx context.Context, distributions []*distribution.MaterialDistribution) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.distributions = append(m.distributions, distributions...)
	return nil
}

// FindByID returns a stored distribution
func (m *MockDistributionRepository) FindByID(ctx context.Context, id uuid.UUID) (*distribution.MaterialDistribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.distributions {
		if d.ID() == id {
			return d, nil
		}
	}
	return nil, shared.NewNotFoundError("material distribution", id.String())
}

// FindByPlotCultivations returns the distributions of the given cultivations
func (m *MockDistributionRepository) FindByPlotCultivations(ctx context.Context, cultivationIDs []uuid.UUID) ([]*distribution.MaterialDistribution, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := toSet(cultivationIDs)
	var result []*distribution.MaterialDistribution
	for _, d := range m.distributions {
		if _, ok := ids[d.PlotCultivationID()]; ok {
			result = append(result, d)
		}
	}
	return result, nil
}

// Update is a no-op: stored pointers are mutated in place
func (m *MockDistributionRepository) Update(ctx context.Context, d *distribution.MaterialDistribution) error {
	return nil
}
