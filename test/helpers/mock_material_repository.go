package helpers

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/material"
)

// MockMaterialRepository is a test double for material.Repository
type MockMaterialRepository struct {
	mu        sync.RWMutex
	materials map[uuid.UUID]*material.Material
	prices    []material.Price
}

// NewMockMaterialRepository creates a new mock material repository
func NewMockMaterialRepository() *MockMaterialRepository {
	return &MockMaterialRepository{materials: make(map[uuid.UUID]*material.Material)}
}

// AddMaterial stores a catalog entry
func (m *MockMaterialRepository) AddMaterial(mat *material.Material) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materials[mat.ID] = mat
}

// AddPrice stores a price row
func (m *MockMaterialRepository) AddPrice(p material.Price) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices = append(m.prices, p)
}

// Get returns a stored material
func (m *MockMaterialRepository) Get(id uuid.UUID) (*material.Material, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mat, ok := m.materials[id]
	return mat, ok
}

// FindByIDs returns the known materials among ids
func (m *MockMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*material.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*material.Material
	for _, id := range ids {
		if mat, ok := m.materials[id]; ok {
			result = append(result, mat)
		}
	}
	return result, nil
}

// FindPricesByMaterialIDs returns every price row of the given materials
func (m *MockMaterialRepository) FindPricesByMaterialIDs(ctx context.Context, ids []uuid.UUID) ([]material.Price, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := toSet(ids)
	var result []material.Price
	for _, p := range m.prices {
		if _, ok := set[p.MaterialID]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}
