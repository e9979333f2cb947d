package helpers

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/costing"
	"github.com/riceops/production-planning/internal/domain/cultivation"
)

// MockCultivationRepository is a test double for cultivation.Repository
type MockCultivationRepository struct {
	mu           sync.RWMutex
	cultivations []cultivation.PlotCultivation
	versions     []cultivation.Version
}

// NewMockCultivationRepository creates a new mock cultivation repository
func NewMockCultivationRepository() *MockCultivationRepository {
	return &MockCultivationRepository{}
}

// AddCultivation stores a plot cultivation
func (m *MockCultivationRepository) AddCultivation(c cultivation.PlotCultivation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cultivations = append(m.cultivations, c)
}

// AddVersion stores a cultivation version
func (m *MockCultivationRepository) AddVersion(v cultivation.Version) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions = append(m.versions, v)
}

// Get returns a stored cultivation by id
func (m *MockCultivationRepository) Get(id uuid.UUID) (cultivation.PlotCultivation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.cultivations {
		if c.ID == id {
			return c, true
		}
	}
	return cultivation.PlotCultivation{}, false
}

// FindByPlotsAndSeason returns the cultivations of the plots in the season
func (m *MockCultivationRepository) FindByPlotsAndSeason(ctx context.Context, plotIDs []uuid.UUID, seasonID uuid.UUID) ([]cultivation.PlotCultivation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plots := toSet(plotIDs)
	var result []cultivation.PlotCultivation
	for _, c := range m.cultivations {
		if _, ok := plots[c.PlotID]; ok && c.SeasonID == seasonID {
			result = append(result, c)
		}
	}
	return result, nil
}

// FindVersions returns the versions of the given cultivations
func (m *MockCultivationRepository) FindVersions(ctx context.Context, cultivationIDs []uuid.UUID) ([]cultivation.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := toSet(cultivationIDs)
	var result []cultivation.Version
	for _, v := range m.versions {
		if _, ok := ids[v.PlotCultivationID]; ok {
			result = append(result, v)
		}
	}
	return result, nil
}

// MockTaskRepository is a test double for cultivation.TaskRepository.
// Material lines are projected through the plan, cultivation and material mocks.
type MockTaskRepository struct {
	mu    sync.RWMutex
	tasks []*cultivation.CultivationTask

	plans        *MockPlanRepository
	cultivations *MockCultivationRepository
	materials    *MockMaterialRepository

	// CreateErr, when set, makes CreateBatch fail without storing anything
	CreateErr error
	// CreateCalls counts CreateBatch invocations
	CreateCalls int
}

// NewMockTaskRepository creates a new mock task repository
func NewMockTaskRepository(plans *MockPlanRepository, cultivations *MockCultivationRepository, materials *MockMaterialRepository) *MockTaskRepository {
	return &MockTaskRepository{plans: plans, cultivations: cultivations, materials: materials}
}

// Tasks returns every stored task
func (m *MockTaskRepository) Tasks() []*cultivation.CultivationTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*cultivation.CultivationTask(nil), m.tasks...)
}

// ExistsForPlanTasks reports whether any stored task references a plan task
func (m *MockTaskRepository) ExistsForPlanTasks(ctx context.Context, planTaskIDs []uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := toSet(planTaskIDs)
	for _, t := range m.tasks {
		if _, ok := ids[t.PlanTaskID()]; ok {
			return true, nil
		}
	}
	return false, nil
}

// CreateBatch stores the tasks
func (m *MockTaskRepository) CreateBatch(ctx context.Context, tasks []*cultivation.CultivationTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.tasks = append(m.tasks, tasks...)
	return nil
}

// FindByPlanTasks returns the stored tasks generated from the plan tasks
func (m *MockTaskRepository) FindByPlanTasks(ctx context.Context, planTaskIDs []uuid.UUID) ([]*cultivation.CultivationTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := toSet(planTaskIDs)
	var result []*cultivation.CultivationTask
	for _, t := range m.tasks {
		if _, ok := ids[t.PlanTaskID()]; ok {
			result = append(result, t)
		}
	}
	return result, nil
}

// FindMaterialLinesByPlan projects stored material lines into cost line items
func (m *MockTaskRepository) FindMaterialLinesByPlan(ctx context.Context, planID uuid.UUID) ([]costing.LineItem, error) {
	snapshot, err := m.plans.FindSnapshot(ctx, planID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []costing.LineItem
	for _, ref := range snapshot.TasksInSequence() {
		for _, t := range m.tasks {
			if t.PlanTaskID() != ref.Task.ID {
				continue
			}
			c, _ := m.cultivations.Get(t.PlotCultivationID())
			for _, line := range t.Materials() {
				item := costing.LineItem{
					TaskID:             ref.Task.ID,
					CultivationTaskID:  t.ID(),
					TaskName:           ref.Task.Name,
					StageName:          ref.Stage.Name,
					StageSequence:      ref.Stage.SequenceOrder,
					TaskSequence:       ref.Task.SequenceOrder,
					MaterialID:         line.MaterialID,
					PlotCultivationID:  c.ID,
					PlotID:             c.PlotID,
					VarietyID:          c.VarietyID,
					VarietyName:        c.VarietyName,
					Area:               c.Area,
					QuantityPerHectare: line.QuantityPerHectare,
					RequiredQuantity:   line.RequiredQuantity,
					Packages:           line.Packages,
					UnitPrice:          line.UnitPrice,
					TotalCost:          line.TotalCost,
				}
				if mat, ok := m.materials.Get(line.MaterialID); ok {
					item.MaterialName = mat.Name
					item.Unit = mat.Unit
				}
				items = append(items, item)
			}
		}
	}
	return items, nil
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
