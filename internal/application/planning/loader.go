package planning

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/domain/cultivation"
	"github.com/riceops/production-planning/internal/domain/plan"
)

// Abort reasons shared by the activation engines
const (
	AbortPlanNotFound    = "plan not found"
	AbortPlanNotApproved = "plan is not approved"
	AbortNoTasks         = "plan has no stages or tasks"
	AbortNoCurrentSeason = "group has no current season"
	AbortAlreadyExpanded = "plan already expanded"
	AbortNoMaterials     = "no plan material could be resolved"
	AbortNoAnchorDate    = "no task has a scheduled end date"
)

// Eligibility is the set of cultivations an approved plan applies to
type Eligibility struct {
	SeasonID     uuid.UUID
	Cultivations []cultivation.PlotCultivation
	Versions     cultivation.VersionIndex
}

// IDs returns the ids of the eligible cultivations
func (e *Eligibility) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.Cultivations))
	for _, c := range e.Cultivations {
		ids = append(ids, c.ID)
	}
	return ids
}

// ActivationLoader reads the plan graph and eligible cultivations both engines work on
type ActivationLoader struct {
	plans        plan.Repository
	cultivations cultivation.Repository
}

// NewActivationLoader creates a new ActivationLoader
func NewActivationLoader(plans plan.Repository, cultivations cultivation.Repository) *ActivationLoader {
	return &ActivationLoader{plans: plans, cultivations: cultivations}
}

// LoadPlan fetches the plan snapshot.
// A non-empty abort reason means the engine must stop without side effects.
func (l *ActivationLoader) LoadPlan(ctx context.Context, planID uuid.UUID) (*plan.Snapshot, string, error) {
	snapshot, err := l.plans.FindSnapshot(ctx, planID)
	if err != nil {
		var notFound *plan.ErrPlanNotFound
		if errors.As(err, &notFound) {
			return nil, AbortPlanNotFound, nil
		}
		return nil, "", fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	if snapshot == nil {
		return nil, AbortPlanNotFound, nil
	}
	if !snapshot.Plan.IsApproved() {
		return nil, AbortPlanNotApproved, nil
	}
	if !snapshot.HasTasks() {
		return nil, AbortNoTasks, nil
	}
	return snapshot, "", nil
}

// LoadEligibility resolves the group's current season, keeps the latest
// cultivation per plot and loads their versions.
func (l *ActivationLoader) LoadEligibility(ctx context.Context, snapshot *plan.Snapshot) (*Eligibility, string, error) {
	if !snapshot.Group.HasCurrentSeason() {
		return nil, AbortNoCurrentSeason, nil
	}
	seasonID := *snapshot.Group.CurrentSeasonID

	eligibility := &Eligibility{SeasonID: seasonID, Versions: cultivation.VersionIndex{}}
	if len(snapshot.Group.PlotIDs) == 0 {
		return eligibility, "", nil
	}

	found, err := l.cultivations.FindByPlotsAndSeason(ctx, snapshot.Group.PlotIDs, seasonID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load plot cultivations: %w", err)
	}
	eligibility.Cultivations = cultivation.SelectEligible(found)
	if len(eligibility.Cultivations) == 0 {
		return eligibility, "", nil
	}

	versions, err := l.cultivations.FindVersions(ctx, eligibility.IDs())
	if err != nil {
		return nil, "", fmt.Errorf("failed to load cultivation versions: %w", err)
	}
	eligibility.Versions = cultivation.NewVersionIndex(versions)
	return eligibility, "", nil
}
