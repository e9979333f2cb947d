package queries

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/riceops/production-planning/internal/application/common"
	"github.com/riceops/production-planning/internal/domain/costing"
	"github.com/riceops/production-planning/internal/domain/cultivation"
	"github.com/riceops/production-planning/internal/domain/shared"
)

// GetPlanCostAnalysisQuery requests the cost breakdown of an expanded plan
type GetPlanCostAnalysisQuery struct {
	PlanID uuid.UUID
}

// GetPlanCostAnalysisResponse contains the aggregated costs
type GetPlanCostAnalysisResponse struct {
	PlanID uuid.UUID
	Report *costing.Report
}

// GetPlanCostAnalysisHandler handles the GetPlanCostAnalysis query
type GetPlanCostAnalysisHandler struct {
	tasks cultivation.TaskRepository
}

// NewGetPlanCostAnalysisHandler creates a new GetPlanCostAnalysisHandler
func NewGetPlanCostAnalysisHandler(tasks cultivation.TaskRepository) *GetPlanCostAnalysisHandler {
	return &GetPlanCostAnalysisHandler{tasks: tasks}
}

// Handle executes the GetPlanCostAnalysis query
func (h *GetPlanCostAnalysisHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetPlanCostAnalysisQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlanCostAnalysisQuery")
	}
	if query.PlanID == uuid.Nil {
		return nil, shared.NewValidationError("plan_id", "required")
	}

	lines, err := h.tasks.FindMaterialLinesByPlan(ctx, query.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load material lines: %w", err)
	}

	return &GetPlanCostAnalysisResponse{
		PlanID: query.PlanID,
		Report: costing.Aggregate(lines),
	}, nil
}
