package queries

import (
	"context"
	"fmt"

	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// GetPlanQuery fetches one optimization request with its orders, corrections
// and inventory projections.
type GetPlanQuery struct {
	PlanID uint
}

// GetPlanResponse carries the plan projection.
type GetPlanResponse struct {
	Plan *types.PlanDTO
}

// GetPlanHandler handles the GetPlan query
type GetPlanHandler struct {
	plans planning.PlanRepository
}

// NewGetPlanHandler creates a new GetPlanHandler
func NewGetPlanHandler(plans planning.PlanRepository) *GetPlanHandler {
	return &GetPlanHandler{plans: plans}
}

// Handle executes the GetPlan query
func (h *GetPlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*GetPlanQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *GetPlanQuery")
	}

	result, err := h.plans.FindWithResults(ctx, query.PlanID)
	if err != nil {
		return nil, err
	}

	return &GetPlanResponse{Plan: types.NewPlanDTO(result)}, nil
}
