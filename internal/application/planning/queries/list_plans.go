package queries

import (
	"context"
	"fmt"

	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// ListPlansQuery fetches the most recent optimization requests of one office.
type ListPlansQuery struct {
	OfficeID uint
	Limit    int
}

// ListPlansResponse carries the plan headers, newest first. Orders and
// snapshots are not loaded; use GetPlanQuery for the full projection.
type ListPlansResponse struct {
	Plans []*types.PlanDTO
}

// ListPlansHandler handles the ListPlans query
type ListPlansHandler struct {
	plans planning.PlanRepository
}

// NewListPlansHandler creates a new ListPlansHandler
func NewListPlansHandler(plans planning.PlanRepository) *ListPlansHandler {
	return &ListPlansHandler{plans: plans}
}

// Handle executes the ListPlans query
func (h *ListPlansHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListPlansQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListPlansQuery")
	}

	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	results, err := h.plans.FindRecent(ctx, query.OfficeID, limit)
	if err != nil {
		return nil, err
	}

	plans := make([]*types.PlanDTO, 0, len(results))
	for _, result := range results {
		plans = append(plans, types.NewPlanDTO(result))
	}
	return &ListPlansResponse{Plans: plans}, nil
}
