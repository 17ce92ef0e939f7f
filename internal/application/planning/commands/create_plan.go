package commands

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/application/planning/services"
	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// CreatePlanCommand requests one optimization run.
type CreatePlanCommand struct {
	Request *types.CreatePlanRequest
}

// CreatePlanResponse carries the persisted plan projection.
type CreatePlanResponse struct {
	Plan *types.PlanDTO
}

// CreatePlanHandler handles the CreatePlan command
type CreatePlanHandler struct {
	planner  *services.PlannerService
	validate *validator.Validate
}

// NewCreatePlanHandler creates a new CreatePlanHandler
func NewCreatePlanHandler(planner *services.PlannerService) *CreatePlanHandler {
	return &CreatePlanHandler{
		planner:  planner,
		validate: validator.New(),
	}
}

// Handle executes the CreatePlan command
func (h *CreatePlanHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*CreatePlanCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *CreatePlanCommand")
	}

	if err := h.validate.Struct(cmd.Request); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return nil, planning.NewInvalidInputError(first.Field(),
				fmt.Sprintf("failed validation on %q", first.Tag()))
		}
		return nil, planning.NewInvalidInputError("request", err.Error())
	}

	result, err := h.planner.Run(ctx, cmd.Request)
	if err != nil {
		return nil, err
	}

	return &CreatePlanResponse{Plan: types.NewPlanDTO(result)}, nil
}
