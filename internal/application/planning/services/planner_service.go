package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
	"github.com/beanfleet/coffeeplan/internal/domain/planning/milp"
	"github.com/beanfleet/coffeeplan/internal/solver"
)

// ErrPlannerBusy is returned when every solver slot is taken. Callers should
// retry later; no work was started.
var ErrPlannerBusy = errors.New("planner at capacity")

// PlannerService orchestrates one planning run end to end: assemble the
// parameters, build the MILP, solve it, project the solution and persist the
// result. Concurrent runs are capped by a weighted semaphore so a burst of
// requests cannot stack up solver processes.
type PlannerService struct {
	assembler *ParameterAssembler
	projector *PlanProjector
	plans     planning.PlanRepository
	opts      solver.Options
	slots     *semaphore.Weighted
}

// NewPlannerService creates the planner with the given solver options and
// concurrency cap.
func NewPlannerService(
	assembler *ParameterAssembler,
	projector *PlanProjector,
	plans planning.PlanRepository,
	opts solver.Options,
	maxConcurrent int64,
) *PlannerService {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &PlannerService{
		assembler: assembler,
		projector: projector,
		plans:     plans,
		opts:      opts,
		slots:     semaphore.NewWeighted(maxConcurrent),
	}
}

// Run executes one planning request. Every terminal solver status is
// persisted; only OPTIMAL results carry orders and snapshots. An engine-level
// failure is persisted as SOLVER_ERROR and surfaced as a SolverFailure whose
// incident id also appears in the stored row.
func (s *PlannerService) Run(ctx context.Context, req *types.CreatePlanRequest) (*planning.PlanResult, error) {
	if !s.slots.TryAcquire(1) {
		return nil, ErrPlannerBusy
	}
	defer s.slots.Release(1)

	logger := common.LoggerFromContext(ctx)

	params, domainReq, err := s.assembler.Assemble(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &planning.PlanResult{
		Request:   *domainReq,
		CreatedAt: time.Now().UTC(),
	}

	var outcome solver.Outcome
	if req.Advanced() {
		outcome = s.solveAdvanced(ctx, params, result)
	} else {
		outcome = s.solveBaseline(ctx, params, result)
	}

	logger.Log("info", "solver finished", map[string]interface{}{
		"status":        string(result.Status),
		"objective":     result.Objective,
		"solve_time_ms": result.SolveMillis,
		"orders":        len(result.Orders),
		"reason":        outcome.Reason,
	})

	if err := s.plans.SaveResult(ctx, result); err != nil {
		return nil, planning.NewPersistenceError("save plan result", err)
	}

	if result.Status == planning.StatusSolverError {
		return result, planning.NewSolverFailure(result.StatusReason, "optimization engine failed")
	}
	return result, nil
}

func (s *PlannerService) solveBaseline(ctx context.Context, params *planning.ProblemParameters, result *planning.PlanResult) solver.Outcome {
	bm := milp.BuildBaseline(params)
	outcome := solver.Solve(ctx, bm.Model, s.opts)
	s.applyOutcome(result, outcome)

	if outcome.Status == solver.StatusOptimal {
		result.Orders, result.Inventory = s.projector.ProjectBaseline(bm, params, outcome.Primals)
	}
	return outcome
}

func (s *PlannerService) solveAdvanced(ctx context.Context, params *planning.ProblemParameters, result *planning.PlanResult) solver.Outcome {
	am := milp.BuildAdvanced(params)
	outcome := solver.Solve(ctx, am.Model, s.opts)
	s.applyOutcome(result, outcome)

	if outcome.Status == solver.StatusOptimal {
		result.Orders, result.Corrections, result.Inventory = s.projector.ProjectAdvanced(am, outcome.Primals)
		for _, c := range result.Corrections {
			result.CorrectionCost += c.Cost
		}
	}
	return outcome
}

// applyOutcome maps the engine status onto the durable plan status. Engine
// failures receive an incident id stored in the reason field.
func (s *PlannerService) applyOutcome(result *planning.PlanResult, outcome solver.Outcome) {
	result.Objective = outcome.Objective
	result.GapExceeded = outcome.GapExceeded
	result.SolveMillis = outcome.SolveTime.Milliseconds()

	switch outcome.Status {
	case solver.StatusOptimal:
		result.Status = planning.StatusOptimal
	case solver.StatusInfeasible:
		result.Status = planning.StatusInfeasible
	case solver.StatusTimedOut:
		result.Status = planning.StatusTimedOut
	default:
		result.Status = planning.StatusSolverError
		result.StatusReason = uuid.NewString()
	}
}
