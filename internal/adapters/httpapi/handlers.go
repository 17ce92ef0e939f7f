package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/beanfleet/coffeeplan/internal/application/common"
	"github.com/beanfleet/coffeeplan/internal/application/planning/commands"
	"github.com/beanfleet/coffeeplan/internal/application/planning/queries"
	"github.com/beanfleet/coffeeplan/internal/application/planning/services"
	"github.com/beanfleet/coffeeplan/internal/application/planning/types"
	"github.com/beanfleet/coffeeplan/internal/domain/planning"
)

// Handler serves the planning endpoints via the mediator.
type Handler struct {
	mediator   common.Mediator
	forecaster *services.MockForecaster
}

// NewHandler creates a handler over the registered mediator.
func NewHandler(mediator common.Mediator, forecaster *services.MockForecaster) *Handler {
	return &Handler{mediator: mediator, forecaster: forecaster}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreatePlan runs one optimization request. Terminal solver statuses map onto
// HTTP statuses: OPTIMAL 201, INFEASIBLE 422, TIMED_OUT 504.
func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req types.CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed JSON body", "")
		return
	}

	response, err := h.mediator.Send(r.Context(), &commands.CreatePlanCommand{Request: &req})
	if err != nil {
		h.writePlanError(w, err)
		return
	}

	plan := response.(*commands.CreatePlanResponse).Plan
	switch planning.PlanStatus(plan.SolverStatus) {
	case planning.StatusInfeasible:
		writeJSON(w, http.StatusUnprocessableEntity, plan)
	case planning.StatusTimedOut:
		writeJSON(w, http.StatusGatewayTimeout, plan)
	default:
		writeJSON(w, http.StatusCreated, plan)
	}
}

// GetPlan returns one plan with its orders, corrections and snapshots.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "plan id must be numeric", "id")
		return
	}

	response, err := h.mediator.Send(r.Context(), &queries.GetPlanQuery{PlanID: uint(id)})
	if err != nil {
		h.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response.(*queries.GetPlanResponse).Plan)
}

// ListPlans returns recent plan headers, optionally filtered by office.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	var officeID uint64
	if raw := r.URL.Query().Get("office_id"); raw != "" {
		var err error
		officeID, err = strconv.ParseUint(raw, 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "office_id must be numeric", "office_id")
			return
		}
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	response, err := h.mediator.Send(r.Context(), &queries.ListPlansQuery{
		OfficeID: uint(officeID),
		Limit:    limit,
	})
	if err != nil {
		h.writePlanError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response.(*queries.ListPlansResponse).Plans)
}

// Forecast returns mock per-day worker and conference counts for demos.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 1 || days > 30 {
		writeError(w, http.StatusBadRequest, "days must be within 1..30", "days")
		return
	}
	start := time.Now()
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "start must be an ISO-8601 date", "start")
			return
		}
	}

	workers, conferences := h.forecaster.Forecast(start, days)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"num_workers_daily":     workers,
		"num_conferences_daily": conferences,
	})
}

// writePlanError maps domain errors onto HTTP statuses. Engine failures leak
// only the incident id; the detailed reason stays in the logs.
func (h *Handler) writePlanError(w http.ResponseWriter, err error) {
	var invalid *planning.InvalidInputError
	var precondition *planning.CorrectionPreconditionError
	var solverFailure *planning.SolverFailure
	var persistence *planning.PersistenceError

	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Message, invalid.Field)
	case errors.As(err, &precondition):
		writeError(w, http.StatusConflict, precondition.Message, "prior_plan_id")
	case errors.Is(err, planning.ErrOfficeNotFound),
		errors.Is(err, planning.ErrDistributorNotFound),
		errors.Is(err, planning.ErrPlanNotFound):
		writeError(w, http.StatusNotFound, err.Error(), "")
	case errors.Is(err, services.ErrPlannerBusy):
		writeError(w, http.StatusServiceUnavailable, "planner at capacity, retry later", "")
	case errors.As(err, &persistence):
		// plans are recomputable and writes are transactional, so a retry is safe
		writeError(w, http.StatusServiceUnavailable, "storage unavailable, retry later", "")
	case errors.As(err, &solverFailure):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":       "optimization engine failed",
			"incident_id": solverFailure.IncidentID,
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, field string) {
	body := map[string]string{"error": message}
	if field != "" {
		body["field"] = field
	}
	writeJSON(w, status, body)
}
