package planning

import (
	"errors"
	"fmt"
)

var (
	// ErrOfficeNotFound indicates the requested office does not exist or is inactive
	ErrOfficeNotFound = errors.New("office not found")

	// ErrDistributorNotFound indicates no active distributor matched the request
	ErrDistributorNotFound = errors.New("distributor not found")

	// ErrPlanNotFound indicates the optimization request does not exist
	ErrPlanNotFound = errors.New("optimization request not found")
)

// InvalidInputError reports a schema or cross-field validation failure.
// It always names the offending field so the API layer can surface it.
type InvalidInputError struct {
	Field   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

func NewInvalidInputError(field, message string) *InvalidInputError {
	return &InvalidInputError{Field: field, Message: message}
}

// CorrectionPreconditionError reports that a correction run referenced a prior
// plan that does not exist, is not owned by the caller, or covers a different
// office set or horizon.
type CorrectionPreconditionError struct {
	PriorPlanID uint
	Message     string
}

func (e *CorrectionPreconditionError) Error() string {
	return fmt.Sprintf("correction precondition failed for plan %d: %s", e.PriorPlanID, e.Message)
}

func NewCorrectionPreconditionError(priorPlanID uint, message string) *CorrectionPreconditionError {
	return &CorrectionPreconditionError{PriorPlanID: priorPlanID, Message: message}
}

// SolverFailure reports an engine-level failure (as opposed to a proven
// infeasibility or an exhausted time budget). The incident id is an opaque
// identifier safe to return to callers.
type SolverFailure struct {
	IncidentID string
	Reason     string
}

func (e *SolverFailure) Error() string {
	return fmt.Sprintf("solver failure [%s]: %s", e.IncidentID, e.Reason)
}

func NewSolverFailure(incidentID, reason string) *SolverFailure {
	return &SolverFailure{IncidentID: incidentID, Reason: reason}
}

// PersistenceError wraps a storage failure. Plans are recomputable and writes
// are transactional, so callers may retry safely.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
