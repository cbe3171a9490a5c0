package risk

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPlan marks a plan that cannot be evaluated. Nothing is
	// recorded for it.
	ErrMalformedPlan = errors.New("malformed plan")
	// ErrPersistence marks a failure to durably record a decision or a
	// governor transition.
	ErrPersistence = errors.New("persistence failure")
	// ErrInvalidSnapshot marks an account snapshot outside its valid range.
	// Nothing is recorded for it.
	ErrInvalidSnapshot = errors.New("invalid account snapshot")
	// ErrNoRecorder is returned when an evaluator has nowhere to record.
	ErrNoRecorder = errors.New("no decision recorder configured")
)

type MalformedPlanError struct {
	Field   string
	Problem string
}

func (e *MalformedPlanError) Error() string {
	if e.Field == "" {
		return "malformed plan: " + e.Problem
	}
	return fmt.Sprintf("malformed plan: %s: %s", e.Field, e.Problem)
}

func (e *MalformedPlanError) Is(target error) bool {
	return target == ErrMalformedPlan
}

type InvalidSnapshotError struct {
	Field   string
	Problem string
}

func (e *InvalidSnapshotError) Error() string {
	return fmt.Sprintf("invalid account snapshot: %s: %s", e.Field, e.Problem)
}

func (e *InvalidSnapshotError) Is(target error) bool {
	return target == ErrInvalidSnapshot
}

type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	if e.Err == nil {
		return "persistence failure: " + e.Op
	}
	return fmt.Sprintf("persistence failure: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Persistence wraps err as a PersistenceError unless it already is one.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
