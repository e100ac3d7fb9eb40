package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested template or step has no matching row.
	ErrNotFound = errors.New("not found")

	// ErrRoutingFailure is returned when a non-terminal step has no matching transition.
	ErrRoutingFailure = errors.New("no route from step")

	// ErrIntegrityViolation is returned when a storage constraint fails during a write.
	// The enclosing unit of work has been rolled back.
	ErrIntegrityViolation = errors.New("integrity violation")

	// ErrInvalidDraft is returned when a draft cannot be compiled at all
	// (empty template name, duplicate local ids).
	ErrInvalidDraft = errors.New("invalid draft")
)

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Entity string // "template", "step"
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFound creates a NotFoundError.
func NewNotFound(entity string, id int64) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// RoutingError reports a non-terminal step that no transition leaves under the given state.
type RoutingError struct {
	StepID     int64
	TemplateID int64
	// Considered is the number of outgoing transitions that were evaluated.
	Considered int
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("step %d (template %d): %s (%d transitions considered)",
		e.StepID, e.TemplateID, ErrRoutingFailure, e.Considered)
}

func (e *RoutingError) Unwrap() error {
	return ErrRoutingFailure
}

// IntegrityError wraps the storage error that aborted a unit of work.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrIntegrityViolation, e.Err)
}

func (e *IntegrityError) Unwrap() []error {
	return []error{ErrIntegrityViolation, e.Err}
}

// IsRoutingFailure reports whether err is (or wraps) a routing failure.
func IsRoutingFailure(err error) bool {
	return errors.Is(err, ErrRoutingFailure)
}

// IsNotFound reports whether err is (or wraps) a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
