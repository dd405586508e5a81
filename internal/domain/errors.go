package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers missing entities and tenant mismatches alike.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a state machine refuses a move.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConcurrencyConflict means the stored version moved on; re-fetch and retry.
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	// ErrDuplicateFeedback is returned for a second submission by the same interviewer.
	ErrDuplicateFeedback = fmt.Errorf("duplicate interview feedback: %w", ErrConcurrencyConflict)
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")
)

// NotFoundError names the entity that could not be loaded.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NotFound builds a NotFoundError.
func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// TransitionError carries the current state so callers can react.
type TransitionError struct {
	Entity  string
	ID      string
	Current string
	Action  string
	Reason  string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s %q: cannot %s from %s", e.Entity, e.ID, e.Action, e.Current)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// ValidationError lists the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
