// Package service combines the parser and streak engine with persistence.
package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrEmptyTitle is returned when quick-add text parses to an empty title.
	ErrEmptyTitle = errors.New("task title is empty after parsing")
	// ErrAlreadyCompleted is returned when completing a finished task.
	ErrAlreadyCompleted = errors.New("task is already completed")
	// ErrAmbiguousID is returned when an id prefix matches several tasks.
	ErrAmbiguousID = errors.New("task id prefix is ambiguous")
)

var validate = validator.New()

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
