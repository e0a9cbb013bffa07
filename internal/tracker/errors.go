package tracker

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPath is returned by mutations before a path has been opened.
	ErrNoPath = errors.New("no learning path is open")
	// ErrNotFound is returned when the requested path does not exist.
	ErrNotFound = errors.New("learning path not found")
	// ErrStepOutOfRange is returned for a phase/step index outside the path.
	ErrStepOutOfRange = errors.New("step index out of range")
	// ErrStepNotFound is returned when no step matches the given id.
	ErrStepNotFound = errors.New("step not found")
	// ErrNotConfirmed is returned when a destructive action was declined.
	ErrNotConfirmed = errors.New("action not confirmed")
)

// JournalRequiredMessage is shown when a journal entry lacks date or title.
const JournalRequiredMessage = "Please provide a date and title for your journal entry."

// ValidationError is a user-visible input rejection. The path is unchanged.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError names the id that could not be found.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Learning path with ID %q not found.", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
