package pathgen

import (
	"errors"

	"github.com/abhisek/skillroute/internal/paths"
)

// Kind classifies a generation failure.
type Kind int

const (
	// ConfigMissing means no model credential is configured. No call is made.
	ConfigMissing Kind = iota + 1
	// ParseFailure means the model output was not JSON.
	ParseFailure
	// SchemaInvalid means the output was JSON of the wrong shape.
	SchemaInvalid
	// ModelInvocationFailure covers network, auth and quota errors.
	ModelInvocationFailure
	// InsufficientInput is the model's own refusal to plan from vague input.
	InsufficientInput
)

func (k Kind) String() string {
	switch k {
	case ConfigMissing:
		return "config_missing"
	case ParseFailure:
		return "parse_failure"
	case SchemaInvalid:
		return "schema_invalid"
	case ModelInvocationFailure:
		return "model_invocation_failure"
	case InsufficientInput:
		return "insufficient_input"
	}
	return "unknown"
}

// Placeholder titles carried alongside each failure.
const (
	TitleConfigMissing = "Error: API Key Missing"
	TitleMalformed     = "Error: Malformed AI Response"
	TitleServiceFailed = "Error: AI Service Failure"
	TitleInsufficient  = "Error Creating Path"
)

// Error is a typed generation failure.
type Error struct {
	Kind    Kind
	Message string
	Title   string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Envelope returns the failure in the shape of a generated path.
func (e *Error) Envelope() *paths.GeneratedPath {
	return &paths.GeneratedPath{
		PathTitle: e.Title,
		Phases:    []paths.GeneratedPhase{},
		Error:     e.Message,
	}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
