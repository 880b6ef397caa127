package interaction

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/specreplay/internal/foundation"
	"git.home.luguber.info/inful/specreplay/internal/foundation/errors"
)

var (
	// ErrMalformedInteraction classifies captures that are not valid interaction JSON.
	ErrMalformedInteraction = errors.ValidationError("malformed interaction").Build()

	// ErrInvalidInteraction classifies well-formed captures that fail validation.
	ErrInvalidInteraction = errors.ValidationError("invalid interaction").Build()
)

// DecodeError reports malformed or schema-violating JSON. No partial value is produced.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode interaction: %s: %v", e.Reason, e.Err)
	}
	return "decode interaction: " + e.Reason
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedInteraction}
	}
	return []error{ErrMalformedInteraction, e.Err}
}

// ValidationError lists the rules a capture broke. It affects only the
// interaction it was raised for.
type ValidationError struct {
	UUID   string
	Fields []foundation.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "invalid interaction: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInteraction }

// HasField reports whether field failed validation.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
