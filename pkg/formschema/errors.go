package formschema

import (
	"errors"
	"fmt"
)

// ErrInvalidJSON is returned when a raw schema document cannot be parsed.
// The message is surfaced verbatim to schema authors.
var ErrInvalidJSON = errors.New("Invalid JSON schema")

// SpecError reports a structurally invalid field specification. It is a
// schema-authoring error, raised before any persistence attempt.
type SpecError struct {
	Field string
	Msg   string
}

func (e *SpecError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("field %q: %s", e.Field, e.Msg)
}

// CompileError reports that a definition could not be synthesized into a
// validator, e.g. an unparsable regular expression. It is distinct from a
// data-validation failure: a definition that fails to compile must never
// reach the renderer.
type CompileError struct {
	Field string
	Msg   string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile field %q: %s", e.Field, e.Msg)
}

func (e *CompileError) Unwrap() error { return e.Err }
