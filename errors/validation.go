package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Validation describes the first schema violation found in a document, with
// the engine's code, the reconstructed element path and line/column context.
//
//nolint:errname // public API name uses XSD domain term.
type Validation struct {
	Code     string
	Message  string
	Reason   string
	Path     string
	Document string
	Line     int
	Column   int
}

// Error formats the validation for display, including code, message, and context.
func (v *Validation) Error() string {
	if v == nil {
		return "validation <nil>"
	}

	var b strings.Builder
	if v.Code != "" {
		b.WriteString(fmt.Sprintf("[%s] ", v.Code))
	}
	b.WriteString(v.Message)
	if v.Path != "" {
		b.WriteString(fmt.Sprintf(" at %s", v.Path))
	}
	if v.Line > 0 && v.Column > 0 {
		if v.Path == "" {
			b.WriteString(fmt.Sprintf(" at line %d, column %d", v.Line, v.Column))
		} else {
			b.WriteString(fmt.Sprintf(" (line %d, column %d)", v.Line, v.Column))
		}
	}
	if v.Document != "" {
		b.WriteString(fmt.Sprintf(" in %s", v.Document))
	}
	return b.String()
}

// Is reports whether target is ErrSchemaValidation.
func (v *Validation) Is(target error) bool {
	code, ok := target.(ErrorCode)
	return ok && code == ErrSchemaValidation
}

// AsValidation extracts the structured schema violation from err.
func AsValidation(err error) (*Validation, bool) {
	if err == nil {
		return nil, false
	}
	var v *Validation
	if errors.As(err, &v) && v != nil {
		return v, true
	}
	return nil, false
}
