package validator

import (
	"errors"

	perrors "github.com/jacoelho/proligent/errors"
)

// SuccessMessage is the Result message of a valid document.
const SuccessMessage = "Validation was successful."

// Result is the outcome of a safe validation.
type Result struct {
	Message     string `json:"message"`
	Reason      string `json:"reason,omitempty"`
	Code        string `json:"code,omitempty"`
	Path        string `json:"path,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Line        int    `json:"line,omitempty"`
	Column      int    `json:"column,omitempty"`
	IsValid     bool   `json:"valid"`
}

func failedResult(err error, fingerprint string) Result {
	if v, ok := perrors.AsValidation(err); ok {
		return Result{
			Message:     v.Error(),
			Reason:      v.Reason,
			Code:        v.Code,
			Path:        v.Path,
			Line:        v.Line,
			Column:      v.Column,
			Fingerprint: fingerprint,
		}
	}
	res := Result{Message: err.Error(), Code: string(perrors.CodeOf(err)), Fingerprint: fingerprint}
	if cause := errors.Unwrap(err); cause != nil {
		res.Reason = cause.Error()
	}
	return res
}
