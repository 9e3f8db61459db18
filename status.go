package proligent

import (
	"strconv"
	"strings"

	perrors "github.com/jacoelho/proligent/errors"
)

// ExecutionStatus is the outcome of a run or measure.
// The zero value is StatusNotCompleted.
type ExecutionStatus uint8

const (
	StatusNotCompleted ExecutionStatus = iota
	StatusPass
	StatusFail
	StatusAborted
)

var statusNames = [...]string{
	StatusNotCompleted: "NOT_COMPLETED",
	StatusPass:         "PASS",
	StatusFail:         "FAIL",
	StatusAborted:      "ABORTED",
}

// String returns the wire name of the status.
func (s ExecutionStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "ExecutionStatus(" + strconv.Itoa(int(s)) + ")"
}

// Valid reports whether s is one of the declared statuses.
func (s ExecutionStatus) Valid() bool {
	return int(s) < len(statusNames)
}

func (s ExecutionStatus) check(what string) error {
	if !s.Valid() {
		return perrors.Newf(perrors.ErrInvalidArgument, "%s has unknown execution status %d", what, uint8(s))
	}
	return nil
}

// ParseExecutionStatus maps a wire name back to a status, ignoring case.
func ParseExecutionStatus(name string) (ExecutionStatus, error) {
	name = strings.TrimSpace(name)
	for i, n := range statusNames {
		if strings.EqualFold(n, name) {
			return ExecutionStatus(i), nil
		}
	}
	return StatusNotCompleted, perrors.Newf(perrors.ErrInvalidArgument, "unknown execution status %q", name)
}

// OptionalStatus returns a pointer to s for optional status fields.
func OptionalStatus(s ExecutionStatus) *ExecutionStatus {
	return &s
}

// MeasureKind is the type tag written next to a measure value.
type MeasureKind uint8

const (
	kindUnset MeasureKind = iota
	MeasureReal
	MeasureBool
	MeasureInteger
	MeasureString
	MeasureDateTime
)

var kindNames = [...]string{
	kindUnset:       "",
	MeasureReal:     "REAL",
	MeasureBool:     "BOOL",
	MeasureInteger:  "INTEGER",
	MeasureString:   "STRING",
	MeasureDateTime: "DATETIME",
}

func (k MeasureKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "MeasureKind(" + strconv.Itoa(int(k)) + ")"
}
