package proligent

import (
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
)

// Run holds the state shared by every manufacturing step: identity, name
// and the execution window. Status and end time change only through
// Complete and CompleteAt.
type Run struct {
	ID        string
	Name      string
	StartTime time.Time
	endTime   time.Time
	status    ExecutionStatus
}

func newRun(id, name string, start time.Time) Run {
	return Run{ID: orNewID(id), Name: name, StartTime: orNow(start)}
}

// Status returns the execution status.
func (r *Run) Status() ExecutionStatus { return r.status }

// EndTime returns the end time and whether the run was completed.
func (r *Run) EndTime() (time.Time, bool) {
	return r.endTime, r.status != StatusNotCompleted
}

// Complete records status with the current time as end time.
func (r *Run) Complete(status ExecutionStatus) {
	r.CompleteAt(status, time.Now())
}

// CompleteAt records status and end time.
// Completing with StatusNotCompleted reopens the run and clears the end time.
func (r *Run) CompleteAt(status ExecutionStatus, end time.Time) {
	r.status = status
	if status == StatusNotCompleted {
		r.endTime = time.Time{}
		return
	}
	r.endTime = end
}

func (r *Run) setEndTime(el *xmltree.Element, name string, opts BuildOptions) {
	if end, ok := r.EndTime(); ok {
		el.SetAttr(name, opts.timestamp(end))
	}
}

// VersionedRun is a Run that records the version of what was executed.
type VersionedRun struct {
	Run
	Version string
}
