package proligent

import (
	"strings"
	"time"

	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/pkg/xmltree"
)

// SequenceRun groups step runs executed on one station.
// The station is assigned when the sequence is attached to an OperationRun.
type SequenceRun struct {
	VersionedRun
	characteristics
	documents
	User    string
	station string
	steps   []*StepRun
}

// SequenceRunOptions holds the initial state of a SequenceRun.
type SequenceRunOptions struct {
	StartTime       time.Time
	ID              string
	Name            string
	Version         string
	User            string
	Steps           []*StepRun
	Characteristics []Characteristic
	Documents       []Document
}

// NewSequenceRun returns a sequence run without a station.
func NewSequenceRun(opts SequenceRunOptions) (*SequenceRun, error) {
	if err := checkCharacteristics(opts.Characteristics); err != nil {
		return nil, err
	}
	s := &SequenceRun{
		VersionedRun: VersionedRun{Run: newRun(opts.ID, opts.Name, opts.StartTime), Version: opts.Version},
		User:         opts.User,
	}
	for _, step := range opts.Steps {
		s.AddStepRun(step)
	}
	s.characteristics.list = append(s.characteristics.list, opts.Characteristics...)
	for _, d := range opts.Documents {
		s.AddDocument(d)
	}
	return s, nil
}

// Station returns the assigned station, or "" before attachment.
func (s *SequenceRun) Station() string { return s.station }

// assignStation binds the sequence to station. Rebinding to the same
// station, compared without case, is a no-op.
func (s *SequenceRun) assignStation(station string) error {
	if s.station == "" {
		s.station = station
		return nil
	}
	return s.checkStation(station)
}

func (s *SequenceRun) checkStation(station string) error {
	if strings.EqualFold(s.station, station) {
		return nil
	}
	return perrors.Newf(perrors.ErrStationConflict,
		"sequence run %s is bound to station %q and cannot move to %q", s.ID, s.station, station)
}

// AddStepRun attaches step. Nil steps are ignored.
func (s *SequenceRun) AddStepRun(step *StepRun) {
	if step != nil {
		s.steps = append(s.steps, step)
	}
}

// StepRuns returns a copy of the attached steps.
func (s *SequenceRun) StepRuns() []*StepRun {
	return append([]*StepRun(nil), s.steps...)
}

// Build returns the SequenceRun element: steps, then characteristics, then
// documents. It fails with ErrMissingStation when no station was assigned.
func (s *SequenceRun) Build(opts BuildOptions) (*xmltree.Element, error) {
	if strings.TrimSpace(s.station) == "" {
		return nil, perrors.Newf(perrors.ErrMissingStation,
			"sequence run %s has no station; attach it to an operation run first", s.ID)
	}
	if err := s.status.check("sequence run " + s.ID); err != nil {
		return nil, err
	}
	el := newElement("SequenceRun").
		SetAttr("SequenceRunId", s.ID).
		SetAttr("StartDate", opts.timestamp(s.StartTime)).
		SetAttr("StationFullName", s.station)
	s.setEndTime(el, "EndDate", opts)
	el.SetAttrIf("SequenceFullName", s.Name)
	el.SetAttr("SequenceExecutionStatus", s.status.String())
	el.SetAttrIf("SequenceVersion", s.Version)
	el.SetAttrIf("User", s.User)

	for _, step := range s.steps {
		child, err := step.Build(opts)
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}
	if err := s.characteristics.build(el, opts); err != nil {
		return nil, err
	}
	if err := s.documents.build(el, opts); err != nil {
		return nil, err
	}
	return el, nil
}
