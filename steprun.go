package proligent

import (
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
)

// StepRun is the leaf run that carries measures.
type StepRun struct {
	Run
	characteristics
	documents
	measures []Measure
}

// StepRunOptions holds the initial state of a StepRun.
type StepRunOptions struct {
	StartTime       time.Time
	ID              string
	Name            string
	Measures        []Measure
	Characteristics []Characteristic
	Documents       []Document
}

// NewStepRun returns a step run. A blank ID is generated and a zero
// StartTime means now.
func NewStepRun(opts StepRunOptions) (*StepRun, error) {
	if err := checkCharacteristics(opts.Characteristics); err != nil {
		return nil, err
	}
	s := &StepRun{Run: newRun(opts.ID, opts.Name, opts.StartTime)}
	for _, m := range opts.Measures {
		s.AddMeasure(m)
	}
	s.characteristics.list = append(s.characteristics.list, opts.Characteristics...)
	for _, d := range opts.Documents {
		s.AddDocument(d)
	}
	return s, nil
}

// AddMeasure attaches m, filling a blank ID and a zero time.
func (s *StepRun) AddMeasure(m Measure) {
	m.ID = orNewID(m.ID)
	m.Time = orNow(m.Time)
	s.measures = append(s.measures, m)
}

// Measures returns a copy of the attached measures.
func (s *StepRun) Measures() []Measure {
	return append([]Measure(nil), s.measures...)
}

// Build returns the StepRun element: measures, then characteristics, then documents.
func (s *StepRun) Build(opts BuildOptions) (*xmltree.Element, error) {
	if err := s.status.check("step run " + s.ID); err != nil {
		return nil, err
	}
	el := newElement("StepRun").
		SetAttr("StepRunId", s.ID).
		SetAttr("StartDate", opts.timestamp(s.StartTime))
	s.setEndTime(el, "EndDate", opts)
	el.SetAttrIf("StepName", s.Name)
	el.SetAttr("StepExecutionStatus", s.status.String())

	for _, m := range s.measures {
		child, err := m.Build(opts)
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
