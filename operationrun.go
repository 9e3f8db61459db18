package proligent

import (
	"strings"
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
)

// OperationRun is the work done on one station within a process run.
type OperationRun struct {
	Run
	characteristics
	documents
	User             string
	ProcessName      string
	TestPositionName string
	station          string
	sequences        []*SequenceRun
}

// OperationRunOptions holds the initial state of an OperationRun.
// Station is required.
type OperationRunOptions struct {
	StartTime        time.Time
	ID               string
	Name             string
	Station          string
	User             string
	ProcessName      string
	TestPositionName string
	Sequences        []*SequenceRun
	Characteristics  []Characteristic
	Documents        []Document
}

// NewOperationRun returns an operation run on opts.Station. Every initial
// sequence is bound to that station.
func NewOperationRun(opts OperationRunOptions) (*OperationRun, error) {
	if err := requireNonBlank(opts.Station, "operation run station"); err != nil {
		return nil, err
	}
	if err := checkCharacteristics(opts.Characteristics); err != nil {
		return nil, err
	}
	op := &OperationRun{
		Run:              newRun(opts.ID, opts.Name, opts.StartTime),
		User:             opts.User,
		ProcessName:      opts.ProcessName,
		TestPositionName: opts.TestPositionName,
		station:          opts.Station,
	}
	for _, seq := range opts.Sequences {
		if err := op.AddSequenceRun(seq); err != nil {
			return nil, err
		}
	}
	op.characteristics.list = append(op.characteristics.list, opts.Characteristics...)
	for _, d := range opts.Documents {
		op.AddDocument(d)
	}
	return op, nil
}

// Station returns the station the operation ran on.
func (o *OperationRun) Station() string { return o.station }

// AddSequenceRun binds seq to the operation's station and attaches it.
// A sequence already bound to another station is rejected with
// ErrStationConflict.
func (o *OperationRun) AddSequenceRun(seq *SequenceRun) error {
	if seq == nil {
		return nil
	}
	if err := seq.assignStation(o.station); err != nil {
		return err
	}
	o.sequences = append(o.sequences, seq)
	return nil
}

// SequenceRuns returns a copy of the attached sequences.
func (o *OperationRun) SequenceRuns() []*SequenceRun {
	return append([]*SequenceRun(nil), o.sequences...)
}

// Build returns the OperationRun element.
func (o *OperationRun) Build(opts BuildOptions) (*xmltree.Element, error) {
	return o.build(opts, "")
}

// build uses processName when the operation has none of its own.
func (o *OperationRun) build(opts BuildOptions, processName string) (*xmltree.Element, error) {
	if err := requireNonBlank(o.station, "operation run station"); err != nil {
		return nil, err
	}
	if err := o.status.check("operation run " + o.ID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(o.ProcessName) != "" {
		processName = o.ProcessName
	}
	el := newElement("OperationRun").
		SetAttr("OperationRunId", o.ID).
		SetAttr("OperationRunStartTime", opts.timestamp(o.StartTime)).
		SetAttr("StationFullName", o.station)
	o.setEndTime(el, "OperationRunEndTime", opts)
	el.SetAttrIf("OperationName", o.Name)
	el.SetAttr("OperationStatus", o.status.String())
	el.SetAttrIf("User", o.User)
	el.SetAttrIf("ProcessFullName", processName)

	for _, seq := range o.sequences {
		if err := seq.checkStation(o.station); err != nil {
			return nil, err
		}
		child, err := seq.Build(opts)
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}
	if err := o.characteristics.build(el, opts); err != nil {
		return nil, err
	}
	if o.TestPositionName != "" {
		child, err := reservedCharacteristic(TestPositionName, o.TestPositionName).Build(opts)
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}
	if err := o.documents.build(el, opts); err != nil {
		return nil, err
	}
	return el, nil
}
