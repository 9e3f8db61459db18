package proligent

import (
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
)

// Measure is a single observed value with its acceptance limit.
type Measure struct {
	Value    Value
	Limit    *Limit
	Status   *ExecutionStatus
	Time     time.Time
	ID       string
	Comments string
	Unit     string
	Symbol   string
}

// MeasureOptions holds the optional fields of NewMeasure.
type MeasureOptions struct {
	Limit    *Limit
	Status   *ExecutionStatus
	Time     time.Time
	ID       string
	Comments string
	Unit     string
	Symbol   string
}

// NewMeasure returns a measure for a dynamically typed value.
// A blank ID is generated and a zero Time means now.
func NewMeasure(value any, opts MeasureOptions) (Measure, error) {
	v, err := ValueOf(value)
	if err != nil {
		return Measure{}, err
	}
	if _, _, err := v.Normalize(); err != nil {
		return Measure{}, err
	}
	if opts.Limit != nil {
		if _, err := opts.Limit.Render(); err != nil {
			return Measure{}, err
		}
	}
	return Measure{
		Value:    v,
		Limit:    opts.Limit,
		Status:   opts.Status,
		Time:     orNow(opts.Time),
		ID:       orNewID(opts.ID),
		Comments: opts.Comments,
		Unit:     opts.Unit,
		Symbol:   opts.Symbol,
	}, nil
}

// Build returns the Measure element with its Value and optional Limit children.
func (m Measure) Build(opts BuildOptions) (*xmltree.Element, error) {
	text, kind, err := m.Value.Normalize()
	if err != nil {
		return nil, err
	}
	if err := requireNonBlank(m.ID, "measure id"); err != nil {
		return nil, err
	}
	el := newElement("Measure").
		SetAttr("MeasureId", m.ID).
		SetAttr("MeasureTime", opts.timestamp(m.Time))
	if m.Status != nil {
		if err := m.Status.check("measure " + m.ID); err != nil {
			return nil, err
		}
		el.SetAttr("MeasureExecutionStatus", m.Status.String())
	}
	el.SetAttrIf("Comments", m.Comments)
	el.SetAttrIf("Unit", m.Unit)
	el.SetAttrIf("Symbol", m.Symbol)

	value := newElement("Value").SetAttr("Type", kind.String())
	value.Text = text
	el.Append(value)

	if m.Limit != nil {
		expr, err := m.Limit.Render()
		if err != nil {
			return nil, err
		}
		el.Append(newElement("Limit").SetAttr("LimitExpression", expr))
	}
	return el, nil
}
