package proligent

import (
	"strings"
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
)

// DefaultProductFullName is used when a process run names no product.
const DefaultProductFullName = "DUT"

// ProcessRun is the top-level run: the full process a product unit went through.
type ProcessRun struct {
	VersionedRun
	ProductUnitIdentifier string
	ProductFullName       string
	ProcessMode           string
	operations            []*OperationRun
}

// ProcessRunOptions holds the initial state of a ProcessRun.
type ProcessRunOptions struct {
	StartTime             time.Time
	ID                    string
	Name                  string
	Version               string
	ProductUnitIdentifier string
	ProductFullName       string
	ProcessMode           string
	Operations            []*OperationRun
}

// NewProcessRun returns a process run. A blank product unit identifier is
// generated and a blank product full name defaults to DefaultProductFullName.
func NewProcessRun(opts ProcessRunOptions) *ProcessRun {
	p := &ProcessRun{
		VersionedRun:          VersionedRun{Run: newRun(opts.ID, opts.Name, opts.StartTime), Version: opts.Version},
		ProductUnitIdentifier: orNewID(opts.ProductUnitIdentifier),
		ProductFullName:       opts.ProductFullName,
		ProcessMode:           opts.ProcessMode,
	}
	if strings.TrimSpace(p.ProductFullName) == "" {
		p.ProductFullName = DefaultProductFullName
	}
	for _, op := range opts.Operations {
		p.AddOperationRun(op)
	}
	return p
}

// AddOperationRun attaches op. An operation without a process name takes
// the process run's name.
func (p *ProcessRun) AddOperationRun(op *OperationRun) {
	if op == nil {
		return
	}
	if strings.TrimSpace(op.ProcessName) == "" {
		op.ProcessName = p.Name
	}
	p.operations = append(p.operations, op)
}

// OperationRuns returns a copy of the attached operations.
func (p *ProcessRun) OperationRuns() []*OperationRun {
	return append([]*OperationRun(nil), p.operations...)
}

// Build returns the TopProcessRun element.
func (p *ProcessRun) Build(opts BuildOptions) (*xmltree.Element, error) {
	productFullName := p.ProductFullName
	if strings.TrimSpace(productFullName) == "" {
		productFullName = DefaultProductFullName
	}
	if err := requireNonBlank(p.ProductUnitIdentifier, "product unit identifier"); err != nil {
		return nil, err
	}
	if err := p.status.check("process run " + p.ID); err != nil {
		return nil, err
	}
	el := newElement("TopProcessRun").
		SetAttr("ProcessRunId", p.ID).
		SetAttr("ProductUnitIdentifier", p.ProductUnitIdentifier).
		SetAttr("ProductFullName", productFullName).
		SetAttr("ProcessRunStartTime", opts.timestamp(p.StartTime))
	p.setEndTime(el, "ProcessRunEndTime", opts)
	el.SetAttrIf("ProcessFullName", p.Name)
	el.SetAttr("ProcessRunStatus", p.status.String())
	el.SetAttrIf("ProcessVersion", p.Version)
	el.SetAttrIf("ProcessMode", p.ProcessMode)

	for _, op := range p.operations {
		child, err := op.build(opts, p.Name)
		if err != nil {
			return nil, err
		}
		el.Append(child)
	}
	return el, nil
}
