package proligent

import (
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
	"github.com/jacoelho/proligent/schema"
)

// DataWarehouse is the document root.
type DataWarehouse struct {
	GenerationTime    time.Time
	SourceFingerprint string
	process           *ProcessRun
	product           *ProductUnit
}

// DataWarehouseOptions holds the initial state of a DataWarehouse.
type DataWarehouseOptions struct {
	GenerationTime    time.Time
	SourceFingerprint string
	ProcessRun        *ProcessRun
	ProductUnit       *ProductUnit
}

// NewDataWarehouse returns a document root. A blank fingerprint is
// generated and a zero generation time means now.
func NewDataWarehouse(opts DataWarehouseOptions) *DataWarehouse {
	return &DataWarehouse{
		GenerationTime:    orNow(opts.GenerationTime),
		SourceFingerprint: orNewID(opts.SourceFingerprint),
		process:           opts.ProcessRun,
		product:           opts.ProductUnit,
	}
}

// ProcessRun returns the attached process run, or nil.
func (d *DataWarehouse) ProcessRun() *ProcessRun { return d.process }

// SetProcessRun attaches p, replacing any previous process run.
func (d *DataWarehouse) SetProcessRun(p *ProcessRun) { d.process = p }

// ProductUnit returns the attached product unit, or nil.
func (d *DataWarehouse) ProductUnit() *ProductUnit { return d.product }

// SetProductUnit attaches u, replacing any previous product unit.
func (d *DataWarehouse) SetProductUnit(u *ProductUnit) { d.product = u }

// Build returns the Proligent.Datawarehouse root element.
func (d *DataWarehouse) Build(opts BuildOptions) (*xmltree.Element, error) {
	if err := requireNonBlank(d.SourceFingerprint, "data source fingerprint"); err != nil {
		return nil, err
	}
	root := &xmltree.Element{Name: "Proligent.Datawarehouse", Namespace: schema.Namespace}
	root.SetAttr("GenerationTime", opts.timestamp(d.GenerationTime))
	root.SetAttr("DataSourceFingerprint", d.SourceFingerprint)
	if d.process != nil {
		el, err := d.process.Build(opts)
		if err != nil {
			return nil, err
		}
		root.Append(el)
	}
	if d.product != nil {
		el, err := d.product.Build(opts)
		if err != nil {
			return nil, err
		}
		root.Append(el)
	}
	return root, nil
}
