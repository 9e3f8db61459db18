package proligent

import (
	"strconv"
	"time"

	"github.com/jacoelho/proligent/pkg/xmltree"
)

// ProductUnit describes the unit under test.
type ProductUnit struct {
	characteristics
	documents
	CreationTime      *time.Time
	ManufacturingTime *time.Time
	ScrapTime         *time.Time
	Scrapped          *bool
	Identifier        string
	FullName          string
	Manufacturer      string
}

// ProductUnitOptions holds the initial state of a ProductUnit.
type ProductUnitOptions struct {
	CreationTime      *time.Time
	ManufacturingTime *time.Time
	ScrapTime         *time.Time
	Scrapped          *bool
	Identifier        string
	FullName          string
	Manufacturer      string
	Characteristics   []Characteristic
	Documents         []Document
}

// NewProductUnit returns a product unit. A blank identifier is generated.
func NewProductUnit(opts ProductUnitOptions) (*ProductUnit, error) {
	if err := checkCharacteristics(opts.Characteristics); err != nil {
		return nil, err
	}
	u := &ProductUnit{
		CreationTime:      opts.CreationTime,
		ManufacturingTime: opts.ManufacturingTime,
		ScrapTime:         opts.ScrapTime,
		Scrapped:          opts.Scrapped,
		Identifier:        orNewID(opts.Identifier),
		FullName:          opts.FullName,
		Manufacturer:      opts.Manufacturer,
	}
	u.characteristics.list = append(u.characteristics.list, opts.Characteristics...)
	for _, d := range opts.Documents {
		u.AddDocument(d)
	}
	return u, nil
}

// Build returns the ProductUnit element: characteristics, then documents.
func (u *ProductUnit) Build(opts BuildOptions) (*xmltree.Element, error) {
	if err := requireNonBlank(u.Identifier, "product unit identifier"); err != nil {
		return nil, err
	}
	el := newElement("ProductUnit").SetAttr("ProductUnitIdentifier", u.Identifier)
	el.SetAttrIf("ProductFullName", u.FullName)
	el.SetAttrIf("ByManufacturer", u.Manufacturer)
	setTimeIf(el, "CreationTime", u.CreationTime, opts)
	setTimeIf(el, "ManufacturingTime", u.ManufacturingTime, opts)
	if u.Scrapped != nil {
		el.SetAttr("Scrapped", strconv.FormatBool(*u.Scrapped))
	}
	setTimeIf(el, "ScrappedTime", u.ScrapTime, opts)

	if err := u.characteristics.build(el, opts); err != nil {
		return nil, err
	}
	if err := u.documents.build(el, opts); err != nil {
		return nil, err
	}
	return el, nil
}
