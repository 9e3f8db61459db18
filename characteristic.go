package proligent

import (
	"strings"

	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/pkg/xmltree"
)

// ReservedPrefix starts every characteristic name owned by the document format.
const ReservedPrefix = "Proligent."

// TestPositionName is the reserved characteristic carrying an operation's test position.
const TestPositionName = ReservedPrefix + "TestPositionName"

// Characteristic is a named key/value attribute.
type Characteristic struct {
	fullName string
	value    string
	reserved bool
}

// NewCharacteristic returns a user characteristic. Names starting with
// ReservedPrefix, in any case, are rejected.
func NewCharacteristic(fullName, value string) (Characteristic, error) {
	c := Characteristic{fullName: fullName, value: value}
	if err := c.check(); err != nil {
		return Characteristic{}, err
	}
	return c, nil
}

func reservedCharacteristic(fullName, value string) Characteristic {
	return Characteristic{fullName: fullName, value: value, reserved: true}
}

// FullName returns the characteristic name.
func (c Characteristic) FullName() string { return c.fullName }

// Value returns the characteristic value.
func (c Characteristic) Value() string { return c.value }

func (c Characteristic) check() error {
	if err := requireNonBlank(c.fullName, "characteristic full name"); err != nil {
		return err
	}
	if !c.reserved && isReservedName(c.fullName) {
		return perrors.Newf(perrors.ErrReservedName, "characteristic %q uses the reserved %q prefix", c.fullName, ReservedPrefix)
	}
	return nil
}

func isReservedName(name string) bool {
	return len(name) >= len(ReservedPrefix) && strings.EqualFold(name[:len(ReservedPrefix)], ReservedPrefix)
}

// Build returns the Characteristic element.
func (c Characteristic) Build(BuildOptions) (*xmltree.Element, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	el := newElement("Characteristic").SetAttr("FullName", c.fullName)
	el.SetAttrIf("Value", c.value)
	return el, nil
}

func checkCharacteristics(list []Characteristic) error {
	for _, c := range list {
		if err := c.check(); err != nil {
			return err
		}
	}
	return nil
}

// characteristics is the guarded list embedded by every owner.
type characteristics struct {
	list []Characteristic
}

// AddCharacteristic attaches c. Reserved names are rejected.
func (cs *characteristics) AddCharacteristic(c Characteristic) error {
	if err := c.check(); err != nil {
		return err
	}
	cs.list = append(cs.list, c)
	return nil
}

// Characteristics returns a copy of the attached characteristics.
func (cs *characteristics) Characteristics() []Characteristic {
	return append([]Characteristic(nil), cs.list...)
}

func (cs *characteristics) build(parent *xmltree.Element, opts BuildOptions) error {
	for _, c := range cs.list {
		el, err := c.Build(opts)
		if err != nil {
			return err
		}
		parent.Append(el)
	}
	return nil
}
