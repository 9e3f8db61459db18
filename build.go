package proligent

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/pkg/xmltree"
	"github.com/jacoelho/proligent/schema"
)

// BuildOptions carries the settings shared by every Build call.
type BuildOptions struct {
	// Location is the zone timestamps are written in. Nil means time.Local.
	Location *time.Location
}

func (o BuildOptions) timestamp(t time.Time) string {
	return FormatTimestamp(t, o.Location)
}

// Builder is implemented by every entity that produces an element.
type Builder interface {
	Build(opts BuildOptions) (*xmltree.Element, error)
}

// Marshal builds b and encodes it as an indented UTF-8 document with an XML
// declaration.
func Marshal(b Builder, opts BuildOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, b, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode builds b and writes the document to w.
func Encode(w io.Writer, b Builder, opts BuildOptions) error {
	root, err := b.Build(opts)
	if err != nil {
		return err
	}
	return xmltree.Encode(w, root, xmltree.DefaultEncodeOptions)
}

func newID() string {
	return uuid.NewString()
}

func orNewID(id string) string {
	if strings.TrimSpace(id) == "" {
		return newID()
	}
	return id
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}

func newElement(name string) *xmltree.Element {
	return &xmltree.Element{Name: name, Namespace: schema.Namespace}
}

func setTimeIf(el *xmltree.Element, name string, t *time.Time, opts BuildOptions) {
	if t != nil {
		el.SetAttr(name, opts.timestamp(*t))
	}
}

func requireNonBlank(value, what string) error {
	if strings.TrimSpace(value) == "" {
		return perrors.Newf(perrors.ErrInvalidArgument, "%s must not be blank", what)
	}
	return nil
}
