package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// Header is the declaration written ahead of every encoded document.
const Header = `<?xml version="1.0" encoding="utf-8"?>` + "\n"

// EncodeOptions controls document encoding.
type EncodeOptions struct {
	// Indent is the per-level indentation. Empty disables indentation.
	Indent string
	// OmitDeclaration drops the leading XML declaration.
	OmitDeclaration bool
}

// DefaultEncodeOptions indents with two spaces and writes a declaration.
var DefaultEncodeOptions = EncodeOptions{Indent: "  "}

var errNilRoot = errors.New("xmltree: nil root element")

// Encode writes root as a complete document to w.
func Encode(w io.Writer, root *Element, opts EncodeOptions) error {
	if root == nil {
		return errNilRoot
	}
	if !opts.OmitDeclaration {
		if _, err := io.WriteString(w, Header); err != nil {
			return err
		}
	}
	enc := xml.NewEncoder(w)
	if opts.Indent != "" {
		enc.Indent("", opts.Indent)
	}
	if err := encodeElement(enc, root, ""); err != nil {
		return err
	}
	return enc.Flush()
}

// Marshal encodes root with DefaultEncodeOptions.
func Marshal(root *Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, root, DefaultEncodeOptions); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeElement(enc *xml.Encoder, e *Element, parentNamespace string) error {
	attrs := make([]xml.Attr, 0, len(e.Attrs)+1)
	if e.Namespace != parentNamespace {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "xmlns"}, Value: e.Namespace})
	}
	for _, attr := range e.Attrs {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: attr.Name}, Value: attr.Value})
	}
	start := xml.StartElement{Name: xml.Name{Local: e.Name}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Text != "" {
		if err := enc.EncodeToken(xml.CharData(e.Text)); err != nil {
			return err
		}
	}
	for _, child := range e.Children {
		if err := encodeElement(enc, child, e.Namespace); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
