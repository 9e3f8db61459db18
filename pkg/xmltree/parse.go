package xmltree

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/xsd/pkg/xmlstream"
)

// Parse reads a document into a tree.
// Namespace declarations are folded into Element.Namespace and character
// data is kept only when it is not whitespace.
func Parse(r io.Reader) (*Element, error) {
	dec, err := xmlstream.NewStringReader(r)
	if err != nil {
		return nil, err
	}
	var (
		root  *Element
		stack []*Element
	)
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case xmlstream.EventStartElement:
			el := &Element{Name: ev.Name.Local, Namespace: ev.Name.Namespace}
			for _, attr := range ev.Attrs {
				if attr.NamespaceURI() == xmlstream.XMLNSNamespace || (attr.NamespaceURI() == "" && attr.LocalName() == "xmlns") {
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: attr.LocalName(), Value: attr.Value()})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("xmltree: multiple root elements at line %d", ev.Line)
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xmlstream.EventEndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("xmltree: unexpected end element at line %d", ev.Line)
			}
			stack = stack[:len(stack)-1]
		case xmlstream.EventCharData:
			if len(stack) == 0 {
				continue
			}
			text := string(ev.Text)
			if strings.TrimSpace(text) == "" {
				continue
			}
			top := stack[len(stack)-1]
			top.Text += text
		}
	}
	if root == nil {
		return nil, errors.New("xmltree: document has no root element")
	}
	return root, nil
}
