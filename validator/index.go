package validator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/jacoelho/xsd/pkg/xmlstream"
)

// requiredIndex maps element names to the attributes their types declare
// with use="required". Named types are keyed "type:<name>", anonymous types
// "elem:<element>".
type requiredIndex struct {
	elementTypes map[string][]string
	required     map[string][]string
	bases        map[string]string
}

func newRequiredIndex() requiredIndex {
	return requiredIndex{
		elementTypes: make(map[string][]string),
		required:     make(map[string][]string),
		bases:        make(map[string]string),
	}
}

func buildRequiredIndex(fsys fs.FS, fragments []string) (requiredIndex, error) {
	idx := newRequiredIndex()
	for _, location := range fragments {
		data, err := fs.ReadFile(fsys, location)
		if err != nil {
			return requiredIndex{}, fmt.Errorf("read schema %s: %w", location, err)
		}
		if err := idx.add(data); err != nil {
			return requiredIndex{}, fmt.Errorf("index schema %s: %w", location, err)
		}
	}
	return idx, nil
}

type declFrame struct {
	local string
	key   string
}

func (idx requiredIndex) add(data []byte) error {
	dec, err := xmlstream.NewStringReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	var stack []declFrame
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch ev.Kind {
		case xmlstream.EventEndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		case xmlstream.EventStartElement:
		default:
			continue
		}

		f := declFrame{local: ev.Name.Local}
		if ev.Name.Namespace == xmlstream.XSDNamespace {
			switch ev.Name.Local {
			case "element":
				if name := attrValue(ev.Attrs, "name"); name != "" {
					f.key = "elem:" + name
					typeKey := f.key
					if typ := attrValue(ev.Attrs, "type"); typ != "" {
						typeKey = "type:" + localPart(typ)
					}
					idx.elementTypes[name] = appendUnique(idx.elementTypes[name], typeKey)
				}
			case "complexType":
				if name := attrValue(ev.Attrs, "name"); name != "" {
					f.key = "type:" + name
				} else {
					f.key = nearest(stack, "element")
				}
			case "attribute":
				owner := nearest(stack, "complexType")
				if owner != "" && attrValue(ev.Attrs, "use") == "required" {
					name := attrValue(ev.Attrs, "name")
					if name == "" {
						name = localPart(attrValue(ev.Attrs, "ref"))
					}
					if name != "" {
						idx.required[owner] = appendUnique(idx.required[owner], name)
					}
				}
			case "extension", "restriction":
				if len(stack) == 0 || !strings.HasSuffix(stack[len(stack)-1].local, "Content") {
					break
				}
				owner := nearest(stack, "complexType")
				if base := attrValue(ev.Attrs, "base"); owner != "" && base != "" {
					idx.bases[owner] = "type:" + localPart(base)
				}
			}
		}
		stack = append(stack, f)
	}
}

// missing lists the required attributes of element that are not in present,
// in declaration order with inherited attributes last.
func (idx requiredIndex) missing(element string, present []string) []string {
	have := make(map[string]struct{}, len(present))
	for _, p := range present {
		have[p] = struct{}{}
	}
	var out []string
	for _, key := range idx.elementTypes[element] {
		for _, name := range idx.resolve(key) {
			if _, ok := have[name]; !ok {
				out = appendUnique(out, name)
			}
		}
	}
	return out
}

func (idx requiredIndex) resolve(key string) []string {
	var out []string
	seen := make(map[string]struct{})
	for key != "" {
		if _, ok := seen[key]; ok {
			break
		}
		seen[key] = struct{}{}
		out = append(out, idx.required[key]...)
		key = idx.bases[key]
	}
	return out
}

func nearest(stack []declFrame, local string) string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].local == local {
			return stack[i].key
		}
	}
	return ""
}

func attrValue(attrs []xmlstream.StringAttr, local string) string {
	for _, attr := range attrs {
		if attr.NamespaceURI() == "" && attr.LocalName() == local {
			return strings.TrimSpace(attr.Value())
		}
	}
	return ""
}

func localPart(qname string) string {
	if i := strings.LastIndexByte(qname, ':'); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
