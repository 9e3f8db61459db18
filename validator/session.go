package validator

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"
	"github.com/jacoelho/xsd/pkg/xmlstream"

	perrors "github.com/jacoelho/proligent/errors"
)

const fingerprintAttr = "DataSourceFingerprint"

type sessionState uint8

const (
	stateIdle sessionState = iota
	stateValidating
	stateSucceeded
	stateFailed
)

// session is one validation pass over one document. It is never shared.
type session struct {
	schema      *xsd.Schema
	required    requiredIndex
	input       io.Reader
	name        string
	fingerprint string
	data        []byte
	state       sessionState
}

type frame struct {
	name  string
	attrs []string
}

// position is where a forward scan stopped.
type position struct {
	stack       []frame
	fingerprint string
	found       bool
}

func (p position) path() string {
	if len(p.stack) == 0 {
		return ""
	}
	names := make([]string, len(p.stack))
	for i, f := range p.stack {
		names[i] = f.name
	}
	return "/" + strings.Join(names, "/")
}

func (p position) top() (frame, bool) {
	if len(p.stack) == 0 {
		return frame{}, false
	}
	return p.stack[len(p.stack)-1], true
}

func (s *session) run() error {
	if s.state != stateIdle {
		return perrors.New(perrors.ErrInvalidOperation, "validation session already used")
	}
	s.state = stateValidating
	err := s.schema.Validate(s.input)
	if err == nil {
		s.fingerprint = s.scan(0, 0).fingerprint
		s.state = stateSucceeded
		return nil
	}
	s.state = stateFailed

	violations, ok := xsderrors.AsValidations(err)
	if !ok || len(violations) == 0 {
		s.fingerprint = s.scan(0, 0).fingerprint
		return perrors.Wrap(perrors.ErrSchemaValidation, err, "validate "+s.name)
	}
	return s.describe(violations[0])
}

// describe turns the engine's first violation into a Validation carrying
// the reconstructed element path.
func (s *session) describe(first xsderrors.Validation) *perrors.Validation {
	pos := s.scan(first.Line, first.Column)
	s.fingerprint = pos.fingerprint

	out := &perrors.Validation{
		Code:     first.Code,
		Message:  first.Message,
		Reason:   first.Message,
		Path:     first.Path,
		Document: s.name,
		Line:     first.Line,
		Column:   first.Column,
	}
	if pos.found {
		out.Path = pos.path()
	}
	if first.Code == string(xsderrors.ErrRequiredAttributeMissing) && pos.found {
		if top, ok := pos.top(); ok {
			missing := s.required.missing(top.name, top.attrs)
			if len(missing) > 0 && !mentionsAll(first.Message, missing) {
				out.Message = requiredMessage(missing)
			}
		}
	}
	if len(first.Expected) > 0 {
		out.Reason += fmt.Sprintf(" (expected: %s)", strings.Join(first.Expected, ", "))
	}
	return out
}

// scan reads the document forward keeping the open element stack. It stops
// at the first event at or after line:column; the stack then names the
// element the engine was processing. A zero line scans only the root.
func (s *session) scan(line, column int) position {
	var pos position
	dec, err := xmlstream.NewStringReader(bytes.NewReader(s.data))
	if err != nil {
		return pos
	}
	for {
		ev, err := dec.Next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				pos.found = line > 0 && len(pos.stack) > 0
			}
			return pos
		}
		switch ev.Kind {
		case xmlstream.EventStartElement:
			f := frame{name: ev.Name.Local, attrs: make([]string, 0, len(ev.Attrs))}
			for _, attr := range ev.Attrs {
				f.attrs = append(f.attrs, attr.LocalName())
				if len(pos.stack) == 0 && attr.NamespaceURI() == "" && attr.LocalName() == fingerprintAttr {
					pos.fingerprint = attr.Value()
				}
			}
			pos.stack = append(pos.stack, f)
			if line <= 0 {
				return pos
			}
			if reached(ev.Line, ev.Column, line, column) {
				pos.found = true
				return pos
			}
		case xmlstream.EventEndElement:
			if reached(ev.Line, ev.Column, line, column) {
				pos.found = true
				return pos
			}
			if len(pos.stack) > 0 {
				pos.stack = pos.stack[:len(pos.stack)-1]
			}
		}
	}
}

func reached(line, column, targetLine, targetColumn int) bool {
	if line != targetLine {
		return line > targetLine
	}
	return column >= targetColumn
}

func mentionsAll(msg string, names []string) bool {
	for _, n := range names {
		if !strings.Contains(msg, n) {
			return false
		}
	}
	return true
}

func requiredMessage(missing []string) string {
	if len(missing) == 1 {
		return fmt.Sprintf("Required attribute '%s' is missing", missing[0])
	}
	return fmt.Sprintf("Required attributes '%s' are missing", strings.Join(missing, "', '"))
}
