package validator

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/jacoelho/xsd/pkg/xmlstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scanDoc = `<a>
  <b x="1">
    <c/>
  </b>
  <d/>
</a>`

type eventPos struct {
	kind   xmlstream.EventKind
	name   string
	line   int
	column int
}

func eventPositions(t *testing.T, doc string) []eventPos {
	t.Helper()
	dec, err := xmlstream.NewStringReader(bytes.NewReader([]byte(doc)))
	require.NoError(t, err)
	var out []eventPos
	for {
		ev, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		if ev.Kind == xmlstream.EventStartElement || ev.Kind == xmlstream.EventEndElement {
			out = append(out, eventPos{kind: ev.Kind, name: ev.Name.Local, line: ev.Line, column: ev.Column})
		}
	}
}

func findEvent(t *testing.T, events []eventPos, kind xmlstream.EventKind, name string) eventPos {
	t.Helper()
	for _, ev := range events {
		if ev.kind == kind && ev.name == name {
			return ev
		}
	}
	t.Fatalf("no %v event for %s", kind, name)
	return eventPos{}
}

func TestScanPath(t *testing.T) {
	s := &session{data: []byte(scanDoc)}
	events := eventPositions(t, scanDoc)
	tests := []struct {
		name string
		at   eventPos
		want string
	}{
		{name: "root start", at: findEvent(t, events, xmlstream.EventStartElement, "a"), want: "/a"},
		{name: "child start", at: findEvent(t, events, xmlstream.EventStartElement, "b"), want: "/a/b"},
		{name: "self closing", at: findEvent(t, events, xmlstream.EventStartElement, "c"), want: "/a/b/c"},
		{name: "end of parent", at: findEvent(t, events, xmlstream.EventEndElement, "b"), want: "/a/b"},
		{name: "sibling", at: findEvent(t, events, xmlstream.EventStartElement, "d"), want: "/a/d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := s.scan(tt.at.line, tt.at.column)
			assert.True(t, pos.found)
			assert.Equal(t, tt.want, pos.path())
		})
	}
}

func TestScanFramesKeepAttributes(t *testing.T) {
	s := &session{data: []byte(scanDoc)}
	b := findEvent(t, eventPositions(t, scanDoc), xmlstream.EventStartElement, "b")
	pos := s.scan(b.line, b.column)
	top, ok := pos.top()
	require.True(t, ok)
	assert.Equal(t, "b", top.name)
	assert.Equal(t, []string{"x"}, top.attrs)
}

func TestScanRootOnly(t *testing.T) {
	s := &session{data: []byte(`<Root DataSourceFingerprint="fp"><Child/></Root>`)}
	pos := s.scan(0, 0)
	assert.Equal(t, "fp", pos.fingerprint)
	assert.Equal(t, "/Root", pos.path())
	assert.False(t, pos.found)
}

func TestReached(t *testing.T) {
	assert.True(t, reached(2, 1, 1, 9))
	assert.True(t, reached(1, 9, 1, 9))
	assert.False(t, reached(1, 8, 1, 9))
	assert.False(t, reached(0, 50, 1, 1))
}

func TestRequiredMessage(t *testing.T) {
	assert.Equal(t, "Required attribute 'A' is missing", requiredMessage([]string{"A"}))
	assert.Equal(t, "Required attributes 'A', 'B' are missing", requiredMessage([]string{"A", "B"}))
}
