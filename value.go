package proligent

import (
	"math"
	"strconv"
	"time"

	perrors "github.com/jacoelho/proligent/errors"
)

// measureTimeLayout is the text form of DATETIME measure values.
const measureTimeLayout = "2006-01-02 15:04:05"

// Value is a measure value or limit bound.
// The zero Value is absent: it renders as an empty bound and is rejected
// as a measure value.
type Value struct {
	text string
	kind MeasureKind
}

// String returns a STRING value.
func String(s string) Value {
	return Value{text: s, kind: MeasureString}
}

// Bool returns a BOOL value rendered as True or False.
func Bool(b bool) Value {
	if b {
		return Value{text: "True", kind: MeasureBool}
	}
	return Value{text: "False", kind: MeasureBool}
}

// Int returns an INTEGER value.
func Int(i int64) Value {
	return Value{text: strconv.FormatInt(i, 10), kind: MeasureInteger}
}

// Uint returns an INTEGER value for unsigned inputs.
func Uint(u uint64) Value {
	return Value{text: strconv.FormatUint(u, 10), kind: MeasureInteger}
}

// Real returns a REAL value using the shortest decimal form that round-trips.
func Real(f float64) Value {
	return Value{text: formatFloat(f, 64), kind: MeasureReal}
}

// Real32 is Real for single precision inputs.
func Real32(f float32) Value {
	return Value{text: formatFloat(float64(f), 32), kind: MeasureReal}
}

// Timestamp returns a DATETIME value rendered in t's own location.
func Timestamp(t time.Time) Value {
	return Value{text: t.Format(measureTimeLayout), kind: MeasureDateTime}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// ValueOf converts a dynamically typed input into a Value.
// Every Go integer and float width, bool, string and time.Time are
// accepted; a Value passes through. nil yields the absent Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Uint(uint64(x)), nil
	case uint8:
		return Uint(uint64(x)), nil
	case uint16:
		return Uint(uint64(x)), nil
	case uint32:
		return Uint(uint64(x)), nil
	case uint64:
		return Uint(x), nil
	case float32:
		return Real32(x), nil
	case float64:
		return Real(x), nil
	case time.Time:
		return Timestamp(x), nil
	case *time.Time:
		if x == nil {
			return Value{}, nil
		}
		return Timestamp(*x), nil
	default:
		return Value{}, perrors.Newf(perrors.ErrUnsupportedMeasureType, "measure value type %T is not supported", v)
	}
}

// MustValueOf is ValueOf for literals known to be supported. It panics on error.
func MustValueOf(v any) Value {
	out, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return out
}

// IsZero reports whether v is absent.
func (v Value) IsZero() bool {
	return v.kind == kindUnset
}

// Kind returns the type tag; absent values report an empty kind.
func (v Value) Kind() MeasureKind {
	return v.kind
}

// String returns the normalized text, or "" when absent.
func (v Value) String() string {
	return v.text
}

// Normalize returns the text and kind written to the document.
func (v Value) Normalize() (string, MeasureKind, error) {
	if v.IsZero() {
		return "", kindUnset, perrors.New(perrors.ErrUnsupportedMeasureType, "measure value is not set")
	}
	return v.text, v.kind, nil
}
