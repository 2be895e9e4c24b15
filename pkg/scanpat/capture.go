package scanpat

import (
	"encoding/json"
	"strconv"
)

// Kind is the type of a captured value.
type Kind uint8

const (
	// KindInt holds %n counts and integer conversions.
	KindInt Kind = iota + 1
	// KindFloat holds %f and %lf conversions.
	KindFloat
	// KindString holds %p and %0p captures.
	KindString
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Capture is one value produced by a match.
type Capture struct {
	Kind  Kind
	Int   int64
	Float float64
	Str   string
	// Null marks a string capture from an absent optional attribute.
	Null bool
}

// String formats the captured value; null strings print as <nil>.
func (c Capture) String() string {
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(c.Float, 'g', -1, 64)
	case KindString:
		if c.Null {
			return "<nil>"
		}
		return c.Str
	default:
		return ""
	}
}

// MarshalJSON encodes the captured value as a JSON number, string or null.
func (c Capture) MarshalJSON() ([]byte, error) {
	var v any
	switch c.Kind {
	case KindInt:
		v = c.Int
	case KindFloat:
		v = c.Float
	case KindString:
		if !c.Null {
			v = c.Str
		}
	}
	return json.Marshal(v)
}

// Result holds the captures of a successful match in pattern order.
type Result []Capture

// Int returns capture i as an integer.
func (r Result) Int(i int) int64 {
	if i < 0 || i >= len(r) {
		return 0
	}
	return r[i].Int
}

// Float returns capture i as a float.
func (r Result) Float(i int) float64 {
	if i < 0 || i >= len(r) {
		return 0
	}
	return r[i].Float
}

// Str returns capture i as a string and whether it was present.
func (r Result) Str(i int) (string, bool) {
	if i < 0 || i >= len(r) || r[i].Kind != KindString || r[i].Null {
		return "", false
	}
	return r[i].Str, true
}
