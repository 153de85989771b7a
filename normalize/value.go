package normalize

import (
	"encoding/json"
	"encoding/xml"
	"math"
	"strconv"

	"github.com/tidwall/gjson"
)

// Kind is the shape of a raw feed value
type Kind uint8

const (
	KindAbsent Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "absent"
	}
}

// Value is a raw feed value of unknown shape.
// The zero value is absent
type Value struct {
	text string
	num  float64
	kind Kind
}

// Absent returns the "no value" variant
func Absent() Value {
	return Value{}
}

// Number wraps an already numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Text wraps a textual value, as received
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

func (v Value) Kind() Kind {
	return v.kind
}

// String returns the value as text. Absent values yield an empty string,
// numbers their shortest decimal representation
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// MarshalJSON passes the value through untouched
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}

		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = valueFromJSON(gjson.ParseBytes(b))

	return nil
}

// UnmarshalXMLAttr reads a present attribute as text.
// Missing attributes leave the value absent
func (v *Value) UnmarshalXMLAttr(attr xml.Attr) error {
	*v = Text(attr.Value)

	return nil
}

// valueFromJSON maps a JSON node onto a raw value.
// Booleans, objects and arrays carry no rate and are absent
func valueFromJSON(r gjson.Result) Value {
	switch r.Type {
	case gjson.Number:
		return Number(r.Num)
	case gjson.String:
		return Text(r.Str)
	default:
		return Absent()
	}
}
