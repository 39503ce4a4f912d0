package dataset

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Kind classifies a cell value.
type Kind uint8

const (
	KindBlank Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "blank"
	}
}

// Value is a single cell: blank, text or number. The zero Value is blank.
type Value struct {
	kind Kind
	str  string
	num  float64
}

// Blank is the absent value.
var Blank = Value{}

// String returns a text value. The empty string is blank.
func String(s string) Value {
	if s == "" {
		return Blank
	}
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value. NaN is blank.
func Number(f float64) Value {
	if math.IsNaN(f) {
		return Blank
	}
	if f == 0 {
		f = 0 // fold -0
	}
	return Value{kind: KindNumber, num: f}
}

// FromAny converts a Go value into a cell. Strings stay text, any numeric type
// becomes a number, nil is blank, and everything else is stringified.
func FromAny(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Blank
	case Value:
		return x
	case string:
		return String(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Number(cast.ToFloat64(x))
	default:
		return String(cast.ToString(x))
	}
}

// Kind reports the value's kind.
func (v Value) Kind() Kind { return v.kind }

// IsBlank reports whether the cell is absent.
func (v Value) IsBlank() bool { return v.kind == KindBlank }

// String renders the cell as text. Integral numbers render without a
// fractional part; blank renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return cast.ToString(v.num)
	default:
		return ""
	}
}

// Float returns the numeric value and whether the cell is a number.
func (v Value) Float() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Any returns nil, a string or a float64.
func (v Value) Any() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// Equal reports whether two cells hold the same kind and content. Blank
// equals blank.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	default:
		return true
	}
}

// Compare orders two cells for sorting and returns -1, 0 or +1. Blank sorts
// after everything else, numbers before text, numbers numerically and text
// by code point.
func Compare(a, b Value) int {
	if a.kind == KindBlank || b.kind == KindBlank {
		switch {
		case a.kind == b.kind:
			return 0
		case a.kind == KindBlank:
			return 1
		default:
			return -1
		}
	}
	if a.kind != b.kind {
		if a.kind == KindNumber {
			return -1
		}
		return 1
	}
	if a.kind == KindNumber {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a.str, b.str)
}
