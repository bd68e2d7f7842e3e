package forecast

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateFormat is the only accepted calendar date layout (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// Kind enumerates the scalar kinds a Value can hold.
type Kind int

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindDate
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Value is a scalar cell: a parsed CSV cell or a JSON scalar. The zero Value is invalid
// (unparseable, or JSON null).
type Value struct {
	kind Kind
	i    int64
	f    float64
	t    time.Time
	s    string
	b    bool
}

func Int(v int64) Value     { return Value{kind: KindInt, i: v} }
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}
func String(s string) Value { return Value{kind: KindString, s: s} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsValid() bool   { return v.kind != KindInvalid }
func (v Value) Time() time.Time { return v.t }

// Number returns the numeric value of an int or float. Dates, strings, bools and invalid values
// are not numbers.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// IsFinite reports whether v is a number that is neither infinite nor NaN.
func (v Value) IsFinite() bool {
	x, ok := v.Number()
	return ok && !math.IsInf(x, 0) && !math.IsNaN(x)
}

// Float64 is Number with NaN standing in for anything that is not a number.
func (v Value) Float64() float64 {
	if x, ok := v.Number(); ok {
		return x
	}
	return math.NaN()
}

// ParseValue converts a raw cell to an int, a float (inf and nan tokens included) or a
// YYYY-MM-DD date, trying them in that order. Anything else yields the invalid Value.
func ParseValue(s string) Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Float(f)
	} else if errors.Is(err, strconv.ErrRange) {
		// overflow saturates to +-Inf
		return Float(f)
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return Date(t)
	}
	return Value{}
}

// String formats v as a CSV cell. Invalid values format as the empty string.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return FormatFloat(v.f)
	case KindDate:
		return v.t.Format(DateFormat)
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// FormatFloat writes the shortest representation that parses back to x. Integral floats keep a
// trailing ".0" so they still read back as floats.
func FormatFloat(x float64) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	}
	abs := math.Abs(x)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Equal compares kind and content. Int and float values holding the same number are equal.
func (v Value) Equal(o Value) bool {
	if a, ok := v.Number(); ok {
		b, ok := o.Number()
		return ok && (a == b || (math.IsNaN(a) && math.IsNaN(b)))
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindDate:
		return v.t.Equal(o.t)
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	}
	return true
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return strconv.AppendInt(nil, v.i, 10), nil
	case KindFloat:
		switch {
		case math.IsNaN(v.f):
			return []byte(`"NaN"`), nil
		case math.IsInf(v.f, 1):
			return []byte(`"Infinity"`), nil
		case math.IsInf(v.f, -1):
			return []byte(`"-Infinity"`), nil
		}
		return json.Marshal(v.f)
	case KindDate:
		return json.Marshal(v.t.Format(DateFormat))
	case KindString:
		return json.Marshal(v.s)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("forecast: empty JSON value")
	}
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = Value{}
	case bytes.Equal(b, []byte("true")):
		*v = Bool(true)
	case bytes.Equal(b, []byte("false")):
		*v = Bool(false)
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = String(s)
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		if !bytes.ContainsAny(b, ".eE") {
			if i, err := strconv.ParseInt(string(b), 10, 64); err == nil {
				*v = Int(i)
				return nil
			}
		}
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return fmt.Errorf("forecast: bad JSON number %s: %w", b, err)
		}
		*v = Float(f)
	default:
		return fmt.Errorf("forecast: unsupported JSON value %s", b)
	}
	return nil
}
