package flow

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Style is a CSS-like property bag produced by style nodes.
type Style map[string]any

// objectString is what a Style turns into when coerced to a string.
const objectString = "[object Object]"

// Normalize maps a Go value onto the evaluator's value model:
// nil, bool, float64, string or Style. Arrays are not part of the model and
// collapse to nil.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, float64, string, Style:
		return v
	case map[string]any:
		return Style(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return string(x)
	case []any:
		return nil
	default:
		return v
	}
}

// Truthy reports whether v counts as true in a condition.
// nil, false, 0, NaN and "" are falsy; everything else is truthy.
func Truthy(v any) bool {
	switch x := Normalize(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case string:
		return x != ""
	default:
		return true
	}
}

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// ToNumber coerces v to a number. Strings are trimmed and parsed as decimal,
// 0x/0o/0b integer or Infinity literals; anything unparseable is NaN.
func ToNumber(v any) float64 {
	switch x := Normalize(v).(type) {
	case nil:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case float64:
		return x
	case string:
		return parseNumber(x)
	default:
		return math.NaN()
	}
}

// jsSpace reports the characters number parsing trims: Unicode white space
// and the byte order mark, but not NEL.
func jsSpace(r rune) bool {
	return r == '\uFEFF' || (r != '\u0085' && unicode.IsSpace(r))
}

func parseNumber(s string) float64 {
	s = strings.TrimFunc(s, jsSpace)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// ToString coerces v to a string the way a browser would display it.
func ToString(v any) string {
	switch x := Normalize(v).(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return FormatNumber(x)
	case string:
		return x
	default:
		return objectString
	}
}

// text is ToString with nil mapped to the empty string.
func text(v any) string {
	if v == nil {
		return ""
	}
	return ToString(v)
}

// FormatNumber renders f using the shortest round-trip digits, switching to
// exponent notation outside [1e-6, 1e21).
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}

	// d.ddddde±XX
	e := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expPart, _ := strings.Cut(e, "e")
	digits := strings.Replace(mant, ".", "", 1)
	exp, _ := strconv.Atoi(expPart)
	k := len(digits)
	n := exp + 1

	switch {
	case k <= n && n <= 21:
		return sign + digits + strings.Repeat("0", n-k)
	case 0 < n && n <= 21:
		return sign + digits[:n] + "." + digits[n:]
	case -6 < n && n <= 0:
		return sign + "0." + strings.Repeat("0", -n) + digits
	}

	expSign := "+"
	if n-1 < 0 {
		expSign = "-"
	}
	expAbs := n - 1
	if expAbs < 0 {
		expAbs = -expAbs
	}
	if k == 1 {
		return sign + digits + "e" + expSign + strconv.Itoa(expAbs)
	}
	return sign + digits[:1] + "." + digits[1:] + "e" + expSign + strconv.Itoa(expAbs)
}

// LooseEqual compares two values with implicit coercion: booleans compare as
// numbers, a number and a string compare numerically, and a Style compared
// with a primitive compares as "[object Object]". Two Styles are equal only
// when they are the same object.
func LooseEqual(a, b any) bool {
	a, b = Normalize(a), Normalize(b)
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if x, ok := a.(bool); ok {
		return LooseEqual(ToNumber(x), b)
	}
	if y, ok := b.(bool); ok {
		return LooseEqual(a, ToNumber(y))
	}

	switch x := a.(type) {
	case float64:
		switch y := b.(type) {
		case float64:
			return x == y
		case string:
			return x == parseNumber(y)
		case Style:
			return LooseEqual(x, objectString)
		}
	case string:
		switch y := b.(type) {
		case string:
			return x == y
		case float64:
			return parseNumber(x) == y
		case Style:
			return x == objectString
		}
	case Style:
		if y, ok := b.(Style); ok {
			return reflect.ValueOf(x).Pointer() == reflect.ValueOf(y).Pointer()
		}
		return LooseEqual(objectString, b)
	}
	return false
}

// num coerces v to a number, falling back to def when v is missing or not
// numeric.
func num(v any, def float64) float64 {
	if v == nil {
		return def
	}
	n := ToNumber(v)
	if math.IsNaN(n) {
		return def
	}
	return n
}

// finite replaces NaN and infinities with 0.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// round rounds half-way cases towards positive infinity.
func round(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	r := math.Floor(f)
	if f-r >= 0.5 {
		r++
	}
	return r
}

// asStyle returns v as a Style, or an empty Style when v is anything else.
func asStyle(v any) Style {
	if s, ok := Normalize(v).(Style); ok {
		return s
	}
	return Style{}
}

// Clone returns a shallow copy of s.
func (s Style) Clone() Style {
	out := make(Style, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge copies every key of other into s, overwriting existing keys.
func (s Style) Merge(other Style) {
	for k, v := range other {
		s[k] = v
	}
}
