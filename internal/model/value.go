package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"main/internal/schema"
)

// ValueKind tags the runtime shape of a raw field value.
type ValueKind uint8

const (
	ValueNull ValueKind = iota
	ValueString
	ValueNumber
	ValueObject
	// ValueOther covers runtime shapes the schema never declares
	// (booleans, arrays). They fail type conformance for every kind.
	ValueOther
)

// Value is a tagged variant over the shapes a raw snapshot field can take.
// Coercion is explicit per declared kind instead of scattered runtime type
// switches.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	obj  map[string]any
}

// Null is the null value.
var Null = Value{kind: ValueNull}

// StringValue builds a string value.
func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

// NumberValue builds a numeric value.
func NumberValue(f float64) Value { return Value{kind: ValueNumber, num: f} }

// ObjectValue builds an object value.
func ObjectValue(obj map[string]any) Value { return Value{kind: ValueObject, obj: obj} }

// FromAny classifies a decoded JSON value.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case string:
		return StringValue(t)
	case float64:
		return NumberValue(t)
	case int:
		return NumberValue(float64(t))
	case int64:
		return NumberValue(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{kind: ValueOther}
		}
		return NumberValue(f)
	case map[string]any:
		return ObjectValue(t)
	default:
		return Value{kind: ValueOther}
	}
}

// Kind returns the runtime tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == ValueNull }

// String returns the string payload. Valid only for ValueString.
func (v Value) String() string { return v.str }

// Number returns the numeric payload. Valid only for ValueNumber.
func (v Value) Number() float64 { return v.num }

// Object returns the object payload. Valid only for ValueObject.
func (v Value) Object() map[string]any { return v.obj }

// Matches reports whether the runtime shape conforms to the declared kind.
// Null never matches; completeness is checked separately. The object-or-null
// kind is the exception: absence and null are legal for it.
func (v Value) Matches(kind schema.FieldKind) bool {
	switch kind {
	case schema.FieldKindString:
		return v.kind == ValueString
	case schema.FieldKindNumber:
		return v.kind == ValueNumber
	case schema.FieldKindObjectOrNull:
		return v.kind == ValueObject || v.kind == ValueNull
	default:
		return false
	}
}

// AsNumber coerces the value to a float64 with a best-effort parse for
// numeric strings. ok is false when no number can be produced.
func (v Value) AsNumber() (f float64, ok bool) {
	switch v.kind {
	case ValueNumber:
		return v.num, true
	case ValueString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsString coerces the value to a string. Numbers are formatted with the
// shortest round-trip representation so repeated runs stay byte-identical.
func (v Value) AsString() (s string, ok bool) {
	switch v.kind {
	case ValueString:
		return v.str, true
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64), true
	default:
		return "", false
	}
}

// AsObject coerces the value to an object. Anything that is not already an
// object fails.
func (v Value) AsObject() (obj map[string]any, ok bool) {
	if v.kind != ValueObject {
		return nil, false
	}
	return v.obj, true
}

// Coerce converts the value to its canonical form for the declared kind.
// Null input stays null and is not a coercion failure; a non-null value
// that cannot be converted comes back as null with ok=false.
func Coerce(v Value, kind schema.FieldKind) (Value, bool) {
	if v.IsNull() {
		return Null, true
	}

	switch kind {
	case schema.FieldKindString:
		s, ok := v.AsString()
		if !ok {
			return Null, false
		}
		return StringValue(s), true
	case schema.FieldKindNumber:
		f, ok := v.AsNumber()
		if !ok {
			return Null, false
		}
		return NumberValue(f), true
	case schema.FieldKindObjectOrNull:
		obj, ok := v.AsObject()
		if !ok {
			return Null, false
		}
		return ObjectValue(obj), true
	default:
		return Null, false
	}
}
