package model

import (
	"encoding/json"
	"testing"

	"main/internal/schema"
)

func TestFromAny(t *testing.T) {
	testCases := []struct {
		desc  string
		input any
		kind  ValueKind
	}{
		{"nil", nil, ValueNull},
		{"string", "bitcoin", ValueString},
		{"float", 42.5, ValueNumber},
		{"int", 7, ValueNumber},
		{"json number", json.Number("1.25"), ValueNumber},
		{"object", map[string]any{"times": 2.0}, ValueObject},
		{"bool", true, ValueOther},
		{"array", []any{1.0}, ValueOther},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := FromAny(tc.input).Kind(); got != tc.kind {
				t.Fatalf("kind mismatch: got %d want %d", got, tc.kind)
			}
		})
	}
}

func TestCoerce(t *testing.T) {
	testCases := []struct {
		desc string
		in   Value
		kind schema.FieldKind
		out  Value
		ok   bool
	}{
		{"number passthrough", NumberValue(1.5), schema.FieldKindNumber, NumberValue(1.5), true},
		{"numeric string", StringValue(" 42000.5 "), schema.FieldKindNumber, NumberValue(42000.5), true},
		{"unparseable string", StringValue("n/a"), schema.FieldKindNumber, Null, false},
		{"object to number", ObjectValue(map[string]any{}), schema.FieldKindNumber, Null, false},
		{"null stays null", Null, schema.FieldKindNumber, Null, true},
		{"string passthrough", StringValue("btc"), schema.FieldKindString, StringValue("btc"), true},
		{"number to string", NumberValue(0.5), schema.FieldKindString, StringValue("0.5"), true},
		{"object to string", ObjectValue(map[string]any{}), schema.FieldKindString, Null, false},
		{"null object ok", Null, schema.FieldKindObjectOrNull, Null, true},
		{"string to object", StringValue("{}"), schema.FieldKindObjectOrNull, Null, false},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, ok := Coerce(tc.in, tc.kind)
			if ok != tc.ok {
				t.Fatalf("ok mismatch: got %v want %v", ok, tc.ok)
			}
			if got.Kind() != tc.out.Kind() {
				t.Fatalf("kind mismatch: got %d want %d", got.Kind(), tc.out.Kind())
			}
			switch got.Kind() {
			case ValueNumber:
				if got.Number() != tc.out.Number() {
					t.Fatalf("number mismatch: got %v want %v", got.Number(), tc.out.Number())
				}
			case ValueString:
				if got.String() != tc.out.String() {
					t.Fatalf("string mismatch: got %q want %q", got.String(), tc.out.String())
				}
			}
		})
	}
}

func TestMatches(t *testing.T) {
	if !NumberValue(1).Matches(schema.FieldKindNumber) {
		t.Fatal("number should match number kind")
	}
	if StringValue("1").Matches(schema.FieldKindNumber) {
		t.Fatal("string should not match number kind")
	}
	if !Null.Matches(schema.FieldKindObjectOrNull) {
		t.Fatal("null should match object-or-null kind")
	}
	if Null.Matches(schema.FieldKindString) {
		t.Fatal("null should not match string kind")
	}
	if FromAny(true).Matches(schema.FieldKindObjectOrNull) {
		t.Fatal("bool should not match any kind")
	}
}

func TestNullCount(t *testing.T) {
	empty := CanonicalRecord{}
	if got := empty.NullCount(); got != 26 {
		t.Fatalf("empty record null count: got %d want 26", got)
	}

	price := 1.0
	id := "bitcoin"
	rec := CanonicalRecord{ID: id, CurrentPrice: &price}
	if got := rec.NullCount(); got != 24 {
		t.Fatalf("partial record null count: got %d want 24", got)
	}
}
