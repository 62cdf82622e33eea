package errors

import "testing"

func TestWrap(t *testing.T) {
	err := Wrap(errWrapped, "Hello, Wrapped!")
	if err.Error() != "Hello, Wrapped!, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errWrapped, "upsert row %s", "bitcoin")
	if err.Error() != "upsert row bitcoin, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}

	if Wrapf(nil, "ignored %d", 1) != nil {
		t.Fatal("wrapping nil should stay nil")
	}
}
