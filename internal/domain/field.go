package domain

import (
	"bytes"
	"encoding/json"
)

// Field is one entry of a partial update. The zero value means the field was
// absent. Null is set when the caller explicitly sent null.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

func Cleared[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Present reports whether the field carries a non-null value.
func (f Field[T]) Present() bool {
	return f.Set && !f.Null
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Apply writes the new value into dst when present and different.
// It returns true if dst changed.
func Apply[T comparable](dst *T, f Field[T]) bool {
	if !f.Present() || *dst == f.Value {
		return false
	}
	*dst = f.Value
	return true
}
