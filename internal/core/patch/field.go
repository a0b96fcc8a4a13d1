// Package patch provides presence-aware optional values for partial updates.
//
// A Field distinguishes "omitted from the payload" from "explicitly set",
// including explicitly set to null or to the zero value:
//
//	type postPatch struct {
//	    Title patch.Field[string]   `json:"title"`
//	    Tags  patch.Field[[]string] `json:"tags"`
//	}
//
// After json.Unmarshal, Title.Set is true only if the key was present.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is an optional value that remembers whether it was supplied.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a Field that is present with value v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Get returns the value and whether it was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// Or returns the value if supplied, otherwise fallback.
func (f Field[T]) Or(fallback T) T {
	if f.Set {
		return f.Value
	}
	return fallback
}

// UnmarshalJSON is only invoked by encoding/json when the key is present, so
// reaching it at all marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes the value, or null when the field was explicitly nulled.
// Callers should tag fields with omitzero so unset fields are skipped.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// IsZero lets the omitzero struct tag drop unset fields when marshaling.
func (f Field[T]) IsZero() bool {
	return !f.Set
}
