package common

import (
	"bytes"
	"encoding/json"
)

// Patch is a JSON field that remembers whether it was present in the payload.
// An explicit null is recorded as Null so updates can remove optional attributes.
type Patch[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// UnmarshalJSON is only invoked for keys present in the document.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Null = true
		return nil
	}
	return json.Unmarshal(data, &p.Value)
}

// MarshalJSON writes the value, or null when unset or cleared
func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.Set || p.Null {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Present reports whether the field carries a non-null value
func (p Patch[T]) Present() bool {
	return p.Set && !p.Null
}

// Cleared reports whether the payload explicitly nulled the field
func (p Patch[T]) Cleared() bool {
	return p.Set && p.Null
}

// Some builds a set Patch, mostly for tests and internal callers.
func Some[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: v}
}
