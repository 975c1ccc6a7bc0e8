package domain

import "encoding/json"

// Optional is a tri-state field for partial patches: it distinguishes a
// key absent from the request body, an explicit JSON null, and an explicit
// value. The zero value means "absent".
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns an Optional that is present but explicitly null.
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// Set reports whether the key was present at all.
func (o Optional[T]) Set() bool { return o.set }

// IsNull reports whether the key was present with an explicit null.
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// Get returns the value and whether a non-null value is present.
func (o Optional[T]) Get() (T, bool) {
	if !o.set || o.null {
		var zero T
		return zero, false
	}
	return o.value, true
}

// Or returns the value when present and non-null, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if v, ok := o.Get(); ok {
		return v
	}
	return fallback
}

// UnmarshalJSON is only invoked by encoding/json for keys present in the
// body, which is what makes the absent state observable.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON encodes absent and null both as null; patches are request
// payloads, so round-tripping absence is not required.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set || o.null {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
