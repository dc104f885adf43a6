package patch

import "gopkg.in/yaml.v3"

// Optional is one field of a sparse update. It has three states:
//   - not set: the field is left as is (zero value)
//   - unset: the field is cleared, only meaningful for optional fields
//   - value: the field takes the value
type Optional[T any] struct {
	value *T
	set   bool
}

// NewOptional returns an Optional holding val.
func NewOptional[T any](val T) Optional[T] {
	return Optional[T]{value: &val, set: true}
}

// NewOptionalPtr returns an Optional holding *val, or an unset Optional when
// val is nil.
func NewOptionalPtr[T any](val *T) Optional[T] {
	if val == nil {
		return Unset[T]()
	}
	v := *val
	return Optional[T]{value: &v, set: true}
}

// Unset returns an Optional that clears the field.
func Unset[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// NotSet returns an Optional that leaves the field untouched.
func NotSet[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) IsSet() bool { return o.set }

// Value returns the held value, nil when not set or unset.
func (o Optional[T]) Value() *T { return o.value }

func (o Optional[T]) IsUnset() bool { return o.set && o.value == nil }

func (o Optional[T]) HasValue() bool { return o.set && o.value != nil }

// ApplyTo writes the value into a required field. Unset is ignored because a
// required field cannot be cleared.
func (o Optional[T]) ApplyTo(dst *T) bool {
	if !o.HasValue() {
		return false
	}
	*dst = *o.value
	return true
}

// ApplyPtr writes the value into an optional field, clearing it on unset.
func (o Optional[T]) ApplyPtr(dst **T) bool {
	if !o.set {
		return false
	}
	if o.value == nil {
		*dst = nil
		return true
	}
	v := *o.value
	*dst = &v
	return true
}

// UnmarshalYAML maps an explicit null to unset. Keys missing from the
// document never reach this method and stay not set.
func (o *Optional[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*o = Unset[T]()
		return nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	*o = NewOptional(v)
	return nil
}
