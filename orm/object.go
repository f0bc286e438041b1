package orm

import (
	"reflect"

	"github.com/petaldocs/petal/errors"
)

// SimpleObj wraps a key and a value together.
type SimpleObj struct {
	key   []byte
	value CloneableData
}

var _ Object = (*SimpleObj)(nil)

// NewSimpleObj combines a key and value into an object.
func NewSimpleObj(key []byte, value CloneableData) *SimpleObj {
	return &SimpleObj{
		key:   key,
		value: value,
	}
}

// Value returns the value stored in the object.
func (o SimpleObj) Value() CloneableData {
	return o.value
}

// Key returns the key to store the object under.
func (o SimpleObj) Key() []byte {
	return o.key
}

// Validate ensures both the key and the value are present and delegates to
// the value validation.
func (o SimpleObj) Validate() error {
	if len(o.key) == 0 {
		return errors.Field("Key", errors.ErrEmpty, "missing key")
	}
	if o.value == nil {
		return errors.Field("Value", errors.ErrEmpty, "missing value")
	}
	return errors.Field("Value", o.value.Validate(), "invalid value")
}

// SetKey updates the key.
func (o *SimpleObj) SetKey(key []byte) {
	o.key = key
}

// Clone returns an object with a copy of the key and a new, zero value of the
// same type.
func (o *SimpleObj) Clone() Object {
	res := &SimpleObj{
		value: reflect.New(reflect.TypeOf(o.value).Elem()).Interface().(CloneableData),
	}
	if len(o.key) > 0 {
		res.key = append([]byte(nil), o.key...)
	}
	return res
}
