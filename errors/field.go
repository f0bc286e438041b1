package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attaches the name of the offending attribute to err. A nil err
// results in a nil error, so the result of a validation can be passed
// directly.
//
// Field names follow Go naming. Nested fields use a dot separated path, and
// elements of a sequence use their index, for example Signers.2 or
// Payload.Signer.
func Field(fieldName string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	// The stack is recorded only once, at the innermost wrap.
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) > 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: fieldName, desc: description}
}

// AppendField adds the field error, if any, to the errors collected so far.
// It is the usual building block of a Validate method.
func AppendField(errorsOrNil error, fieldName string, fieldErrOrNil error) error {
	return Append(errorsOrNil, Field(fieldName, fieldErrOrNil, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (err *fieldError) Error() string {
	if err.desc == "" {
		return fmt.Sprintf("field %q: %s", err.field, err.parent)
	}
	return fmt.Sprintf("field %q: %s: %s", err.field, err.desc, err.parent)
}

func (err *fieldError) Cause() error {
	return err.parent
}

func (err *fieldError) Field() string {
	return err.field
}

type fielder interface {
	Field() string
}

// FieldErrors returns every error created for the field with exactly the
// given name. Both multi errors and wrapped errors are searched.
func FieldErrors(err error, fieldName string) []error {
	if isNilErr(err) {
		return nil
	}
	var found []error
	collectFieldErrors(err, fieldName, &found)
	return found
}

func collectFieldErrors(err error, fieldName string, found *[]error) {
	for err != nil {
		if f, ok := err.(fielder); ok && f.Field() == fieldName {
			*found = append(*found, err)
			return
		}
		switch e := err.(type) {
		case unpacker:
			// Unpack returns every child, so the cause is already covered.
			for _, child := range e.Unpack() {
				collectFieldErrors(child, fieldName, found)
			}
			return
		case causer:
			err = e.Cause()
		default:
			return
		}
	}
}
