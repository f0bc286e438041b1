// Package assert provides the small set of assertions used by petal tests.
package assert

import (
	"reflect"

	"github.com/petaldocs/petal/errors"
)

// Tester is the subset of testing.TB required by the assertions.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// %+v prints the stack trace of errors that carry one.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) (res bool) {
	if value == nil {
		return true
	}
	// IsNil panics for kinds that cannot be nil.
	defer func() {
		if recover() != nil {
			res = false
		}
	}()
	return reflect.ValueOf(value).IsNil()
}

// Equal fails the test if two values are not deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails the test if given function call does not panic.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// IsErr fails the test unless got is of the kind of want, as tested by the
// Is method of want.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if w, ok := want.(interface{ Is(error) bool }); ok && w.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}

// FieldError ensures that given error contains exactly one error for given
// field and that it is of the wanted kind. Use nil as want to ensure that no
// error was created for the field.
func FieldError(t Tester, err error, fieldName string, want *errors.Error) {
	t.Helper()

	errs := errors.FieldErrors(err, fieldName)
	switch {
	case want == nil && len(errs) == 0:
		return
	case want == nil:
		t.Fatalf("want no %q field error, got %d: %v", fieldName, len(errs), errs)
	case len(errs) == 0:
		t.Fatalf("no %q field error found", fieldName)
	case len(errs) > 1:
		t.Fatalf("want one %q field error, got %d: %v", fieldName, len(errs), errs)
	case !want.Is(errs[0]):
		t.Fatalf("unexpected %q field error: %+v", fieldName, errs[0])
	}
}
