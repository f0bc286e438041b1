package errors

import (
	"reflect"
	"testing"
)

func TestFieldErrors(t *testing.T) {
	// Errors are created once so the results can be compared with DeepEqual.
	var (
		ownerErr       = Field("Owner", ErrInput, "address")
		ownerEmptyErr  = Field("Owner", ErrEmpty, "required")
		deadlineErr    = Field("Deadline", ErrState, "negative")
		payloadErr     = Field("Payload", Append(ownerEmptyErr, Append(deadlineErr, ErrMetadata)), "payload")
		deadlineTwice  = Field("Deadline", deadlineErr, "outer")
		signerIndexErr = Field("Signers.1", ErrDuplicate, "signer")
	)

	cases := map[string]struct {
		err   error
		field string
		want  []error
	}{
		"nil error": {
			err:   nil,
			field: "Owner",
			want:  nil,
		},
		"plain error has no fields": {
			err:   ErrInput,
			field: "Owner",
			want:  nil,
		},
		"single field error": {
			err:   ownerErr,
			field: "Owner",
			want:  []error{ownerErr},
		},
		"name must match exactly": {
			err:   signerIndexErr,
			field: "Signers",
			want:  nil,
		},
		"indexed field name": {
			err:   signerIndexErr,
			field: "Signers.1",
			want:  []error{signerIndexErr},
		},
		"all matches of a multi error": {
			err:   Append(ownerErr, deadlineErr, ownerEmptyErr),
			field: "Owner",
			want:  []error{ownerErr, ownerEmptyErr},
		},
		"field holding a multi error": {
			err:   payloadErr,
			field: "Payload",
			want:  []error{payloadErr},
		},
		"nested inside a field multi error": {
			err:   payloadErr,
			field: "Deadline",
			want:  []error{deadlineErr},
		},
		"wrapped multi error": {
			err:   Wrap(Wrap(payloadErr, "inner"), "outer"),
			field: "Owner",
			want:  []error{ownerEmptyErr},
		},
		"wrapped multi error without a match": {
			err:   Wrap(payloadErr, "outer"),
			field: "URI",
			want:  nil,
		},
		"outermost of the same name wins": {
			err:   deadlineTwice,
			field: "Deadline",
			want:  []error{deadlineTwice},
		},
		"innermost of a different name is found": {
			err:   Field("Payload", Field("Message", ownerErr, "m"), "p"),
			field: "Owner",
			want:  []error{ownerErr},
		},
		"wrapped members of a wrapped multi error": {
			err: Wrap(Append(
				Wrap(ownerErr, "a"),
				Wrap(deadlineErr, "b"),
				Wrap(ownerEmptyErr, "c"),
			), "outer"),
			field: "Owner",
			want:  []error{ownerErr, ownerEmptyErr},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got := FieldErrors(tc.err, tc.field)
			if !reflect.DeepEqual(tc.want, got) {
				t.Fatalf("want %#v\ngot %#v", tc.want, got)
			}
		})
	}
}

func TestFieldNilError(t *testing.T) {
	if err := Field("Owner", nil, "ignored"); err != nil {
		t.Fatalf("want nil, got %+v", err)
	}
	if err := AppendField(nil, "Owner", nil); err != nil {
		t.Fatalf("want nil, got %+v", err)
	}
	err := AppendField(nil, "Owner", ErrEmpty)
	if !ErrEmpty.Is(err) {
		t.Fatalf("want empty error, got %+v", err)
	}
	if got := FieldErrors(err, "Owner"); len(got) != 1 {
		t.Fatalf("want one field error, got %d", len(got))
	}
}
