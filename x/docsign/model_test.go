package docsign

import (
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestTokenKey(t *testing.T) {
	for _, id := range []uint32{0, 1, 7, 1 << 20, 1<<32 - 1} {
		key := TokenKey(id)
		assert.Equal(t, 4, len(key))
		got, err := TokenIDFromKey(key)
		assert.Nil(t, err)
		assert.Equal(t, id, got)
	}

	// Big endian keys keep the iteration order of ids.
	assert.Equal(t, []byte{0, 0, 1, 0}, TokenKey(256))

	_, err := TokenIDFromKey([]byte{1, 2, 3})
	assert.IsErr(t, errors.ErrInput, err)
}

func TestSigningSessionValidate(t *testing.T) {
	a := weavetest.RandomAddr(t)
	b := weavetest.RandomAddr(t)

	cases := map[string]struct {
		model   *SigningSession
		wantErr map[string]*errors.Error
	}{
		"valid": {
			model: &SigningSession{
				Metadata: &petal.Metadata{Schema: 1},
				Roster: []*RosterEntry{
					{Signer: a, Status: StatusWaiting},
					{Signer: b, Status: StatusRejected},
				},
			},
			wantErr: map[string]*errors.Error{
				"Metadata":      nil,
				"Roster":        nil,
				"Roster.Signer": nil,
				"Roster.Status": nil,
			},
		},
		"empty roster": {
			model: &SigningSession{
				Metadata: &petal.Metadata{Schema: 1},
			},
			wantErr: map[string]*errors.Error{
				"Metadata": nil,
				"Roster":   ErrEmptySignerRoster,
			},
		},
		"missing metadata": {
			model: &SigningSession{
				Roster: []*RosterEntry{{Signer: a, Status: StatusWaiting}},
			},
			wantErr: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
				"Roster":   nil,
			},
		},
		"duplicated signer": {
			model: &SigningSession{
				Metadata: &petal.Metadata{Schema: 1},
				Roster: []*RosterEntry{
					{Signer: a, Status: StatusWaiting},
					{Signer: a, Status: StatusSigned},
				},
			},
			wantErr: map[string]*errors.Error{
				"Roster.Signer": errors.ErrDuplicate,
				"Roster.Status": nil,
			},
		},
		"not a signer cannot be stored": {
			model: &SigningSession{
				Metadata: &petal.Metadata{Schema: 1},
				Roster: []*RosterEntry{
					{Signer: a, Status: StatusNotASigner},
				},
			},
			wantErr: map[string]*errors.Error{
				"Roster.Signer": nil,
				"Roster.Status": errors.ErrModel,
			},
		},
		"invalid signer address": {
			model: &SigningSession{
				Metadata: &petal.Metadata{Schema: 1},
				Roster: []*RosterEntry{
					{Signer: petal.Address{1, 2}, Status: StatusWaiting},
				},
			},
			wantErr: map[string]*errors.Error{
				"Roster.Signer": errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.model.Validate()
			for field, want := range tc.wantErr {
				assert.FieldError(t, err, field, want)
			}
		})
	}
}

func TestSigningSessionLookup(t *testing.T) {
	a := weavetest.RandomAddr(t)
	b := weavetest.RandomAddr(t)
	stranger := weavetest.RandomAddr(t)

	s := &SigningSession{
		Metadata: &petal.Metadata{Schema: 1},
		Roster: []*RosterEntry{
			{Signer: a, Status: StatusWaiting},
			{Signer: b, Status: StatusRejected},
		},
	}

	status, found := s.lookup(a)
	assert.Equal(t, true, found)
	assert.Equal(t, StatusWaiting, status)

	_, found = s.lookup(stranger)
	assert.Equal(t, false, found)
	assert.Equal(t, StatusNotASigner, s.StatusOf(stranger))

	assert.Nil(t, s.record(a, StatusSigned))
	assert.Equal(t, StatusSigned, s.StatusOf(a))
	assert.IsErr(t, ErrNotASigner, s.record(stranger, StatusSigned))

	assert.Equal(t, map[string]SignatureStatus{
		a.String(): StatusSigned,
		b.String(): StatusRejected,
	}, s.Statuses())
}

func TestSigningSessionCopy(t *testing.T) {
	a := weavetest.RandomAddr(t)
	s := &SigningSession{
		Metadata: &petal.Metadata{Schema: 1},
		Roster:   []*RosterEntry{{Signer: a, Status: StatusWaiting}},
	}
	cpy := s.Copy().(*SigningSession)
	assert.Equal(t, s, cpy)

	cpy.Roster[0].Status = StatusSigned
	cpy.Roster[0].Signer[0]++
	assert.Equal(t, StatusWaiting, s.Roster[0].Status)
	assert.Equal(t, false, cpy.Roster[0].Signer.Equals(s.Roster[0].Signer))
}

func TestDocumentHashValidate(t *testing.T) {
	cases := map[string]struct {
		hash    []byte
		wantErr *errors.Error
	}{
		"sha256":   {hash: make([]byte, 32)},
		"sha512":   {hash: make([]byte, 64)},
		"empty":    {hash: nil, wantErr: errors.ErrEmpty},
		"too long": {hash: make([]byte, 65), wantErr: errors.ErrInput},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			m := &DocumentHash{Metadata: &petal.Metadata{Schema: 1}, Hash: tc.hash}
			assert.FieldError(t, m.Validate(), "Hash", tc.wantErr)
		})
	}
}

func TestSignatureStatusKinds(t *testing.T) {
	cases := map[SignatureStatus]struct {
		storable bool
		decision bool
	}{
		StatusNotASigner: {storable: false, decision: false},
		StatusWaiting:    {storable: true, decision: false},
		StatusSigned:     {storable: true, decision: true},
		StatusRejected:   {storable: true, decision: true},
	}
	for status, tc := range cases {
		t.Run(status.String(), func(t *testing.T) {
			assert.Equal(t, tc.storable, status.isStorable())
			assert.Equal(t, tc.decision, status.IsDecision())
		})
	}

	unknown := SignatureStatus(42)
	assert.Equal(t, false, unknown.isStorable())
	assert.Equal(t, false, unknown.IsDecision())
}
