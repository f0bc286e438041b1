package docsign

import (
	"encoding/binary"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/orm"
)

// maxHashLength is the size of the longest supported digest (sha512).
const maxHashLength = 64

// TokenKey returns the database key of given token id.
func TokenKey(id uint32) []byte {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, id)
	return key
}

// TokenIDFromKey is the reverse of TokenKey.
func TokenIDFromKey(key []byte) (uint32, error) {
	if len(key) != 4 {
		return 0, errors.Wrapf(errors.ErrInput, "token key must be 4 bytes, got %d", len(key))
	}
	return binary.BigEndian.Uint32(key), nil
}

var _ orm.Model = (*Admin)(nil)

func (m *Admin) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Address", m.Address.Validate())
	return errs
}

func (m *Admin) Copy() orm.CloneableData {
	return &Admin{
		Metadata: m.Metadata.Copy(),
		Address:  m.Address.Clone(),
	}
}

var _ orm.Model = (*TokenOwner)(nil)

func (m *TokenOwner) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	return errs
}

func (m *TokenOwner) Copy() orm.CloneableData {
	return &TokenOwner{
		Metadata: m.Metadata.Copy(),
		Owner:    m.Owner.Clone(),
	}
}

var _ orm.Model = (*TokenURI)(nil)

// Validate accepts an empty URI, a token does not have to point to any
// metadata.
func (m *TokenURI) Validate() error {
	return errors.AppendField(nil, "Metadata", m.Metadata.Validate())
}

func (m *TokenURI) Copy() orm.CloneableData {
	return &TokenURI{
		Metadata: m.Metadata.Copy(),
		URI:      m.URI,
	}
}

var _ orm.Model = (*DocumentHash)(nil)

func (m *DocumentHash) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Hash", validateHash(m.Hash))
	return errs
}

func (m *DocumentHash) Copy() orm.CloneableData {
	return &DocumentHash{
		Metadata: m.Metadata.Copy(),
		Hash:     append([]byte(nil), m.Hash...),
	}
}

func validateHash(hash []byte) error {
	switch n := len(hash); {
	case n == 0:
		return errors.ErrEmpty
	case n > maxHashLength:
		return errors.Wrapf(errors.ErrInput, "hash longer than %d bytes", maxHashLength)
	}
	return nil
}

var _ orm.Model = (*DocumentDeadline)(nil)

func (m *DocumentDeadline) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Deadline", m.Deadline.Validate())
	return errs
}

func (m *DocumentDeadline) Copy() orm.CloneableData {
	return &DocumentDeadline{
		Metadata: m.Metadata.Copy(),
		Deadline: m.Deadline,
	}
}

var _ orm.Model = (*SigningSession)(nil)

// Validate ensures the roster is not empty, lists every signer once and
// holds only statuses that can be stored.
func (m *SigningSession) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Roster) == 0 {
		errs = errors.AppendField(errs, "Roster", ErrEmptySignerRoster)
	}
	seen := make(map[string]struct{}, len(m.Roster))
	for _, e := range m.Roster {
		if e == nil {
			errs = errors.Append(errs, errors.Field("Roster", errors.ErrEmpty, "nil entry"))
			continue
		}
		if err := e.Signer.Validate(); err != nil {
			errs = errors.AppendField(errs, "Roster.Signer", err)
			continue
		}
		if _, ok := seen[e.Signer.String()]; ok {
			errs = errors.Append(errs, errors.Field("Roster.Signer", errors.ErrDuplicate, "signer %s", e.Signer))
		}
		seen[e.Signer.String()] = struct{}{}
		if !e.Status.isStorable() {
			errs = errors.Append(errs, errors.Field("Roster.Status", errors.ErrModel, "status %s cannot be stored", e.Status))
		}
	}
	return errs
}

func (m *SigningSession) Copy() orm.CloneableData {
	roster := make([]*RosterEntry, len(m.Roster))
	for i, e := range m.Roster {
		roster[i] = &RosterEntry{
			Signer: e.Signer.Clone(),
			Status: e.Status,
		}
	}
	return &SigningSession{
		Metadata: m.Metadata.Copy(),
		Roster:   roster,
	}
}

// lookup returns the recorded status of given signer. Found is false if
// the signer is not on the roster.
func (m *SigningSession) lookup(signer petal.Address) (status SignatureStatus, found bool) {
	for _, e := range m.Roster {
		if e.Signer.Equals(signer) {
			return e.Status, true
		}
	}
	return StatusNotASigner, false
}

// StatusOf returns the status of given signer, StatusNotASigner for
// anyone not on the roster.
func (m *SigningSession) StatusOf(signer petal.Address) SignatureStatus {
	status, _ := m.lookup(signer)
	return status
}

// record overwrites the status of a roster member.
func (m *SigningSession) record(signer petal.Address, status SignatureStatus) error {
	for _, e := range m.Roster {
		if e.Signer.Equals(signer) {
			e.Status = status
			return nil
		}
	}
	return errors.Wrapf(ErrNotASigner, "signer %s", signer)
}

// Statuses returns the roster as a map keyed by the signer address string.
func (m *SigningSession) Statuses() map[string]SignatureStatus {
	res := make(map[string]SignatureStatus, len(m.Roster))
	for _, e := range m.Roster {
		res[e.Signer.String()] = e.Status
	}
	return res
}

var _ orm.Model = (*Nonce)(nil)

func (m *Nonce) Validate() error {
	return errors.AppendField(nil, "Metadata", m.Metadata.Validate())
}

func (m *Nonce) Copy() orm.CloneableData {
	return &Nonce{
		Metadata: m.Metadata.Copy(),
		Value:    m.Value,
	}
}

// isStorable returns true for the statuses a roster entry can hold.
func (s SignatureStatus) isStorable() bool {
	switch s {
	case StatusWaiting, StatusSigned, StatusRejected:
		return true
	}
	return false
}

// IsDecision returns true for the statuses a signer can submit.
func (s SignatureStatus) IsDecision() bool {
	return s == StatusSigned || s == StatusRejected
}
