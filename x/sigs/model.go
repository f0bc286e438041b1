package sigs

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/orm"
)

// BucketName is the store prefix of signer accounts.
const BucketName = "sigs"

// maxSequenceValue is the greatest sequence a javascript client can hold in
// a number without losing precision.
const maxSequenceValue = (1 << 53) - 1

var _ orm.CloneableData = (*UserData)(nil)

// Validate requires a public key once the account has signed anything.
func (u *UserData) Validate() error {
	errs := errors.AppendField(nil, "Metadata", u.Metadata.Validate())
	switch {
	case u.Sequence < 0:
		errs = errors.AppendField(errs, "Sequence", ErrInvalidSequence)
	case u.Sequence > 0 && u.Pubkey == nil:
		errs = errors.Append(errs, errors.Field("Sequence", ErrInvalidSequence, "needs Pubkey"))
	}
	return errs
}

// Copy returns a shallow copy. The public key is immutable and shared.
func (u *UserData) Copy() orm.CloneableData {
	cp := *u
	cp.Metadata = u.Metadata.Copy()
	return &cp
}

// CheckAndIncrementSequence consumes the expected sequence value. The
// account is left untouched on mismatch or overflow.
func (u *UserData) CheckAndIncrementSequence(expected int64) error {
	if u.Sequence != expected {
		return errors.Wrapf(ErrInvalidSequence, "mismatch expected %d, got %d", expected, u.Sequence)
	}
	if u.Sequence+1 > maxSequenceValue || u.Sequence+1 <= 0 {
		return errors.Wrap(errors.ErrOverflow, "sequence out of range")
	}
	u.Sequence++
	return nil
}

// SetPubkey binds a public key to a fresh account. Rebinding panics.
func (u *UserData) SetPubkey(pubkey *crypto.PublicKey) {
	if u.Pubkey != nil {
		panic("cannot change pubkey for a user")
	}
	u.Pubkey = pubkey
}

// NewUser returns an account object for the key, stored under the key's
// address. A nil key gives an object without a key, used as the bucket
// prototype.
func NewUser(pubkey *crypto.PublicKey) orm.Object {
	var addr petal.Address
	if pubkey != nil {
		addr = pubkey.Address()
	}
	return orm.NewSimpleObj(addr, &UserData{
		Metadata: &petal.Metadata{Schema: 1},
		Pubkey:   pubkey,
	})
}

// AsUser extracts the account from a bucket object. Nil in, nil out.
func AsUser(obj orm.Object) *UserData {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*UserData)
}

// Bucket stores signer accounts by address.
type Bucket struct {
	orm.Bucket
}

// NewBucket returns the account bucket.
func NewBucket() Bucket {
	return Bucket{Bucket: orm.NewBucket(BucketName, NewUser(nil))}
}

// GetOrCreate loads the account of the key, or returns a new unsaved one
// when the key never signed before.
func (b Bucket) GetOrCreate(db petal.KVStore, pubkey *crypto.PublicKey) (orm.Object, error) {
	obj, err := b.Get(db, pubkey.Address())
	switch {
	case err != nil:
		return nil, err
	case obj == nil:
		return NewUser(pubkey), nil
	}
	return obj, nil
}

// NextNonce returns the sequence the signer must use in its next
// signature. Unknown signers start at zero.
func NextNonce(db petal.ReadOnlyKVStore, signer petal.Address) (int64, error) {
	obj, err := NewBucket().Get(db, signer)
	if err != nil {
		return 0, errors.Wrap(err, "bucket get")
	}
	if u := AsUser(obj); u != nil {
		return u.Sequence, nil
	}
	return 0, nil
}
