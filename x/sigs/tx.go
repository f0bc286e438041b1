package sigs

import "github.com/petaldocs/petal/errors"

// SignedTx represents a transaction that contains signatures,
// which can be verified by the Decorator.
type SignedTx interface {
	// GetSignBytes returns the canonical byte representation of the
	// transaction without its signatures.
	GetSignBytes() ([]byte, error)

	// GetSignatures returns the signatures of everyone who signed the
	// transaction.
	GetSignatures() []*StdSignature
}

// Validate ensures the StdSignature meets basic standards.
func (s *StdSignature) Validate() error {
	if s.GetSequence() < 0 {
		return errors.Wrap(ErrInvalidSequence, "negative")
	}
	if s.GetPubkey() == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing public key")
	}
	if s.GetSignature() == nil {
		return errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return nil
}
