package weavetest

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/crypto"
)

// NewKey returns a new random ed25519 signer.
func NewKey() crypto.Signer {
	return crypto.GenPrivKeyEd25519()
}

// NewCondition returns the signature condition of a new random key.
func NewCondition() petal.Condition {
	return NewKey().PublicKey().Condition()
}
