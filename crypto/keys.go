package crypto

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"golang.org/x/crypto/ed25519"
)

const (
	// ExtensionName is used for the conditions created from signatures.
	ExtensionName = "sigs"

	// KeyTypeEd25519 is the condition type of ed25519 public keys.
	KeyTypeEd25519 = "ed25519"
)

// Signer is the functionality used from a private key. Serialization is not
// required, so that hardware devices can implement it.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// Verify returns true if sig was created by signing message with the
// private key of this public key.
func (p *PublicKey) Verify(message []byte, sig *Signature) bool {
	if p == nil || len(p.Ed25519) != ed25519.PublicKeySize {
		return false
	}
	if sig == nil || len(sig.Ed25519) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p.Ed25519), message, sig.Ed25519)
}

// Condition returns the condition fulfilled by a valid signature of this
// key, or nil for an empty key.
func (p *PublicKey) Condition() petal.Condition {
	if p == nil || len(p.Ed25519) == 0 {
		return nil
	}
	return petal.NewCondition(ExtensionName, KeyTypeEd25519, p.Ed25519)
}

// Address returns the address of this key, or nil for an empty key.
func (p *PublicKey) Address() petal.Address {
	c := p.Condition()
	if c == nil {
		return nil
	}
	return c.Address()
}

var _ Signer = (*PrivateKey)(nil)

// Sign returns the signature of message.
func (p *PrivateKey) Sign(message []byte) (*Signature, error) {
	if p == nil || len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil, errors.Wrap(errors.ErrInput, "invalid ed25519 private key")
	}
	return &Signature{
		Ed25519: ed25519.Sign(ed25519.PrivateKey(p.Ed25519), message),
	}, nil
}

// PublicKey returns the public key matching this private key.
func (p *PrivateKey) PublicKey() *PublicKey {
	if p == nil || len(p.Ed25519) != ed25519.PrivateKeySize {
		return nil
	}
	pub := ed25519.PrivateKey(p.Ed25519).Public().(ed25519.PublicKey)
	return &PublicKey{Ed25519: pub}
}

// GenPrivKeyEd25519 returns a new random private key.
func GenPrivKeyEd25519() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{Ed25519: priv}
}

// PrivKeyEd25519FromSeed deterministically generates a private key from
// a 32 byte seed. It panics for a seed of any other size.
func PrivKeyEd25519FromSeed(seed []byte) *PrivateKey {
	return &PrivateKey{Ed25519: ed25519.NewKeyFromSeed(seed)}
}
