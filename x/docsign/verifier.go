package docsign

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/errors"
	"golang.org/x/crypto/ed25519"
)

// SignatureVerifier checks that signature is a valid signature of message,
// created by the key controlling the signer address.
type SignatureVerifier interface {
	Verify(signer petal.Address, pubkey, message, signature []byte) error
}

// Ed25519Verifier verifies ed25519 signatures. The public key must belong to
// the signer, so its signature condition address must equal the signer.
type Ed25519Verifier struct{}

var _ SignatureVerifier = Ed25519Verifier{}

func (Ed25519Verifier) Verify(signer petal.Address, pubkey, message, signature []byte) error {
	if len(pubkey) != ed25519.PublicKeySize {
		return errors.Wrapf(ErrInvalidSignature, "public key must be %d bytes", ed25519.PublicKeySize)
	}
	if len(signature) != ed25519.SignatureSize {
		return errors.Wrapf(ErrInvalidSignature, "signature must be %d bytes", ed25519.SignatureSize)
	}
	key := &crypto.PublicKey{Ed25519: pubkey}
	if !key.Address().Equals(signer) {
		return errors.Wrapf(ErrInvalidSignature, "public key does not belong to %s", signer)
	}
	if !key.Verify(message, &crypto.Signature{Ed25519: signature}) {
		return errors.Wrap(ErrInvalidSignature, "signature does not match")
	}
	return nil
}

// SignBytes returns the canonical message a signer is expected to sign for
// given payload.
func SignBytes(payload *SignedPayload) ([]byte, error) {
	if payload == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "payload")
	}
	raw, err := payload.Marshal()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot serialize payload: %s", err)
	}
	return raw, nil
}

// SignPayload builds a submit signature message for given payload, signed
// with the key of the signer. The payload signer is set to the key address.
func SignPayload(key crypto.Signer, payload SignedPayload) (*SubmitSignatureMsg, error) {
	pub := key.PublicKey()
	if pub == nil {
		return nil, errors.Wrap(errors.ErrInput, "signer has no public key")
	}
	payload.Signer = pub.Address()
	message, err := SignBytes(&payload)
	if err != nil {
		return nil, err
	}
	sig, err := key.Sign(message)
	if err != nil {
		return nil, errors.Wrap(err, "cannot sign payload")
	}
	return &SubmitSignatureMsg{
		Metadata:  newMetadata(),
		PublicKey: pub.Ed25519,
		Message:   message,
		Signature: sig.Ed25519,
		Payload:   &payload,
	}, nil
}
