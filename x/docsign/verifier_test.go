package docsign

import (
	"testing"

	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestEd25519Verifier(t *testing.T) {
	key := weavetest.NewKey()
	other := weavetest.NewKey()
	payload := SignedPayload{
		TokenID:      7,
		DocumentHash: []byte("hash"),
		Deadline:     999,
		Status:       StatusSigned,
	}
	msg, err := SignPayload(key, payload)
	assert.Nil(t, err)
	assert.Equal(t, key.PublicKey().Address(), msg.Payload.Signer)

	signer := key.PublicKey().Address()
	flip := func(b []byte) []byte {
		cpy := append([]byte(nil), b...)
		cpy[0] ^= 0xff
		return cpy
	}

	cases := map[string]struct {
		signer  []byte
		pubkey  []byte
		message []byte
		sig     []byte
		wantErr *errors.Error
	}{
		"valid": {
			signer:  signer,
			pubkey:  msg.PublicKey,
			message: msg.Message,
			sig:     msg.Signature,
		},
		"modified message": {
			signer:  signer,
			pubkey:  msg.PublicKey,
			message: flip(msg.Message),
			sig:     msg.Signature,
			wantErr: ErrInvalidSignature,
		},
		"modified signature": {
			signer:  signer,
			pubkey:  msg.PublicKey,
			message: msg.Message,
			sig:     flip(msg.Signature),
			wantErr: ErrInvalidSignature,
		},
		"key of another signer": {
			signer:  other.PublicKey().Address(),
			pubkey:  msg.PublicKey,
			message: msg.Message,
			sig:     msg.Signature,
			wantErr: ErrInvalidSignature,
		},
		"short public key": {
			signer:  signer,
			pubkey:  msg.PublicKey[:10],
			message: msg.Message,
			sig:     msg.Signature,
			wantErr: ErrInvalidSignature,
		},
		"short signature": {
			signer:  signer,
			pubkey:  msg.PublicKey,
			message: msg.Message,
			sig:     msg.Signature[:10],
			wantErr: ErrInvalidSignature,
		},
		"missing signature": {
			signer:  signer,
			pubkey:  msg.PublicKey,
			message: msg.Message,
			wantErr: ErrInvalidSignature,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := Ed25519Verifier{}.Verify(tc.signer, tc.pubkey, tc.message, tc.sig)
			if tc.wantErr == nil {
				assert.Nil(t, err)
			} else {
				assert.IsErr(t, tc.wantErr, err)
			}
		})
	}
}

func TestSignBytes(t *testing.T) {
	_, err := SignBytes(nil)
	assert.IsErr(t, errors.ErrEmpty, err)

	p := &SignedPayload{TokenID: 1, Signer: weavetest.RandomAddr(t), Nonce: 3}
	raw, err := SignBytes(p)
	assert.Nil(t, err)

	var decoded SignedPayload
	assert.Nil(t, decoded.Unmarshal(raw))
	assert.Equal(t, p.Signer, decoded.Signer)
	assert.Equal(t, uint32(3), decoded.Nonce)
}
