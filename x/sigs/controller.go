package sigs

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/errors"
)

// SignCodeV1 prefixes every signed payload. Changing the sign bytes layout
// requires a new code.
var SignCodeV1 = []byte{0, 0xCA, 0xFE, 0}

// VerifyTxSignatures verifies every signature of the transaction and
// returns the signer conditions in signature order. The first invalid
// signature fails the whole transaction.
func VerifyTxSignatures(db petal.KVStore, tx SignedTx, chainID string) ([]petal.Condition, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	sigs := tx.GetSignatures()
	signers := make([]petal.Condition, 0, len(sigs))
	for i, sig := range sigs {
		cond, err := VerifySignature(db, sig, payload, chainID)
		if err != nil {
			return nil, errors.Wrapf(err, "signature %d", i)
		}
		signers = append(signers, cond)
	}
	return signers, nil
}

// VerifySignature checks a single signature over the payload. On success
// the signer account sequence is consumed and saved.
func VerifySignature(db petal.KVStore, sig *StdSignature, payload []byte, chainID string) (petal.Condition, error) {
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	digest, err := BuildSignBytes(payload, chainID, sig.Sequence)
	if err != nil {
		return nil, err
	}

	accounts := NewBucket()
	obj, err := accounts.GetOrCreate(db, sig.Pubkey)
	if err != nil {
		return nil, err
	}
	account := AsUser(obj)

	if !account.Pubkey.Verify(digest, sig.Signature) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "invalid signature")
	}
	if err := account.CheckAndIncrementSequence(sig.Sequence); err != nil {
		return nil, err
	}
	if err := accounts.Save(db, obj); err != nil {
		return nil, err
	}
	return account.Pubkey.Condition(), nil
}

// BuildSignBytes returns the sha512 digest of
//
//	SignCodeV1 | len(chainID) as uint8 | chainID | seq as big endian int64 | payload
//
// The fixed digest size keeps hardware signers usable for any payload.
func BuildSignBytes(payload []byte, chainID string, seq int64) ([]byte, error) {
	if seq < 0 {
		return nil, errors.Wrap(ErrInvalidSequence, "negative")
	}
	if !petal.IsValidChainID(chainID) {
		return nil, errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}

	var buf bytes.Buffer
	buf.Grow(len(SignCodeV1) + 1 + len(chainID) + 8 + len(payload))
	buf.Write(SignCodeV1)
	buf.WriteByte(uint8(len(chainID)))
	buf.WriteString(chainID)
	_ = binary.Write(&buf, binary.BigEndian, seq)
	buf.Write(payload)

	digest := sha512.Sum512(buf.Bytes())
	return digest[:], nil
}

// BuildSignBytesTx is BuildSignBytes over the payload of tx.
func BuildSignBytesTx(tx SignedTx, chainID string, seq int64) ([]byte, error) {
	payload, err := tx.GetSignBytes()
	if err != nil {
		return nil, err
	}
	return BuildSignBytes(payload, chainID, seq)
}

// SignTx signs tx for the given chain and sequence.
func SignTx(signer crypto.Signer, tx SignedTx, chainID string, seq int64) (*StdSignature, error) {
	digest, err := BuildSignBytesTx(tx, chainID, seq)
	if err != nil {
		return nil, err
	}
	raw, err := signer.Sign(digest)
	if err != nil {
		return nil, err
	}
	return &StdSignature{
		Pubkey:    signer.PublicKey(),
		Signature: raw,
		Sequence:  seq,
	}, nil
}
