package app

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/x/docsign"
	"github.com/petaldocs/petal/x/sigs"
)

// TxDecoder creates a Tx and unmarshals bytes into it
func TxDecoder(bz []byte) (petal.Tx, error) {
	tx := new(Tx)
	if err := tx.Unmarshal(bz); err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return tx, nil
}

var _ petal.Tx = (*Tx)(nil)
var _ sigs.SignedTx = (*Tx)(nil)

// GetMsg returns the single message carried by the transaction.
func (tx *Tx) GetMsg() (petal.Msg, error) {
	var msgs []petal.Msg
	if m := tx.GetInitMsg(); m != nil {
		msgs = append(msgs, m)
	}
	if m := tx.GetIssueMsg(); m != nil {
		msgs = append(msgs, m)
	}
	if m := tx.GetSubmitSignatureMsg(); m != nil {
		msgs = append(msgs, m)
	}
	if m := tx.GetUpdateConfigurationMsg(); m != nil {
		msgs = append(msgs, m)
	}

	switch len(msgs) {
	case 0:
		return nil, errors.Wrap(errors.ErrEmpty, "transaction without a message")
	case 1:
		return msgs[0], nil
	default:
		return nil, errors.Wrapf(errors.ErrInput, "transaction with %d messages", len(msgs))
	}
}

// GetSignBytes returns the bytes to sign, that is the transaction
// serialized without the signatures.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	sigs := tx.Signatures
	tx.Signatures = nil

	bz, err := tx.Marshal()

	tx.Signatures = sigs
	return bz, err
}

// Wrap builds an unsigned transaction carrying given message.
func Wrap(msg petal.Msg) (*Tx, error) {
	tx := new(Tx)
	switch m := msg.(type) {
	case *docsign.InitMsg:
		tx.InitMsg = m
	case *docsign.IssueMsg:
		tx.IssueMsg = m
	case *docsign.SubmitSignatureMsg:
		tx.SubmitSignatureMsg = m
	case *docsign.UpdateConfigurationMsg:
		tx.UpdateConfigurationMsg = m
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unsupported message %T", msg)
	}
	return tx, nil
}
