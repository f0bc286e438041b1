package sigs

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/weavetest"
)

// StdTx is a signed transaction carrying a raw payload.
type StdTx struct {
	weavetest.Tx
	Signatures []*StdSignature
}

var _ SignedTx = (*StdTx)(nil)
var _ petal.Tx = (*StdTx)(nil)

func NewStdTx(payload []byte) *StdTx {
	msg := &weavetest.Msg{RoutePath: "test/sigs", Serialized: payload}
	return &StdTx{Tx: weavetest.Tx{Msg: msg}}
}

func (tx *StdTx) GetSignatures() []*StdSignature {
	return tx.Signatures
}

func (tx *StdTx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	return msg.Marshal()
}

// SigCheckHandler stores the seen signers on each call
type SigCheckHandler struct {
	Signers []petal.Condition
}

var _ petal.Handler = (*SigCheckHandler)(nil)

func (s *SigCheckHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &petal.CheckResult{}, nil
}

func (s *SigCheckHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	s.Signers = Authenticate{}.GetConditions(ctx)
	return &petal.DeliverResult{}, nil
}
