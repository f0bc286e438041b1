/*
Package sigs provides basic authentication
middleware to verify the signatures on the transaction,
and maintain nonces for replay protection.
*/
package sigs

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

const (
	signatureVerifyCost = 500
)

// RegisterQuery will register this bucket as "/auth"
func RegisterQuery(qr petal.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator verifies the signatures and adds them to the context
type Decorator struct {
	allowMissingSigs bool
}

var _ petal.Decorator = Decorator{}

// NewDecorator returns a default authentication decorator,
// which appends the chainID before checking the signature,
// and requires at least one signature to be present
func NewDecorator() Decorator {
	return Decorator{
		allowMissingSigs: false,
	}
}

// AllowMissingSigs allows us to pass along items with no signatures
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

// Check verifies signatures before calling down the stack.
func (d Decorator) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	ctx, signers, err := d.authenticate(ctx, info, db, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, info, db, tx)
	if err != nil {
		return nil, err
	}
	// Only valid signatures are charged for.
	res.GasAllocated += int64(signers * signatureVerifyCost)
	return res, nil
}

// Deliver verifies signatures before calling down the stack.
func (d Decorator) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, info, db, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, info, db, tx)
}

func (d Decorator) authenticate(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (context.Context, int, error) {
	stx, ok := tx.(SignedTx)
	if !ok {
		return ctx, 0, nil
	}
	signers, err := VerifyTxSignatures(db, stx, info.ChainID())
	if err != nil {
		return nil, 0, errors.Wrap(err, "cannot verify signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}
