package utils

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// Recovery turns panics raised down the stack into ErrPanic errors, so
// that a single broken transaction cannot halt the node.
type Recovery struct{}

var _ petal.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (Recovery) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (_ *petal.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, info, db, tx)
}

func (Recovery) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (_ *petal.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, info, db, tx)
}
