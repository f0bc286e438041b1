package weavetest

import (
	"context"

	"github.com/petaldocs/petal"
)

// Decorator is a petal.Decorator that records how many times each phase
// passed through it.
//
// A non nil CheckErr or DeliverErr short circuits the corresponding phase,
// the next handler is not called then. Calls are counted whether they fail
// or not.
type Decorator struct {
	CheckErr   error
	DeliverErr error

	checks   int
	delivers int
}

var _ petal.Decorator = (*Decorator)(nil)

// Check implements petal.Decorator.
func (d *Decorator) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	d.checks++
	if err := d.CheckErr; err != nil {
		return nil, err
	}
	return next.Check(ctx, info, db, tx)
}

// Deliver implements petal.Decorator.
func (d *Decorator) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	d.delivers++
	if err := d.DeliverErr; err != nil {
		return nil, err
	}
	return next.Deliver(ctx, info, db, tx)
}

// CheckCallCount returns the number of Check calls.
func (d *Decorator) CheckCallCount() int { return d.checks }

// DeliverCallCount returns the number of Deliver calls.
func (d *Decorator) DeliverCallCount() int { return d.delivers }

// CallCount returns the number of Check and Deliver calls together.
func (d *Decorator) CallCount() int { return d.checks + d.delivers }

// Decorate wraps h so that every call goes through d first.
func Decorate(h petal.Handler, d petal.Decorator) petal.Handler {
	return decorated{next: h, with: d}
}

type decorated struct {
	next petal.Handler
	with petal.Decorator
}

func (d decorated) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	return d.with.Check(ctx, info, db, tx, d.next)
}

func (d decorated) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	return d.with.Deliver(ctx, info, db, tx, d.next)
}
