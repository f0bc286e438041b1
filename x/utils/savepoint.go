package utils

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// Savepoint runs the wrapped handler on a cache wrap of the store. Changes
// are written through only when the handler succeeds, so a failing
// transaction leaves no trace.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ petal.Decorator = Savepoint{}

// NewSavepoint creates a Savepoint decorator that does nothing until
// enabled with OnCheck or OnDeliver.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck enables the savepoint for CheckTx.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver enables the savepoint for DeliverTx.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

func (s Savepoint) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	var res *petal.CheckResult
	err := savepoint(s.onCheck, db, func(db petal.KVStore) error {
		var err error
		res, err = next.Check(ctx, info, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s Savepoint) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	var res *petal.DeliverResult
	err := savepoint(s.onDeliver, db, func(db petal.KVStore) error {
		var err error
		res, err = next.Deliver(ctx, info, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// savepoint calls fn with a cache wrap of db if enabled and db can be
// cached. Otherwise fn operates on db directly.
func savepoint(enabled bool, db petal.KVStore, fn func(petal.KVStore) error) error {
	cacheable, ok := db.(petal.CacheableKVStore)
	if !enabled || !ok {
		return fn(db)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "writing savepoint")
	}
	return nil
}

// Atomic calls fn with a cache wrap of db and writes the changes only if fn
// succeeds. A store that cannot be cached is passed to fn directly.
func Atomic(db petal.KVStore, fn func(petal.KVStore) error) error {
	return savepoint(true, db, fn)
}
