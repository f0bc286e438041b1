package utils

import (
	"context"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/stretchr/testify/assert"
)

func TestRecovery(t *testing.T) {
	var h panicHandler
	r := NewRecovery()

	ctx := context.Background()
	s := store.MemStore()

	assert.Panics(t, func() { _, _ = h.Check(ctx, petal.BlockInfo{}, s, nil) })
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, petal.BlockInfo{}, s, nil) })

	_, err := r.Check(ctx, petal.BlockInfo{}, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	_, err = r.Deliver(ctx, petal.BlockInfo{}, s, nil, h)
	assert.True(t, errors.ErrPanic.Is(err))

	// Panic details are never exposed outside of debug mode.
	_, log := errors.ABCIInfo(err, false)
	assert.Equal(t, "internal error", log)
}

type panicHandler struct{}

var _ petal.Handler = panicHandler{}

func (panicHandler) Check(context.Context, petal.BlockInfo, petal.KVStore, petal.Tx) (*petal.CheckResult, error) {
	panic("check panic")
}

func (panicHandler) Deliver(context.Context, petal.BlockInfo, petal.KVStore, petal.Tx) (*petal.DeliverResult, error) {
	panic("deliver panic")
}
