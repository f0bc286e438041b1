package weavetest

import (
	"context"

	"github.com/petaldocs/petal"
)

// Handler is a mock implementation of the petal.Handler interface.
// It returns the configured results and counts every call.
type Handler struct {
	checkCall   int
	CheckResult petal.CheckResult
	CheckErr    error

	deliverCall   int
	DeliverResult petal.DeliverResult
	DeliverErr    error
}

var _ petal.Handler = (*Handler)(nil)

func (h *Handler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	h.checkCall++
	res := h.CheckResult
	return &res, h.CheckErr
}

func (h *Handler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	h.deliverCall++
	res := h.DeliverResult
	return &res, h.DeliverErr
}

func (h *Handler) CheckCallCount() int {
	return h.checkCall
}

func (h *Handler) DeliverCallCount() int {
	return h.deliverCall
}

func (h *Handler) CallCount() int {
	return h.checkCall + h.deliverCall
}

// WriteHandler writes Key and Value to the store on every call and then
// returns Err. It is useful to test rollback of failed transactions.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ petal.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &petal.CheckResult{}, h.Err
}

func (h *WriteHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &petal.DeliverResult{}, h.Err
}
