package utils

import (
	"context"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
	"github.com/tendermint/tendermint/libs/common"
)

func TestActionTagger(t *testing.T) {
	tx := &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: "docsign/issue"}}
	db := store.MemStore()
	ctx := context.Background()

	res, err := NewActionTagger().Deliver(ctx, petal.BlockInfo{}, db, tx, &weavetest.Handler{})
	assert.Nil(t, err)
	assert.Equal(t, []common.KVPair{{Key: []byte("action"), Value: []byte("docsign/issue")}}, res.Tags)

	_, err = NewActionTagger().Deliver(ctx, petal.BlockInfo{}, db, tx, &weavetest.Handler{DeliverErr: errors.ErrNotFound})
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found error, got %+v", err)
	}

	broken := &weavetest.Tx{Err: errors.ErrInput}
	var h weavetest.Handler
	_, err = NewActionTagger().Deliver(ctx, petal.BlockInfo{}, db, broken, &h)
	if !errors.ErrInput.Is(err) {
		t.Fatalf("want input error, got %+v", err)
	}
	assert.Equal(t, 0, h.CallCount())

	cres, err := NewActionTagger().Check(ctx, petal.BlockInfo{}, db, tx, &weavetest.Handler{CheckResult: petal.CheckResult{Log: "ok"}})
	assert.Nil(t, err)
	assert.Equal(t, "ok", cres.Log)
}

func TestKeyTagger(t *testing.T) {
	ok, ov := []byte("foo:demo"), []byte("data")
	nk, nv := []byte{1, 0xab, 3}, []byte{4, 5, 6}

	cases := map[string]struct {
		handler petal.Handler
		wantErr *errors.Error
		tags    []common.KVPair
	}{
		"failure adds no tags": {
			handler: &weavetest.WriteHandler{Key: nk, Value: nv, Err: errors.ErrState},
			wantErr: errors.ErrState,
		},
		"single write": {
			handler: &weavetest.WriteHandler{Key: nk, Value: nv},
			tags:    []common.KVPair{{Key: []byte("01AB03"), Value: []byte("s")}},
		},
		"multiple writes are sorted": {
			handler: weavetest.Decorate(
				&weavetest.WriteHandler{Key: ok, Value: ov},
				&writeDecorator{key: nk, value: nv},
			),
			tags: []common.KVPair{
				{Key: []byte("01AB03"), Value: []byte("s")},
				{Key: []byte("666F6F3A64656D6F"), Value: []byte("s")},
			},
		},
		"deletion": {
			handler: &deleteHandler{key: ok},
			tags:    []common.KVPair{{Key: []byte("666F6F3A64656D6F"), Value: []byte("d")}},
		},
		"savepoint writes are recorded": {
			handler: weavetest.Decorate(
				&weavetest.WriteHandler{Key: nk, Value: nv},
				NewSavepoint().OnDeliver(),
			),
			tags: []common.KVPair{{Key: []byte("01AB03"), Value: []byte("s")}},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			res, err := NewKeyTagger().Deliver(context.Background(), petal.BlockInfo{}, db, nil, tc.handler)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v error, got %+v", tc.wantErr, err)
				}
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, len(tc.tags), len(res.Tags))
			for i, tag := range tc.tags {
				assert.Equal(t, string(tag.Key), string(res.Tags[i].Key))
				assert.Equal(t, string(tag.Value), string(res.Tags[i].Value))
			}
		})
	}
}

// writeDecorator writes the key value pair before calling the next handler.
type writeDecorator struct {
	key   []byte
	value []byte
}

func (d *writeDecorator) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	if err := db.Set(d.key, d.value); err != nil {
		return nil, err
	}
	return next.Check(ctx, info, db, tx)
}

func (d *writeDecorator) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	if err := db.Set(d.key, d.value); err != nil {
		return nil, err
	}
	return next.Deliver(ctx, info, db, tx)
}

type deleteHandler struct {
	key []byte
}

func (h *deleteHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	return &petal.CheckResult{}, db.Delete(h.key)
}

func (h *deleteHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	return &petal.DeliverResult{}, db.Delete(h.key)
}
