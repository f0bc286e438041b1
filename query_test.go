package petal

import (
	"testing"

	"github.com/petaldocs/petal/weavetest/assert"
)

type staticQuery []Model

func (s staticQuery) Query(ReadOnlyKVStore, string, []byte) ([]Model, error) {
	return s, nil
}

func TestQueryRouter(t *testing.T) {
	owners := staticQuery{Pair([]byte("a"), []byte("b"))}

	r := NewQueryRouter()
	r.RegisterAll(func(qr QueryRouter) {
		qr.Register("/owners", owners)
	})

	h := r.Handler("/owners")
	if h == nil {
		t.Fatal("handler not registered")
	}
	res, err := h.Query(nil, KeyQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, []Model(owners), res)

	if r.Handler("/unknown") != nil {
		t.Fatal("unknown path must not be handled")
	}

	assert.Panics(t, func() { r.Register("/owners", owners) })
}
