package orm

import (
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestBucketNames(t *testing.T) {
	assert.Panics(t, func() { NewBucket("to", &SimpleObj{}) })
	assert.Panics(t, func() { NewBucket("Upper", &SimpleObj{}) })
	assert.Panics(t, func() { NewBucket("much_too_long", &SimpleObj{}) })
	assert.Equal(t, "owners", NewBucket("owners", NewSimpleObj(nil, &Counter{})).Name())
}

func TestBucketQuery(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{}))

	for key, count := range map[string]int64{"ab": 1, "ac": 2, "b": 3} {
		assert.Nil(t, b.Save(db, NewSimpleObj([]byte(key), &Counter{Count: count})))
	}

	qr := petal.NewQueryRouter()
	b.Register("counters", qr)
	h := qr.Handler("/counters")
	if h == nil {
		t.Fatal("bucket not registered")
	}

	res, err := h.Query(db, petal.KeyQueryMod, []byte("ac"))
	assert.Nil(t, err)
	if len(res) != 1 {
		t.Fatalf("want one result, got %d", len(res))
	}
	assert.Equal(t, []byte("cnts:ac"), res[0].Key)
	obj, err := b.Parse([]byte("ac"), res[0].Value)
	assert.Nil(t, err)
	assert.Equal(t, int64(2), obj.Value().(*Counter).Count)

	res, err = h.Query(db, petal.KeyQueryMod, []byte("zz"))
	assert.Nil(t, err)
	assert.Equal(t, 0, len(res))

	res, err = h.Query(db, petal.PrefixQueryMod, []byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, 2, len(res))

	res, err = h.Query(db, petal.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 3, len(res))

	_, err = h.Query(db, "range", nil)
	assert.IsErr(t, errors.ErrInput, err)
}

func TestBucketGetDelete(t *testing.T) {
	db := store.MemStore()
	b := NewBucket("cnts", NewSimpleObj(nil, &Counter{}))

	obj, err := b.Get(db, []byte("missing"))
	assert.Nil(t, err)
	assert.Nil(t, obj)

	assert.Nil(t, b.Save(db, NewSimpleObj([]byte("one"), &Counter{Count: 1})))
	ok, err := b.Has(db, []byte("one"))
	assert.Nil(t, err)
	assert.Equal(t, true, ok)

	assert.Nil(t, b.Delete(db, []byte("one")))
	ok, err = b.Has(db, []byte("one"))
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	assert.Nil(t, db.Set(b.DBKey([]byte("broken")), []byte{0xff, 0xff}))
	_, err = b.Get(db, []byte("broken"))
	assert.IsErr(t, errors.ErrModel, err)
}
