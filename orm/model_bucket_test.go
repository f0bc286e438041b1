package orm

import (
	"testing"

	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	if err := b.Put(db, []byte("c1"), &Counter{Count: 1}); err != nil {
		t.Fatalf("cannot save counter instance: %s", err)
	}
	assert.Nil(t, b.Has(db, []byte("c1")))

	var c1 Counter
	if err := b.One(db, []byte("c1"), &c1); err != nil {
		t.Fatalf("cannot get c1 counter: %s", err)
	}
	if c1.Count != 1 {
		t.Fatalf("unexpected counter state: %d", c1.Count)
	}

	if err := b.Delete(db, []byte("c1")); err != nil {
		t.Fatalf("cannot delete c1 counter: %s", err)
	}
	assert.IsErr(t, errors.ErrNotFound, b.Delete(db, []byte("unknown")))
	assert.IsErr(t, errors.ErrNotFound, b.One(db, []byte("c1"), &c1))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
}

func TestModelBucketPutInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	assert.IsErr(t, errors.ErrModel, b.Put(db, []byte("c1"), &Counter{Count: -4}))
	assert.IsErr(t, errors.ErrEmpty, b.Put(db, nil, &Counter{Count: 4}))
	assert.IsErr(t, errors.ErrNotFound, b.Has(db, []byte("c1")))
}

type otherModel struct {
	Counter
}

func (o *otherModel) Copy() CloneableData { return &otherModel{} }

func TestModelBucketWrongDestination(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})
	assert.Nil(t, b.Put(db, []byte("c1"), &Counter{Count: 1}))

	var dest otherModel
	assert.IsErr(t, errors.ErrType, b.One(db, []byte("c1"), &dest))
}

func TestModelBucketVisit(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("cnts", &Counter{})

	// Another bucket sharing a similar prefix must not be visited.
	other := NewModelBucket("cntsx", &Counter{})
	assert.Nil(t, other.Put(db, []byte("a"), &Counter{Count: 100}))

	for key, count := range map[string]int64{"c": 3, "a": 1, "b": 2} {
		assert.Nil(t, b.Put(db, []byte(key), &Counter{Count: count}))
	}

	var keys []string
	var counts []int64
	err := b.Visit(db, func(key []byte, m Model) error {
		keys = append(keys, string(key))
		counts = append(counts, m.(*Counter).Count)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)
	assert.Equal(t, []int64{1, 2, 3}, counts)

	stop := errors.Wrap(errors.ErrState, "stop")
	var visited int
	err = b.Visit(db, func([]byte, Model) error {
		visited++
		return stop
	})
	assert.IsErr(t, errors.ErrState, err)
	assert.Equal(t, 1, visited)
}
