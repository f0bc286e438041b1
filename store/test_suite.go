package store

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/petaldocs/petal/weavetest/assert"
)

// TestSuite runs the same set of checks against any CacheableKVStore
// implementation. Only the constructor differs between implementations.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh, empty store and a cleanup function.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

// NewTestSuite returns a suite testing stores built by given constructor.
func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks that cache wraps see the data of the layer below, keep their
// own changes private until written and can be discarded.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	k, v := []byte("owner"), []byte("alice")
	s.AssertGetHas(t, base, k, nil, false)
	assert.Nil(t, base.Set(k, v))
	s.AssertGetHas(t, base, k, v, true)

	cache := base.CacheWrap()
	s.AssertGetHas(t, cache, k, v, true)

	k2, v2 := []byte("uri"), []byte("ipfs://doc")
	assert.Nil(t, cache.Set(k2, v2))
	s.AssertGetHas(t, cache, k2, v2, true)
	s.AssertGetHas(t, base, k2, nil, false)

	assert.Nil(t, cache.Write())
	s.AssertGetHas(t, base, k, v, true)
	s.AssertGetHas(t, base, k2, v2, true)

	k3, v3 := []byte("deadline"), []byte("1700000000")
	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set(k3, v3))
	s.AssertGetHas(t, discarded, k3, v3, true)
	discarded.Discard()
	s.AssertGetHas(t, base, k3, nil, false)

	deleting := base.CacheWrap()
	assert.Nil(t, deleting.Delete(k))
	s.AssertGetHas(t, deleting, k, nil, false)
	s.AssertGetHas(t, base, k, v, true)
	assert.Nil(t, deleting.Write())
	s.AssertGetHas(t, base, k, nil, false)
	s.AssertGetHas(t, base, k2, v2, true)
}

// CacheConflicts checks overwrites and deletes of values that are stored in
// the parent.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	parent, cleanup := s.makeBase()
	defer cleanup()

	a, b, c := []byte("a"), []byte("b"), []byte("c")
	assert.Nil(t, SetOp(a, []byte("1")).Apply(parent))
	assert.Nil(t, SetOp(b, []byte("2")).Apply(parent))

	child := parent.CacheWrap()
	assert.Nil(t, SetOp(a, []byte("11")).Apply(child))
	assert.Nil(t, SetOp(c, []byte("3")).Apply(child))
	assert.Nil(t, DelOp(b).Apply(child))

	s.AssertGetHas(t, parent, a, []byte("1"), true)
	s.AssertGetHas(t, parent, b, []byte("2"), true)
	s.AssertGetHas(t, parent, c, nil, false)

	s.AssertGetHas(t, child, a, []byte("11"), true)
	s.AssertGetHas(t, child, b, nil, false)
	s.AssertGetHas(t, child, c, []byte("3"), true)

	assert.Nil(t, child.Write())
	s.AssertGetHas(t, parent, a, []byte("11"), true)
	s.AssertGetHas(t, parent, b, nil, false)
	s.AssertGetHas(t, parent, c, []byte("3"), true)
}

// Iterators checks ranges in both directions over data split between the
// parent and a cache wrap, including overwrites and deletes.
func (s *TestSuite) Iterators(t *testing.T) {
	k := func(i int) []byte { return []byte(fmt.Sprintf("key-%02d", i)) }
	v := func(i int, gen string) []byte { return []byte(fmt.Sprintf("%s-%02d", gen, i)) }

	var parentOps, childOps []Op
	for i := 0; i < 20; i += 2 {
		parentOps = append(parentOps, SetOp(k(i), v(i, "parent")))
	}
	for i := 0; i < 20; i += 3 {
		childOps = append(childOps, SetOp(k(i), v(i, "child")))
	}
	childOps = append(childOps, DelOp(k(4)), DelOp(k(5)), DelOp(k(19)))

	// Expected state of the child after all operations.
	var merged []Model
	for i := 0; i < 20; i++ {
		switch {
		case i == 4 || i == 5 || i == 19:
		case i%3 == 0:
			merged = append(merged, Pair(k(i), v(i, "child")))
		case i%2 == 0:
			merged = append(merged, Pair(k(i), v(i, "parent")))
		}
	}
	var onlyChild []Model
	for i := 0; i < 20; i += 3 {
		onlyChild = append(onlyChild, Pair(k(i), v(i, "child")))
	}

	cases := map[string]struct {
		pre     []Op
		queries []rangeQuery
	}{
		"child with an empty parent": {
			pre: nil,
			queries: []rangeQuery{
				{nil, nil, false, onlyChild},
				{nil, nil, true, reverse(onlyChild)},
				{k(3), k(12), false, onlyChild[1:4]},
				{k(3), k(12), true, reverse(onlyChild[1:4])},
			},
		},
		"child combined with parent": {
			pre: parentOps,
			queries: []rangeQuery{
				{nil, nil, false, merged},
				{nil, nil, true, reverse(merged)},
				{k(6), nil, false, merged[3:]},
				{nil, k(10), false, merged[:6]},
				{k(6), k(16), true, reverse(merged[3:10])},
				{k(4), k(6), false, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.pre {
				assert.Nil(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range childOps {
				assert.Nil(t, op.Apply(child))
			}
			for _, q := range tc.queries {
				q.verify(t, child)
			}
		})
	}
}

// Batch checks that batched operations are applied on Write only.
func (s *TestSuite) Batch(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	assert.Nil(t, base.Set([]byte("gone"), []byte("soon")))

	b := base.NewBatch()
	assert.Nil(t, b.Set([]byte("new"), []byte("value")))
	assert.Nil(t, b.Delete([]byte("gone")))
	s.AssertGetHas(t, base, []byte("new"), nil, false)
	s.AssertGetHas(t, base, []byte("gone"), []byte("soon"), true)

	assert.Nil(t, b.Write())
	s.AssertGetHas(t, base, []byte("new"), []byte("value"), true)
	s.AssertGetHas(t, base, []byte("gone"), nil, false)
}

// AssertGetHas checks that both Get and Has return the expected state of a
// key.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

type rangeQuery struct {
	start    []byte
	end      []byte
	reverse  bool
	expected []Model
}

func (q rangeQuery) verify(t testing.TB, kv ReadOnlyKVStore) {
	t.Helper()

	var (
		iter Iterator
		err  error
	)
	if q.reverse {
		iter, err = kv.ReverseIterator(q.start, q.end)
	} else {
		iter, err = kv.Iterator(q.start, q.end)
	}
	assert.Nil(t, err)
	defer iter.Close()

	for i, want := range q.expected {
		if !iter.Valid() {
			t.Fatalf("iterator finished after %d elements, want %d", i, len(q.expected))
		}
		if !bytes.Equal(want.Key, iter.Key()) {
			t.Fatalf("element %d: want key %q, got %q", i, want.Key, iter.Key())
		}
		assert.Equal(t, want.Value, iter.Value())
		assert.Nil(t, iter.Next())
	}
	if iter.Valid() {
		t.Fatalf("unexpected element %q", iter.Key())
	}
}

func reverse(models []Model) []Model {
	res := make([]Model, len(models))
	for i, m := range models {
		res[len(models)-1-i] = m
	}
	return res
}
