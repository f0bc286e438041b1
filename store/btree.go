package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/petaldocs/petal/errors"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// BTreeCacheable adds a btree based CacheWrap to any KVStore.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that is written through a batch of the wrapped
// store.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an in memory store without any persistence.
func MemStore() CacheableKVStore {
	e := EmptyKVStore{}
	return NewBTreeCacheWrap(e, e.NewBatch(), nil)
}

// ShowOpser lists operations that were executed but not written yet.
type ShowOpser interface {
	ShowOps() []Op
}

// LogableStore returns an in memory store together with an insight into all
// operations executed on it.
func LogableStore() (CacheableKVStore, ShowOpser) {
	e := EmptyKVStore{}
	b := NewNonAtomicBatch(e)
	return NewBTreeCacheWrap(e, b, nil), b
}

// BTreeCacheWrap keeps all writes in a btree on top of a read only store.
// Writes are also recorded in the batch that is flushed on Write.
type BTreeCacheWrap struct {
	bt    *btree.BTree
	free  *btree.FreeList
	back  ReadOnlyKVStore
	batch Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap initializes a cache around given store. All writes must
// go through the batch. free can be nil.
func NewBTreeCacheWrap(kv ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		bt:    btree.NewWithFreeList(2, free),
		free:  free,
		back:  kv,
		batch: batch,
	}
}

// CacheWrap layers another cache on top of this one, sharing the free list.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch writing into this cache.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all changes to the underlying store and clears the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all cached changes.
func (b BTreeCacheWrap) Discard() {
	for b.bt.DeleteMin() != nil {
	}
}

// Set writes to the cache and to the batch.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.bt.ReplaceOrInsert(item{key: key, value: value})
	return b.batch.Set(key, value)
}

// Delete marks the key as deleted in the cache and in the batch.
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.bt.ReplaceOrInsert(item{key: key, deleted: true})
	return b.batch.Delete(key)
}

// Get reads from the cache, falling back to the underlying store.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	it, ok, err := b.cached(key)
	switch {
	case err != nil:
		return nil, err
	case !ok:
		return b.back.Get(key)
	case it.deleted:
		return nil, nil
	}
	return it.value, nil
}

// Has reads from the cache, falling back to the underlying store.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	it, ok, err := b.cached(key)
	switch {
	case err != nil:
		return false, err
	case !ok:
		return b.back.Has(key)
	}
	return !it.deleted, nil
}

func (b BTreeCacheWrap) cached(key []byte) (item, bool, error) {
	res := b.bt.Get(item{key: key})
	if res == nil {
		return item{}, false, nil
	}
	it, ok := res.(item)
	if !ok {
		return item{}, false, errors.Wrapf(errors.ErrDatabase, "unknown btree item %T", res)
	}
	return it, true, nil
}

// Iterator combines the cached changes with the underlying store, in
// ascending key order.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newMergeIterator(b.snapshot(start, end), parent, false)
}

// ReverseIterator combines the cached changes with the underlying store, in
// descending key order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.back.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	items := b.snapshot(start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return newMergeIterator(items, parent, true)
}

// snapshot copies all cached items within [start, end) in ascending order.
// A nil bound is open.
func (b BTreeCacheWrap) snapshot(start, end []byte) []item {
	var items []item
	collect := func(i btree.Item) bool {
		items = append(items, i.(item))
		return true
	}
	switch {
	case start == nil && end == nil:
		b.bt.Ascend(collect)
	case start == nil:
		b.bt.AscendLessThan(item{key: end}, collect)
	case end == nil:
		b.bt.AscendGreaterOrEqual(item{key: start}, collect)
	default:
		b.bt.AscendRange(item{key: start}, item{key: end}, collect)
	}
	return items
}

// item is a single cached change.
type item struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = item{}

// Less orders items by key.
func (i item) Less(than btree.Item) bool {
	return bytes.Compare(i.key, than.(item).key) < 0
}
