package store

// Recorder is implemented by stores that keep track of all changes made
// through them.
type Recorder interface {
	// KVPairs maps every modified key to the value written, or to nil
	// for deleted keys.
	KVPairs() map[string][]byte
}

// RecordingStore wraps a store and records every write, including the ones
// done through batches and flushed cache wraps.
type RecordingStore struct {
	KVStore
	changes map[string][]byte
}

var (
	_ CacheableKVStore = (*RecordingStore)(nil)
	_ Recorder         = (*RecordingStore)(nil)
)

// NewRecordingStore returns a store recording all changes made to db.
func NewRecordingStore(db KVStore) *RecordingStore {
	return &RecordingStore{
		KVStore: db,
		changes: make(map[string][]byte),
	}
}

// KVPairs returns all recorded changes.
func (r *RecordingStore) KVPairs() map[string][]byte {
	return r.changes
}

// Set records the change and writes it through.
func (r *RecordingStore) Set(key, value []byte) error {
	r.changes[string(key)] = value
	return r.KVStore.Set(key, value)
}

// Delete records the change and writes it through.
func (r *RecordingStore) Delete(key []byte) error {
	r.changes[string(key)] = nil
	return r.KVStore.Delete(key)
}

// NewBatch returns a batch recording into this store once written.
func (r *RecordingStore) NewBatch() Batch {
	return NewNonAtomicBatch(r)
}

// CacheWrap returns a cache that is recorded when written.
func (r *RecordingStore) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(r, r.NewBatch(), nil)
}
