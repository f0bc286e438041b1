package store

import "github.com/petaldocs/petal"

// Storage types are aliased here to keep the names short for everything
// building on this package.
type (
	ReadOnlyKVStore  = petal.ReadOnlyKVStore
	SetDeleter       = petal.SetDeleter
	KVStore          = petal.KVStore
	Batch            = petal.Batch
	Iterator         = petal.Iterator
	CacheableKVStore = petal.CacheableKVStore
	KVCacheWrap      = petal.KVCacheWrap
	CommitKVStore    = petal.CommitKVStore
	CommitID         = petal.CommitID
	Model            = petal.Model
)

// Pair constructs a model from a key-value pair.
func Pair(key, value []byte) Model {
	return petal.Pair(key, value)
}
