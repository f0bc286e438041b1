package app

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// CommitStore handles loading from a CommitKVStore, maintaining different
// cache wraps for deliver and check, and returning useful state info.
type CommitStore struct {
	committed petal.CommitKVStore
	deliver   petal.KVCacheWrap
	check     petal.KVCacheWrap
}

// NewCommitStore loads the latest persisted version of the store and sets up
// the deliver and check caches on top of it.
func NewCommitStore(store petal.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
		check:     store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (petal.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit flushes deliver to the underlying store and persists it. Both
// caches are recreated afterwards, so check state is reset to the newly
// committed state.
func (cs *CommitStore) Commit() (petal.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return petal.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()

	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
	return res, nil
}

// Committed returns a read only view of the last committed state.
func (cs *CommitStore) Committed() petal.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// CheckStore returns a store implementation that must be used during the
// checking phase.
func (cs *CommitStore) CheckStore() petal.CacheableKVStore {
	return cs.check
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() petal.CacheableKVStore {
	return cs.deliver
}

//------- storing chainID ---------

// _pl: is a prefix for framework internal data
const chainIDKey = "_pl:chainID"

// loadChainID returns the chain id stored if any.
func loadChainID(kv petal.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv petal.KVStore, chainID string) error {
	if !petal.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chain id")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chain id")
	}
	return nil
}
