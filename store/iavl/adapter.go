package iavl

import (
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// cacheSize is the number of tree nodes kept in memory.
	cacheSize = 10000
	// defaultHistory is the number of committed versions kept on disk.
	defaultHistory = 2
)

// CommitStore keeps the application state in a versioned merkle tree.
type CommitStore struct {
	tree       *iavl.MutableTree
	numHistory int64
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a store persisted in a leveldb database with given
// name, stored in given directory.
func NewCommitStore(path, name string) CommitStore {
	db, err := dbm.NewGoLevelDB(name, path)
	if err != nil {
		panic(err)
	}
	return CommitStore{
		tree:       iavl.NewMutableTree(db, cacheSize),
		numHistory: defaultHistory,
	}
}

// MockCommitStore creates a store that is kept in memory only.
func MockCommitStore() CommitStore {
	return CommitStore{
		tree:       iavl.NewMutableTree(dbm.NewMemDB(), cacheSize),
		numHistory: defaultHistory,
	}
}

// NewCommitStoreFromTree wraps an already loaded tree. Old versions are
// never pruned, so a tree loaded at an older version keeps its history.
func NewCommitStoreFromTree(tree *iavl.MutableTree) CommitStore {
	return CommitStore{tree: tree}
}

// Get returns the value at the last committed state.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit saves the working tree as the next version and prunes versions
// that are too old.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	if s.numHistory > 0 {
		if old := version - s.numHistory; old > 0 && s.tree.VersionExists(old) {
			if err := s.tree.DeleteVersion(old); err != nil {
				return store.CommitID{}, errors.Wrapf(errors.ErrDatabase, "cannot prune version %d: %s", old, err)
			}
		}
	}

	return store.CommitID{
		Version: version,
		Hash:    hash,
	}, nil
}

// LoadLatestVersion loads the latest persisted version.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns the version and hash of the last commit.
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap returns a cache on top of the working tree. Written changes are
// persisted by the next Commit.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	a := adapter{tree: s.tree}
	return store.NewBTreeCacheWrap(a, a.NewBatch(), nil)
}

// Adapter exposes the working tree as a cacheable store.
func (s CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: adapter{tree: s.tree}}
}

// adapter implements store.KVStore on top of the working tree.
type adapter struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = adapter{}

func (a adapter) Get(key []byte) ([]byte, error) {
	_, val := a.tree.Get(key)
	return val, nil
}

func (a adapter) Has(key []byte) (bool, error) {
	return a.tree.Has(key), nil
}

func (a adapter) Set(key, value []byte) error {
	a.tree.Set(key, value)
	return nil
}

func (a adapter) Delete(key []byte) error {
	a.tree.Remove(key)
	return nil
}

func (a adapter) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(a)
}

func (a adapter) Iterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, true), nil
}

func (a adapter) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return a.collect(start, end, false), nil
}

// collect reads the whole range upfront, so that the tree is not locked
// while the caller iterates.
func (a adapter) collect(start, end []byte, ascending bool) store.Iterator {
	var res []store.Model
	a.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		res = append(res, store.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(res)
}
