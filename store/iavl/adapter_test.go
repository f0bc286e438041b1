package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest/assert"
)

func makeCommitStore(t testing.TB) (CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		t.Fatalf("cannot create temporary directory: %s", err)
	}
	commit := NewCommitStore(tmpDir, "base")
	return commit, func() { os.RemoveAll(tmpDir) }
}

func suite(t testing.TB) *store.TestSuite {
	return store.NewTestSuite(func() (store.CacheableKVStore, func()) {
		commit, cleanup := makeCommitStore(t)
		return commit.Adapter(), cleanup
	})
}

func TestAdapterGetSet(t *testing.T) {
	suite(t).GetSet(t)
}

func TestAdapterCacheConflicts(t *testing.T) {
	suite(t).CacheConflicts(t)
}

func TestAdapterIterators(t *testing.T) {
	suite(t).Iterators(t)
}

func TestAdapterBatch(t *testing.T) {
	suite(t).Batch(t)
}

func TestCommitOverwrite(t *testing.T) {
	commit, cleanup := makeCommitStore(t)
	defer cleanup()
	commit.numHistory = 1
	check := suite(t)

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)
	if len(id.Hash) != 0 {
		t.Fatal("hash is not empty")
	}

	parent := commit.CacheWrap()
	assert.Nil(t, parent.Set([]byte("a"), []byte("1")))
	assert.Nil(t, parent.Set([]byte("b"), []byte("2")))
	assert.Nil(t, parent.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}

	child := commit.CacheWrap()
	assert.Nil(t, child.Set([]byte("a"), []byte("11")))
	assert.Nil(t, child.Delete([]byte("b")))
	assert.Nil(t, child.Set([]byte("c"), []byte("3")))

	side := commit.CacheWrap()
	check.AssertGetHas(t, side, []byte("a"), []byte("1"), true)
	check.AssertGetHas(t, side, []byte("b"), []byte("2"), true)
	check.AssertGetHas(t, side, []byte("c"), nil, false)

	assert.Nil(t, child.Write())
	check.AssertGetHas(t, side, []byte("a"), []byte("11"), true)
	check.AssertGetHas(t, side, []byte("b"), nil, false)

	// Committed state is not changed before the next commit.
	got, err := commit.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("1"), got)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)

	got, err = commit.Get([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("11"), got)
}

func TestMockCommitStoreReload(t *testing.T) {
	commit := MockCommitStore()
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("key"), []byte("value")))
	assert.Nil(t, cache.Write())
	id, err := commit.Commit()
	assert.Nil(t, err)

	assert.Nil(t, commit.LoadLatestVersion())
	latest, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, id, latest)
}
