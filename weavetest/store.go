package weavetest

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/store/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// Use it instead of a memory store when the exact production storage engine
// is required.
func CommitKVStore(t testing.TB) (db petal.CommitKVStore, cleanup func()) {
	t.Helper()

	dbpath, err := ioutil.TempDir("", "petaltest")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}
	return iavl.NewCommitStore(dbpath, "db"), func() { os.RemoveAll(dbpath) }
}

// BlockInfo returns a block info for a test chain at given height and time.
func BlockInfo(t testing.TB, height int64, now time.Time) petal.BlockInfo {
	t.Helper()

	info, err := petal.NewBlockInfo(abci.Header{Height: height, Time: now}, "petal-test", nil)
	if err != nil {
		t.Fatalf("cannot create block info: %s", err)
	}
	return info
}
