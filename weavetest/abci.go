package weavetest

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// Tester is implemented by both *testing.T and *testing.B. Use it instead of
// the pointer type to allow notation to accept both objects.
type Tester interface {
	Helper()
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// WeaveRunner provides a translation layer between an ABCI interface and a
// petal application. It takes care of serializing messages and creating
// blocks.
type WeaveRunner struct {
	chainID string
	height  int64
	now     time.Time
	t       Tester
	app     abci.Application
}

// NewWeaveRunner creates a WeaveRunner instance that can be used to process
// deliver and check transaction requests. Block time starts at given moment
// and is advanced by one second with every block, unless changed with
// SetBlockTime.
func NewWeaveRunner(t Tester, app abci.Application, chainID string, now time.Time) *WeaveRunner {
	return &WeaveRunner{
		chainID: chainID,
		now:     now,
		t:       t,
		app:     app,
	}
}

// WeaveApp is the minimal interface required to execute transactions and
// read the state of an application.
type WeaveApp interface {
	DeliverTx(petal.Tx) error
	CheckTx(petal.Tx) error
	petal.ReadOnlyKVStore
}

var _ WeaveApp = (*WeaveRunner)(nil)

// SetBlockTime sets the time of the next block.
func (w *WeaveRunner) SetBlockTime(now time.Time) {
	w.now = now
}

// BlockTime returns the time of the last created block.
func (w *WeaveRunner) BlockTime() time.Time {
	return w.now
}

// InitChain serialize to JSON given genesis and loads it. Loading a genesis is
// causing a block creation.
func (w *WeaveRunner) InitChain(genesis interface{}) {
	w.t.Helper()

	raw, err := json.MarshalIndent(genesis, "", "  ")
	if err != nil {
		w.t.Fatalf("cannot JSON serialize genesis: %s", err)
	}

	changed := w.InBlock(func(WeaveApp) error {
		w.app.InitChain(abci.RequestInitChain{
			Time:          w.now,
			ChainId:       w.chainID,
			AppStateBytes: raw,
		})
		return nil
	})
	if !changed {
		w.t.Fatalf("genesis did not change the state")
	}
}

// CheckTx translates given transaction into ABCI interface and executes.
// The returned error carries the ABCI code of the failure.
func (w *WeaveRunner) CheckTx(tx petal.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction")
	}
	resp := w.app.CheckTx(raw)
	return abciError(resp.Code, resp.Log)
}

// DeliverTx translates given transaction into ABCI interface and executes.
// The returned error carries the ABCI code of the failure.
func (w *WeaveRunner) DeliverTx(tx petal.Tx) error {
	raw, err := tx.Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot marshal transaction")
	}
	resp := w.app.DeliverTx(raw)
	return abciError(resp.Code, resp.Log)
}

func abciError(code uint32, log string) error {
	if code == 0 {
		return nil
	}
	return errors.ABCIError(code, log)
}

// InBlock begins a block and runs given function. All transactions executed
// withing given function are part of newly created block. Upon success the
// block is finished and changes committed.
// InBlock returns true if the application state was modified.
//
// Any failure is ending the test instantly.
func (w *WeaveRunner) InBlock(executeTx func(WeaveApp) error) bool {
	w.t.Helper()

	w.height++
	w.now = w.now.Add(time.Second)

	initialHash := w.app.Info(abci.RequestInfo{}).LastBlockAppHash

	w.app.BeginBlock(abci.RequestBeginBlock{
		Header: abci.Header{
			ChainID: w.chainID,
			Height:  w.height,
			Time:    w.now,
		},
	})

	if err := executeTx(w); err != nil {
		w.t.Fatalf("operation failed with %+v", err)
	}

	w.app.EndBlock(abci.RequestEndBlock{
		Height: w.height,
	})

	finalHash := w.app.Commit().Data
	return !bytes.Equal(initialHash, finalHash)
}

var _ petal.ReadOnlyKVStore = (*WeaveRunner)(nil)

// Get reads a value from the last committed state.
func (w *WeaveRunner) Get(key []byte) ([]byte, error) {
	return app.NewABCIStore(w.app).Get(key)
}

// Has checks the last committed state for given key.
func (w *WeaveRunner) Has(key []byte) (bool, error) {
	return app.NewABCIStore(w.app).Has(key)
}

// Iterator supports only prefix ranges. Start is used as the prefix and end
// is ignored.
func (w *WeaveRunner) Iterator(start, end []byte) (petal.Iterator, error) {
	return app.NewABCIStore(w.app).Iterator(start, end)
}

// ReverseIterator supports only prefix ranges, like Iterator.
func (w *WeaveRunner) ReverseIterator(start, end []byte) (petal.Iterator, error) {
	return app.NewABCIStore(w.app).ReverseIterator(start, end)
}
