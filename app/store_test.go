package app_test

import (
	"testing"
	"time"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/orm"
	"github.com/petaldocs/petal/store/iavl"
	"github.com/petaldocs/petal/weavetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// kvInit writes every string found under the "kv" genesis key.
type kvInit struct {
	called int
}

func (k *kvInit) FromGenesis(opts petal.Options, db petal.KVStore) error {
	k.called++
	var values map[string]string
	if err := opts.ReadOptions("kv", &values); err != nil {
		return err
	}
	for key, val := range values {
		if err := db.Set([]byte(key), []byte(val)); err != nil {
			return err
		}
	}
	return nil
}

func newStoreApp(db petal.CommitKVStore, init petal.Initializer) *app.StoreApp {
	qr := petal.NewQueryRouter()
	qr.RegisterAll(orm.RegisterQuery)
	return app.NewStoreApp("test", db, qr).WithInit(init)
}

func TestStoreAppInitChain(t *testing.T) {
	init := &kvInit{}
	s := newStoreApp(iavl.MockCommitStore(), init)
	assert.Equal(t, "", s.GetChainID())

	_, err := s.BlockInfo()
	assert.True(t, errors.ErrInput.Is(err), "block info requires a chain id")

	s.InitChain(abci.RequestInitChain{
		ChainId:       "store-chain",
		AppStateBytes: []byte(`{"kv": {"alpha": "1", "beta": "2", "gamma": "3"}}`),
	})
	assert.Equal(t, 1, init.called)
	assert.Equal(t, "store-chain", s.GetChainID())

	info, err := s.BlockInfo()
	require.NoError(t, err)
	assert.Equal(t, "store-chain", info.ChainID())

	// a chain cannot be initialized twice
	assert.Panics(t, func() {
		s.InitChain(abci.RequestInitChain{ChainId: "other-chain", AppStateBytes: []byte(`{}`)})
	})

	// queries read committed state only
	res := s.Query(abci.RequestQuery{Path: "/", Data: []byte("alpha")})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var empty app.ResultSet
	require.NoError(t, empty.Unmarshal(res.Value))
	assert.Empty(t, empty.Results)

	commit := s.Commit()
	assert.NotEmpty(t, commit.Data)

	res = s.Query(abci.RequestQuery{Path: "/", Data: []byte("alpha")})
	require.Equal(t, uint32(0), res.Code, res.Log)
	assert.Equal(t, int64(1), res.Height)
	var val app.ResultSet
	require.NoError(t, val.Unmarshal(res.Value))
	assert.Equal(t, [][]byte{[]byte("1")}, val.Results)

	res = s.Query(abci.RequestQuery{Path: "/?prefix", Data: []byte("g")})
	require.Equal(t, uint32(0), res.Code, res.Log)
	var keys app.ResultSet
	require.NoError(t, keys.Unmarshal(res.Key))
	assert.Equal(t, [][]byte{[]byte("gamma")}, keys.Results)

	res = s.Query(abci.RequestQuery{Path: "/nothing"})
	assert.Equal(t, errors.ErrNotFound.ABCICode(), res.Code)
	res = s.Query(abci.RequestQuery{Path: "/?range"})
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)
}

func TestStoreAppRejectsMissingAppState(t *testing.T) {
	s := newStoreApp(iavl.MockCommitStore(), &kvInit{})
	assert.Panics(t, func() {
		s.InitChain(abci.RequestInitChain{ChainId: "store-chain"})
	})
	assert.Panics(t, func() {
		s.InitChain(abci.RequestInitChain{ChainId: "x", AppStateBytes: []byte(`{}`)})
	})
}

func TestStoreAppReloadsChainID(t *testing.T) {
	db, cleanup := weavetest.CommitKVStore(t)
	defer cleanup()

	s := newStoreApp(db, &kvInit{})
	s.InitChain(abci.RequestInitChain{ChainId: "reload-chain", AppStateBytes: []byte(`{}`)})
	s.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: time.Now()}})
	s.EndBlock(abci.RequestEndBlock{Height: 1})
	hash := s.Commit().Data

	restarted := newStoreApp(db, &kvInit{})
	assert.Equal(t, "reload-chain", restarted.GetChainID())
	info := restarted.Info(abci.RequestInfo{})
	assert.Equal(t, int64(1), info.LastBlockHeight)
	assert.Equal(t, hash, info.LastBlockAppHash)
	assert.Equal(t, "test", info.Data)
}

func TestStoreAppBlockInfo(t *testing.T) {
	s := newStoreApp(iavl.MockCommitStore(), nil)
	s.InitChain(abci.RequestInitChain{ChainId: "block-chain", AppStateBytes: []byte(`{}`)})

	now := time.Date(2020, 3, 1, 12, 0, 0, 0, time.UTC)
	s.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 7, Time: now}})
	info, err := s.BlockInfo()
	require.NoError(t, err)
	assert.Equal(t, int64(7), info.Height())
	assert.Equal(t, "block-chain", info.ChainID())
	assert.Equal(t, petal.AsUnixTime(now), info.UnixTime())
}
