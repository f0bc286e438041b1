package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StoreApp contains a data store and all info needed
// to perform queries and handshakes.
//
// It should be embedded in another struct for CheckTx,
// DeliverTx and initializing state from the genesis.
// Errors on ABCI steps that do not take user input (InitChain, Commit) are
// handled as panics, because there is no way for the node to recover from
// them.
type StoreApp struct {
	logger log.Logger

	// name is what is returned from abci.Info
	name string

	// Database state (committed, check, deliver....)
	store *CommitStore

	// Code to initialize from a genesis file
	initializer petal.Initializer

	// How to handle queries
	queryRouter petal.QueryRouter

	// chainID is loaded from db in initialization
	// saved once in parseAppState
	chainID string

	// header of the block currently processed, reset on BeginBlock
	header abci.Header
}

// NewStoreApp initializes this app into a ready state with some defaults.
//
// It panics if unable to properly load the state from the given store.
func NewStoreApp(name string, store petal.CommitKVStore, queryRouter petal.QueryRouter) *StoreApp {
	cs, err := NewCommitStore(store)
	if err != nil {
		panic(err)
	}
	s := &StoreApp{
		name:        name,
		store:       cs,
		queryRouter: queryRouter,
		logger:      log.NewNopLogger(),
	}

	s.chainID, err = loadChainID(cs.DeliverStore())
	if err != nil {
		panic(err)
	}

	info, err := cs.CommitInfo()
	if err != nil {
		panic(err)
	}
	s.header = abci.Header{Height: info.Version, ChainID: s.chainID}
	return s
}

// GetChainID returns the current chainID
func (s *StoreApp) GetChainID() string {
	return s.chainID
}

// WithInit is used to set the init function we call
func (s *StoreApp) WithInit(init petal.Initializer) *StoreApp {
	s.initializer = init
	return s
}

// WithLogger sets the logger on the StoreApp and returns it,
// to make it easy to chain in initialization
func (s *StoreApp) WithLogger(logger log.Logger) *StoreApp {
	s.logger = logger
	return s
}

// Logger returns the application base logger
func (s *StoreApp) Logger() log.Logger {
	return s.logger
}

// BlockInfo returns the information about the block currently processed.
// It fails if the chain was not initialized yet.
func (s *StoreApp) BlockInfo() (petal.BlockInfo, error) {
	return petal.NewBlockInfo(s.header, s.chainID, s.logger)
}

// DeliverStore returns the current DeliverTx cache for methods
func (s *StoreApp) DeliverStore() petal.CacheableKVStore {
	return s.store.DeliverStore()
}

// CheckStore returns the current CheckTx cache for methods
func (s *StoreApp) CheckStore() petal.CacheableKVStore {
	return s.store.CheckStore()
}

// parseAppState is called from InitChain, the first time the chain
// starts, and not on restarts.
func (s *StoreApp) parseAppState(data []byte, chainID string, init petal.Initializer) error {
	if s.chainID != "" {
		return errors.Wrapf(errors.ErrState, "app state previously loaded for chain: %s", s.chainID)
	}
	if len(data) == 0 {
		return errors.Wrap(errors.ErrState, "app_state not set in genesis.json, please initialize application before launching the blockchain")
	}

	var appState petal.Options
	if err := json.Unmarshal(data, &appState); err != nil {
		return errors.Wrapf(errors.ErrInput, "parse app state: %s", err)
	}

	if err := s.storeChainID(chainID); err != nil {
		return err
	}
	if init == nil {
		return nil
	}
	return init.FromGenesis(appState, s.DeliverStore())
}

func (s *StoreApp) storeChainID(chainID string) error {
	if err := saveChainID(s.DeliverStore(), chainID); err != nil {
		return err
	}
	s.chainID = chainID
	s.header.ChainID = chainID
	return nil
}

//----------------------- ABCI ---------------------

// Info implements abci.Application. It returns the height and hash,
// as well as the abci name and version.
//
// The height is the block that holds the transactions, not the apphash itself.
func (s *StoreApp) Info(req abci.RequestInfo) abci.ResponseInfo {
	info, err := s.store.CommitInfo()
	if err != nil {
		panic(err)
	}

	s.logger.Info("Info synced",
		"height", info.Version,
		"hash", fmt.Sprintf("%X", info.Hash))

	return abci.ResponseInfo{
		Data:             s.name,
		Version:          petal.Version(),
		LastBlockHeight:  info.Version,
		LastBlockAppHash: info.Hash,
	}
}

// SetOption - ABCI
func (s *StoreApp) SetOption(res abci.RequestSetOption) abci.ResponseSetOption {
	return abci.ResponseSetOption{Log: "Not Implemented"}
}

/*
Query gets data from the app store.
A query request has the following elements:
* Path - the type of query
* Data - what to query, interpreted based on Path

Path may be "/" or "/<bucket>", optionally followed by "?prefix" to make a
prefix query. Queries always read the last committed state.

Key and Value in Results are always serialized ResultSet
objects, able to support 0 to N values. They must be the
same size. This makes things a little more difficult for
simple queries, but provides a consistent interface.
*/
func (s *StoreApp) Query(reqQuery abci.RequestQuery) abci.ResponseQuery {
	path, mod := splitPath(reqQuery.Path)
	qh := s.queryRouter.Handler(path)
	if qh == nil {
		return queryError(errors.Wrapf(errors.ErrNotFound, "unexpected query path: %v", reqQuery.Path))
	}

	info, err := s.store.CommitInfo()
	if err != nil {
		return queryError(err)
	}

	models, err := qh.Query(s.store.Committed(), mod, reqQuery.Data)
	if err != nil {
		return queryError(err)
	}

	res := abci.ResponseQuery{Height: info.Version}
	res.Key, err = ResultsFromKeys(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	res.Value, err = ResultsFromValues(models).Marshal()
	if err != nil {
		return queryError(err)
	}
	return res
}

// splitPath splits out the real path along with the query
// modifier (everything after the ?)
func splitPath(path string) (string, string) {
	var mod string
	chunks := strings.SplitN(path, "?", 2)
	if len(chunks) == 2 {
		path = chunks[0]
		mod = chunks[1]
	}
	return path, mod
}

func queryError(err error) abci.ResponseQuery {
	code, log := errors.ABCIInfo(err, false)
	return abci.ResponseQuery{
		Log:  log,
		Code: code,
	}
}

// Commit implements abci.Application
func (s *StoreApp) Commit() abci.ResponseCommit {
	commitID, err := s.store.Commit()
	if err != nil {
		panic(err)
	}

	s.logger.Debug("Commit synced",
		"height", commitID.Version,
		"hash", fmt.Sprintf("%X", commitID.Hash),
	)
	return abci.ResponseCommit{Data: commitID.Hash}
}

// InitChain implements ABCI. The genesis app state is passed to the
// initializer and the chain id is stored.
func (s *StoreApp) InitChain(req abci.RequestInitChain) abci.ResponseInitChain {
	s.header = abci.Header{ChainID: req.ChainId, Time: req.Time}
	if err := s.parseAppState(req.AppStateBytes, req.ChainId, s.initializer); err != nil {
		panic(err)
	}
	return abci.ResponseInitChain{}
}

// BeginBlock implements ABCI. It remembers the header for all transactions
// of this block.
func (s *StoreApp) BeginBlock(req abci.RequestBeginBlock) abci.ResponseBeginBlock {
	s.header = req.Header
	if s.header.ChainID == "" {
		s.header.ChainID = s.chainID
	}
	return abci.ResponseBeginBlock{}
}

// EndBlock - ABCI
func (s *StoreApp) EndBlock(_ abci.RequestEndBlock) abci.ResponseEndBlock {
	return abci.ResponseEndBlock{}
}
