package server

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	iavlstore "github.com/petaldocs/petal/store/iavl"
	"github.com/tendermint/iavl"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"github.com/tendermint/tendermint/types"
)

const (
	flagUntilError = "error"
	flagMaxTries   = "max"
)

type retryArgs struct {
	dbPath     string
	blockPath  string
	debug      bool
	untilError bool
	maxTries   int
}

func parseRetryArgs(args []string) (retryArgs, error) {
	if len(args) < 2 {
		return retryArgs{}, errors.Wrap(errors.ErrInput,
			"usage: cmd retry <path to abci.db> <path to block.json> [-debug] [-error] [-max=N]")
	}
	res := retryArgs{
		dbPath:    args[0],
		blockPath: args[1],
	}
	retryFlags := flag.NewFlagSet("retry", flag.ContinueOnError)
	retryFlags.BoolVar(&res.debug, flagDebug, false, "print out debug info")
	retryFlags.BoolVar(&res.untilError, flagUntilError, false, "retry multiple times until an error appears")
	retryFlags.IntVar(&res.maxTries, flagMaxTries, 10, "maximum number of times to retry if -error is passed")
	if err := retryFlags.Parse(args[2:]); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	if res.maxTries < 0 {
		return res, errors.Wrapf(errors.ErrInput, "negative -max %d", res.maxTries)
	}
	return res, nil
}

// InlineAppGenerator builds the application on top of an already opened
// store.
type InlineAppGenerator func(petal.CommitKVStore, log.Logger, bool) (abci.Application, error)

// RetryCmd replays the last block of a node against its application
// state and prints the resulting app hash. The state must be at the height
// of the block. The block is rolled back first, so the replay starts from
// the state the node had before the block.
//
// With -error the block is replayed up to -max more times until a replay
// computes a different app hash, which helps hunting non deterministic
// transaction processing.
func RetryCmd(makeApp InlineAppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseRetryArgs(args)
	if err != nil {
		return err
	}

	fmt.Println("--> Loading Block")
	block, err := loadBlockFile(flags.blockPath)
	if err != nil {
		return err
	}

	fmt.Println("--> Loading Database")
	tree, ver, err := readTree(flags.dbPath)
	if err != nil {
		return errors.Wrap(err, "cannot read abci data")
	}
	if ver != block.Header.Height {
		return errors.Wrapf(errors.ErrState,
			"height mismatch - block=%d, abcistore=%d", block.Header.Height, ver)
	}

	build := func(kv petal.CommitKVStore) (abci.Application, error) {
		return makeApp(kv, logger, flags.debug)
	}
	replays := 1
	if flags.untilError {
		replays += flags.maxTries
	}
	for i := 0; i < replays; i++ {
		same, err := rerunBlock(build, tree, block)
		if err != nil {
			return err
		}
		if !same {
			logger.Info("App hash differs from the original", "replay", i+1)
			return nil
		}
	}
	return nil
}

// loadBlockFile reads a block written by the getblock command.
func loadBlockFile(path string) (*types.Block, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot read block: %s", err)
	}
	var block *types.Block
	if err := cdc.UnmarshalJSON(raw, &block); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "cannot parse block: %s", err)
	}
	if block == nil {
		return nil, errors.Wrap(errors.ErrEmpty, "block")
	}
	return block, nil
}

func readTree(dir string) (*iavl.MutableTree, int64, error) {
	db, err := openDb(dir)
	if err != nil {
		return nil, 0, err
	}
	tree := iavl.NewMutableTree(db, 10000)
	ver, err := tree.Load()
	if err != nil {
		return nil, 0, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if ver == 0 {
		return nil, 0, errors.Wrap(errors.ErrState, "iavl tree is empty")
	}
	return tree, ver, nil
}

func rerunBlock(build func(petal.CommitKVStore) (abci.Application, error), tree *iavl.MutableTree, block *types.Block) (bool, error) {
	origHash := tree.Hash()
	fmt.Printf("Original Height: %d\n", block.Header.Height)
	fmt.Printf("Original Hash: %X\n", origHash)

	backHeight := block.Header.Height - 1
	fmt.Printf("Rollback to height: %d\n", backHeight)
	if _, err := tree.LoadVersionForOverwriting(backHeight); err != nil {
		return false, errors.Wrap(errors.ErrDatabase, err.Error())
	}

	app, err := build(iavlstore.NewCommitStoreFromTree(tree))
	if err != nil {
		return false, err
	}

	fmt.Println("---> Begin Block")
	app.BeginBlock(abci.RequestBeginBlock{Hash: block.Header.Hash(), Header: toAbciHeader(block.Header)})
	for i, tx := range block.Txs {
		res := app.DeliverTx(tx)
		fmt.Printf("---> Deliver Tx %d: code %d %s\n", i, res.Code, res.Log)
	}
	fmt.Println("---> End Block")
	app.EndBlock(abci.RequestEndBlock{Height: block.Header.Height})
	hash := app.Commit().Data
	fmt.Printf("Recomputed Hash: %X\n", hash)

	return bytes.Equal(origHash, hash), nil
}

func toAbciHeader(h types.Header) abci.Header {
	lb := h.LastBlockID
	return abci.Header{
		Version: abci.Version{
			Block: uint64(h.Version.Block),
			App:   uint64(h.Version.App),
		},
		ChainID:  h.ChainID,
		Height:   h.Height,
		Time:     h.Time,
		NumTxs:   h.NumTxs,
		TotalTxs: h.TotalTxs,
		LastBlockId: abci.BlockID{
			Hash: lb.Hash,
			PartsHeader: abci.PartSetHeader{
				Total: int32(lb.PartsHeader.Total),
				Hash:  lb.PartsHeader.Hash,
			},
		},
		LastCommitHash:     h.LastCommitHash,
		DataHash:           h.DataHash,
		ValidatorsHash:     h.ValidatorsHash,
		NextValidatorsHash: h.NextValidatorsHash,
		ConsensusHash:      h.ConsensusHash,
		AppHash:            h.AppHash,
		LastResultsHash:    h.LastResultsHash,
		EvidenceHash:       h.EvidenceHash,
		ProposerAddress:    h.ProposerAddress,
	}
}
