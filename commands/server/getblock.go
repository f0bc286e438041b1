package server

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/petaldocs/petal/errors"
	amino "github.com/tendermint/go-amino"
	"github.com/tendermint/tendermint/blockchain"
	dbm "github.com/tendermint/tendermint/libs/db"
	"github.com/tendermint/tendermint/libs/log"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
	"github.com/tendermint/tendermint/types"
)

const flagHeight = "height"

// cdc encodes tendermint blocks as the node RPC renders them.
var cdc = amino.NewCodec()

func init() {
	ctypes.RegisterAmino(cdc)
}

type getBlockArgs struct {
	storePath string
	// height of zero selects the latest block.
	height int64
}

func parseGetBlockArgs(args []string) (getBlockArgs, error) {
	if len(args) == 0 {
		return getBlockArgs{}, errors.Wrap(errors.ErrInput, "usage: cmd getblock <path to blockstore.db> [-height=H]")
	}
	res := getBlockArgs{storePath: args[0]}
	fs := flag.NewFlagSet("getblock", flag.ContinueOnError)
	fs.Int64Var(&res.height, flagHeight, 0, "height of the block to extract (default latest)")
	if err := fs.Parse(args[1:]); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	if res.height < 0 {
		return res, errors.Wrapf(errors.ErrInput, "negative height %d", res.height)
	}
	return res, nil
}

// GetBlockCmd prints a block of a node blockstore.db as JSON. Without
// -height the latest stored block is printed. The printed block is the
// input of the retry command.
func GetBlockCmd(logger log.Logger, home string, args []string) error {
	flags, err := parseGetBlockArgs(args)
	if err != nil {
		return err
	}
	block, err := loadStoredBlock(logger, flags.storePath, flags.height)
	if err != nil {
		return err
	}
	js, err := cdc.MarshalJSONIndent(block, "", "  ")
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot serialize block: %s", err)
	}
	fmt.Println(string(js))
	return nil
}

func loadStoredBlock(logger log.Logger, storePath string, height int64) (*types.Block, error) {
	db, err := openDb(storePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	blocks := blockchain.NewBlockStore(db)
	if height == 0 {
		height = blocks.Height()
	}
	logger.Debug("Loading block", "height", height)
	block := blocks.LoadBlock(height)
	if block == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no block for height %d", height)
	}
	return block, nil
}

// openDb opens the goleveldb database stored in the directory at path.
// The directory name must end with .db, as tendermint names them.
func openDb(path string) (dbm.DB, error) {
	path = strings.TrimSuffix(path, "/")
	if filepath.Ext(path) != ".db" {
		return nil, errors.Wrapf(errors.ErrInput, "database directory must end with .db: %s", path)
	}
	base := strings.TrimSuffix(path, ".db")
	db, err := dbm.NewGoLevelDB(filepath.Base(base), filepath.Dir(base))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "cannot open %s: %s", path, err)
	}
	return db, nil
}
