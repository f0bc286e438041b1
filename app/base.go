package app

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	abci "github.com/tendermint/tendermint/abci/types"
)

// BaseApp adds DeliverTx and CheckTx handlers to the storage and query
// functionality of StoreApp
type BaseApp struct {
	*StoreApp
	decoder petal.TxDecoder
	handler petal.Handler
	debug   bool
}

var _ abci.Application = BaseApp{}

// NewBaseApp constructs a basic abci application
func NewBaseApp(
	store *StoreApp,
	decoder petal.TxDecoder,
	handler petal.Handler,
	debug bool,
) BaseApp {
	return BaseApp{
		StoreApp: store,
		decoder:  decoder,
		handler:  handler,
		debug:    debug,
	}
}

// DeliverTx - ABCI - dispatches to the handler
func (b BaseApp) DeliverTx(txBytes []byte) abci.ResponseDeliverTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return petal.DeliverTxError(err, b.debug)
	}
	info, err := b.BlockInfo()
	if err != nil {
		return petal.DeliverTxError(err, b.debug)
	}
	info = info.WithLogInfo(
		"call", "deliver_tx",
		"path", petal.GetPath(tx))

	res, err := b.handler.Deliver(context.Background(), info, b.DeliverStore(), tx)
	return petal.DeliverOrError(res, err, b.debug)
}

// CheckTx - ABCI - dispatches to the handler
func (b BaseApp) CheckTx(txBytes []byte) abci.ResponseCheckTx {
	tx, err := b.loadTx(txBytes)
	if err != nil {
		return petal.CheckTxError(err, b.debug)
	}
	info, err := b.BlockInfo()
	if err != nil {
		return petal.CheckTxError(err, b.debug)
	}
	info = info.WithLogInfo(
		"call", "check_tx",
		"path", petal.GetPath(tx))

	res, err := b.handler.Check(context.Background(), info, b.CheckStore(), tx)
	return petal.CheckOrError(res, err, b.debug)
}

// loadTx calls the decoder, and capture any panics
func (b BaseApp) loadTx(txBytes []byte) (tx petal.Tx, err error) {
	defer errors.Recover(&err)
	tx, err = b.decoder(txBytes)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode transaction")
	}
	return tx, nil
}
