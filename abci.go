package petal

import (
	"fmt"

	"github.com/petaldocs/petal/errors"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

// DeliverResult is the outcome of a successfully delivered transaction.
// Failures are always returned as an error instead.
type DeliverResult struct {
	// Data is a machine readable return value, for example the key of a
	// created token.
	Data []byte
	Log  string
	// Tags are indexed by tendermint and can be used to search the
	// transaction history, for example by token or signer.
	Tags    []common.KVPair
	GasUsed int64
}

// ToABCI converts the result into an abci response.
func (d DeliverResult) ToABCI() abci.ResponseDeliverTx {
	return abci.ResponseDeliverTx{
		Data:    d.Data,
		Log:     d.Log,
		Tags:    d.Tags,
		GasUsed: d.GasUsed,
	}
}

// CheckResult is the outcome of a successfully checked transaction.
type CheckResult struct {
	Data []byte
	Log  string
	// GasAllocated is the maximum units of work this transaction is
	// allowed to perform.
	GasAllocated int64
}

// ToABCI converts the result into an abci response.
func (c CheckResult) ToABCI() abci.ResponseCheckTx {
	return abci.ResponseCheckTx{
		Data:      c.Data,
		Log:       c.Log,
		GasWanted: c.GasAllocated,
	}
}

// DeliverOrError returns the abci response for either the error, if not
// nil, or the result.
func DeliverOrError(result *DeliverResult, err error, debug bool) abci.ResponseDeliverTx {
	if err != nil {
		return DeliverTxError(err, debug)
	}
	return result.ToABCI()
}

// CheckOrError returns the abci response for either the error, if not nil,
// or the result.
func CheckOrError(result *CheckResult, err error, debug bool) abci.ResponseCheckTx {
	if err != nil {
		return CheckTxError(err, debug)
	}
	return result.ToABCI()
}

// DeliverTxError converts an error into an abci response. Errors that are
// not registered are redacted unless debug is set.
func DeliverTxError(err error, debug bool) abci.ResponseDeliverTx {
	code, log := abciFailure("deliver", err, debug)
	return abci.ResponseDeliverTx{Code: code, Log: log}
}

// CheckTxError converts an error into an abci response. Errors that are not
// registered are redacted unless debug is set.
func CheckTxError(err error, debug bool) abci.ResponseCheckTx {
	code, log := abciFailure("check", err, debug)
	return abci.ResponseCheckTx{Code: code, Log: log}
}

func abciFailure(phase string, err error, debug bool) (uint32, string) {
	code, log := errors.ABCIInfo(err, debug)
	if code == errors.SuccessABCICode {
		return code, log
	}
	return code, fmt.Sprintf("cannot %s tx: %s", phase, log)
}
