package utils

import (
	"context"
	"time"

	"github.com/petaldocs/petal"
)

// Logging writes a log entry for every processed transaction. Each entry
// carries the message path and the processing duration in microseconds.
//
// Failed deliveries are logged at error level and failed checks at debug
// level, as check failures are expected. Successful processing is logged
// at info level.
type Logging struct{}

var _ petal.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

func (Logging) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, info, db, tx)
	var msg string
	if err == nil {
		msg = res.Log
	}
	logDuration(info, tx, start, msg, err, true)
	return res, err
}

func (Logging) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, info, db, tx)
	var msg string
	if err == nil {
		msg = res.Log
	}
	logDuration(info, tx, start, msg, err, false)
	return res, err
}

func logDuration(info petal.BlockInfo, tx petal.Tx, start time.Time, msg string, err error, check bool) {
	logger := info.Logger().With(
		"path", petal.GetPath(tx),
		"duration", time.Since(start)/time.Microsecond,
	)
	switch {
	case err == nil:
		logger.Info(msg)
	case check:
		logger.With("err", err).Debug(msg)
	default:
		logger.With("err", err).Error(msg)
	}
}
