package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a decorator that exposes transaction processing statistics
// through prometheus. Transactions are counted by phase (check or
// deliver), message path and ABCI result code.
type Metrics struct {
	processed *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

var _ petal.Decorator = (*Metrics)(nil)

// NewMetrics creates a Metrics decorator and registers its collectors with
// given registerer. It panics if the collectors are already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "petal",
			Name:      "tx_processed_total",
			Help:      "Total number of processed transactions by phase, message path and result code.",
		}, []string{"phase", "path", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "petal",
			Name:      "tx_duration_seconds",
			Help:      "Duration of transaction processing by phase and message path.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"phase", "path"}),
	}
	reg.MustRegister(m.processed, m.duration)
	return m
}

func (m *Metrics) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Checker) (*petal.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, info, db, tx)
	m.observe("check", tx, start, err)
	return res, err
}

func (m *Metrics) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx, next petal.Deliverer) (*petal.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, info, db, tx)
	m.observe("deliver", tx, start, err)
	return res, err
}

func (m *Metrics) observe(phase string, tx petal.Tx, start time.Time, err error) {
	path := petal.GetPath(tx)
	var code uint32
	if err != nil {
		code, _ = errors.ABCIInfo(err, false)
	}
	m.processed.WithLabelValues(phase, path, strconv.FormatUint(uint64(code), 10)).Inc()
	m.duration.WithLabelValues(phase, path).Observe(time.Since(start).Seconds())
}
