package server

import (
	"flag"
	"net/http"

	"github.com/petaldocs/petal/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cmn "github.com/tendermint/tendermint/libs/common"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagBind    = "bind"
	flagDebug   = "debug"
	flagMetrics = "metrics"
)

type startArgs struct {
	bind    string
	debug   bool
	metrics string
}

func parseStartArgs(args []string) (startArgs, error) {
	var res startArgs
	startFlags := flag.NewFlagSet("start", flag.ContinueOnError)
	startFlags.StringVar(&res.bind, flagBind, "tcp://localhost:26658", "address server listens on")
	startFlags.BoolVar(&res.debug, flagDebug, false, "call stack returned on error")
	startFlags.StringVar(&res.metrics, flagMetrics, "", "address to serve prometheus metrics on, disabled if empty")
	if err := startFlags.Parse(args); err != nil {
		return res, errors.Wrap(errors.ErrInput, err.Error())
	}
	return res, nil
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

// StartCmd initializes the application and serves it over the ABCI socket
// protocol until the process receives a termination signal.
func StartCmd(gen AppGenerator, logger log.Logger, home string, args []string) error {
	flags, err := parseStartArgs(args)
	if err != nil {
		return err
	}

	app, err := gen(home, logger, flags.debug)
	if err != nil {
		return errors.Wrap(err, "cannot create application")
	}

	if flags.metrics != "" {
		logger.Info("Serving metrics", "bind", flags.metrics)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(flags.metrics, mux); err != nil {
				logger.Error("Metrics server failed", "err", err)
			}
		}()
	}

	logger.Info("Starting ABCI app", "bind", flags.bind)

	svr, err := server.NewServer(flags.bind, "socket", app)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot create listener: %s", err)
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrapf(errors.ErrState, "cannot start server: %s", err)
	}

	// Wait forever
	cmn.TrapSignal(logger, func() {
		svr.Stop()
	})
	select {}
}
