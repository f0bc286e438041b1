/*
Package app links together the document signing extension, signature
authentication and the transaction middleware into the petal daemon
application.
*/
package app

import (
	"path/filepath"
	"strings"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/orm"
	"github.com/petaldocs/petal/store/iavl"
	"github.com/petaldocs/petal/x"
	"github.com/petaldocs/petal/x/docsign"
	"github.com/petaldocs/petal/x/sigs"
	"github.com/petaldocs/petal/x/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, metrics and recovery.
func Chain(reg prometheus.Registerer) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewMetrics(reg),
		utils.NewKeyTagger(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, a failed message still increments the nonce
		utils.NewSavepoint().OnDeliver(),
	)
}

// Router returns a router dispatching every document signing message to
// the given workflow.
func Router(authFn x.Authenticator, w *docsign.DocumentWorkflow) *app.Router {
	r := app.NewRouter()
	docsign.RegisterRoutes(r, authFn, w)
	return r
}

// QueryRouter returns a default query router, allowing access to the
// document signing buckets, "/auth" and "/".
func QueryRouter() petal.QueryRouter {
	r := petal.NewQueryRouter()
	r.RegisterAll(
		docsign.RegisterQuery,
		sigs.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard middleware chain in front of the document
// signing handlers. Transaction metrics are registered with reg.
func Stack(reg prometheus.Registerer, w *docsign.DocumentWorkflow) petal.Handler {
	authFn := Authenticator()
	return Chain(reg).WithHandler(Router(authFn, w))
}

// Application constructs a basic ABCI application with the given
// arguments. An empty dbPath results in an in memory store.
func Application(name string, h petal.Handler, tx petal.TxDecoder, dbPath string, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	store := app.NewStoreApp(name, kv, QueryRouter())
	return app.NewBaseApp(store, tx, h, debug), nil
}

// CommitKVStore returns an initialized KVStore that persists the data to
// the named path. An empty path returns an in memory store.
func CommitKVStore(dbPath string) (petal.CommitKVStore, error) {
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "invalid database name %q: %s", dbPath, err)
	}
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return iavl.NewCommitStore(filepath.Dir(path), filepath.Base(path)), nil
}
