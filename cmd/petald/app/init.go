package app

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/x/docsign"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// GenInitOptions returns the application state for a new chain. The
// optional first argument is the administrator address. When absent, a new
// key is generated and printed.
func GenInitOptions(args []string) (json.RawMessage, error) {
	var admin petal.Address
	if len(args) > 0 {
		addr, err := petal.ParseAddress(args[0])
		if err != nil {
			return nil, errors.Wrap(err, "admin address")
		}
		admin = addr
	} else {
		addr, keys, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		admin = addr
		fmt.Println(keys)
	}

	state := map[string]interface{}{
		"conf": map[string]interface{}{
			"docsign": docsign.Configuration{
				Metadata:     &petal.Metadata{Schema: 1},
				Owner:        admin,
				NoncePolicy:  docsign.NonceLegacy,
				MaxSigners:   100,
				MaxURILength: 2048,
			},
		},
		"docsign": map[string]interface{}{
			"admin":  admin,
			"tokens": []interface{}{},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// GenerateApp is used to create a stub for server/start.go command.
// Transaction metrics are registered with the default prometheus registry.
func GenerateApp(home string, logger log.Logger, debug bool) (abci.Application, error) {
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "petal.db")
	}
	return newApplication(dbPath, logger, debug, prometheus.DefaultRegisterer)
}

func newApplication(dbPath string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
	workflow := docsign.NewDocumentWorkflow(docsign.DefaultRegistries(), docsign.Ed25519Verifier{})
	application, err := Application("petal", Stack(reg, workflow), TxDecoder, dbPath, debug)
	if err != nil {
		return nil, err
	}
	application.WithInit(&docsign.Initializer{Workflow: workflow})
	application.WithLogger(logger)
	return application, nil
}

// InlineApp is used by the retry command to build the application on top of
// an already opened store.
func InlineApp(kv petal.CommitKVStore, logger log.Logger, debug bool) (abci.Application, error) {
	workflow := docsign.NewDocumentWorkflow(docsign.DefaultRegistries(), docsign.Ed25519Verifier{})
	store := app.NewStoreApp("petal", kv, QueryRouter()).WithLogger(logger)
	base := app.NewBaseApp(store, TxDecoder, Stack(prometheus.NewRegistry(), workflow), debug)
	base.WithInit(&docsign.Initializer{Workflow: workflow})
	return base, nil
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateKey returns the address of a new ed25519 key together with the
// JSON encoded key pair.
func GenerateKey() (petal.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return pubKey.Address(), string(keys), nil
}
