package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"path/filepath"

	"github.com/petaldocs/petal/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagForce = "i"
)

// GenOptions can parse command-line and flag to
// generate default app_options for the genesis file.
// This is application-specific
type GenOptions func(args []string) (json.RawMessage, error)

// InitCmd adds the application state produced by gen to the genesis file
// created by "tendermint init" in home. An existing application state is
// kept unless the -i flag is given.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	var force bool
	initFlags := flag.NewFlagSet("init", flag.ContinueOnError)
	initFlags.BoolVar(&force, flagForce, false, "ignore existing app_state and overwrite it")
	if err := initFlags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	options, err := gen(initFlags.Args())
	if err != nil {
		return errors.Wrap(err, "cannot generate app state")
	}

	genFile := filepath.Join(home, "config", "genesis.json")
	if err := addGenesisOptions(genFile, options, force); err != nil {
		return err
	}
	logger.Info("App state written", "file", genFile)
	return nil
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func addGenesisOptions(filename string, options json.RawMessage, force bool) error {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(errors.ErrNotFound, "cannot read genesis file, run tendermint init first: %s", err)
	}

	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return errors.Wrapf(errors.ErrInput, "genesis file: %s", err)
	}

	if state := doc["app_state"]; len(state) > 0 && string(state) != "null" && !force {
		return errors.Wrap(errors.ErrDuplicate, "app_state already set, use -i to overwrite")
	}

	doc["app_state"] = options
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return ioutil.WriteFile(filename, out, 0600)
}
