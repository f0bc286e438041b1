package server

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
)

// ValidateGenesis loads every given genesis file and applies its application
// state to a throw away in memory store. The first failure is returned.
func ValidateGenesis(ini petal.Initializer, genesisPaths []string) error {
	for _, path := range genesisPaths {
		if err := validateGenesis(ini, path); err != nil {
			return errors.Wrap(err, path)
		}
	}
	return nil
}

func validateGenesis(ini petal.Initializer, genesisPath string) error {
	genesis, err := app.LoadGenesis(genesisPath)
	if err != nil {
		return err
	}
	if err := ini.FromGenesis(genesis.AppState, store.MemStore()); err != nil {
		return errors.Wrap(err, "cannot initialize from genesis")
	}
	return nil
}
