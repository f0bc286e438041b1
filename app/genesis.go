package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// Genesis is the subset of the tendermint genesis file that the application
// cares about.
type Genesis struct {
	ChainID  string        `json:"chain_id"`
	AppState petal.Options `json:"app_state"`
}

// LoadGenesis reads and parses a genesis file.
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "read genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInput, "parse genesis file: %s", err)
	}
	if !petal.IsValidChainID(gen.ChainID) {
		return gen, errors.Wrapf(errors.ErrInput, "chain id %q", gen.ChainID)
	}
	return gen, nil
}

// LoadGenesis initializes the store from a genesis file on disk, the same
// way InitChain does with the genesis passed by the node.
func (s *StoreApp) LoadGenesis(filePath string, init petal.Initializer) error {
	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return errors.Wrapf(errors.ErrInput, "read genesis file: %s", err)
	}
	var gen struct {
		ChainID  string          `json:"chain_id"`
		AppState json.RawMessage `json:"app_state"`
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return errors.Wrapf(errors.ErrInput, "parse genesis file: %s", err)
	}
	return s.parseAppState(gen.AppState, gen.ChainID, init)
}
