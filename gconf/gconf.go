package gconf

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// ReadStore is a subset of petal.ReadOnlyKVStore.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is a subset of petal.KVStore.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is implemented by object that can serialize itself to a binary
// representation. Marshal is implemented by all protobuf messages.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is implemented by all protobuf messages.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is implemented by every configuration entity.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// Key returns the database key of the configuration of given package.
func Key(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates the configuration and writes it as the configuration
// singleton of given package.
func Save(db Store, pkg string, src ValidMarshaler) error {
	key := Key(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	return db.Set(key, raw)
}

// Load reads the configuration of given package into dst. ErrNotFound is
// returned if no configuration was saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	key := Key(pkg)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	if err := dst.Unmarshal(raw); err != nil {
		return errors.Wrapf(errors.ErrModel, "unmarshal: key %q: %s", key, err)
	}
	return nil
}

// InitConfig reads opts["conf"][pkg] into conf, validates it and saves it.
// ErrNotFound is returned if the genesis declares no configuration for
// given package.
func InitConfig(db Store, opts petal.Options, pkg string, conf Configuration) error {
	var confOptions petal.Options
	if err := opts.ReadOptions("conf", &confOptions); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if confOptions[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := confOptions.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	if err := Save(db, pkg, conf); err != nil {
		return errors.Wrapf(err, "save configuration for %s", pkg)
	}
	return nil
}
