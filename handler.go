package petal

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/petaldocs/petal/errors"
)

// Handler is a core engine that can process a few specific messages.
// This could represent "issue a document", or "record a signature".
type Handler interface {
	Checker
	Deliverer
}

// Checker is a subset of Handler to verify the validity of a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Checker interface {
	Check(ctx context.Context, info BlockInfo, db KVStore, tx Tx) (*CheckResult, error)
}

// Deliverer is a subset of Handler to execute a transaction.
// It is its own interface to allow better type controls in the next
// arguments in Decorator
type Deliverer interface {
	Deliver(ctx context.Context, info BlockInfo, db KVStore, tx Tx) (*DeliverResult, error)
}

// Decorator wraps a Handler to provide common functionality
// like authentication, or logging, to many Handlers
type Decorator interface {
	Check(ctx context.Context, info BlockInfo, db KVStore, tx Tx, next Checker) (*CheckResult, error)
	Deliver(ctx context.Context, info BlockInfo, db KVStore, tx Tx, next Deliverer) (*DeliverResult, error)
}

// Registry is an interface to register your handler,
// the setup side of a Router
type Registry interface {
	// Handle assigns given handler to handle processing of every message
	// of provided type.
	Handle(Msg, Handler)
}

// Options are the app options
// Each extension can look up it's key and parse the json as desired
type Options map[string]json.RawMessage

// ReadOptions reads the values stored under a given key,
// and parses the json into the given obj.
// Returns an error if it cannot parse.
// Noop and no error if key is missing
func (o Options) ReadOptions(key string, obj interface{}) error {
	msg := o[key]
	if len(msg) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return errors.Wrapf(errors.ErrInput, "cannot parse %q options: %s", key, err)
	}
	return nil
}

// Stream expects an array of json elements under the given key and allows
// decoding them one by one. Returned function decodes the next element into
// given destination. ErrEmpty is returned once all elements were consumed and
// every following call returns ErrState.
func (o Options) Stream(key string) (func(dest interface{}) error, error) {
	raw, ok := o[key]
	if !ok {
		return nil, errors.Wrapf(errors.ErrEmpty, "no %q key", key)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))

	var started, done bool
	next := func(dest interface{}) error {
		if done {
			return errors.Wrap(errors.ErrState, "stream closed")
		}
		if !started {
			started = true
			tok, err := dec.Token()
			if err != nil {
				done = true
				return errors.Wrapf(errors.ErrInput, "cannot read %q: %s", key, err)
			}
			if d, ok := tok.(json.Delim); !ok || d != '[' {
				done = true
				return errors.Wrapf(errors.ErrInput, "%q is not a list", key)
			}
		}
		if !dec.More() {
			done = true
			return errors.Wrap(errors.ErrEmpty, "end of list")
		}
		if err := dec.Decode(dest); err != nil {
			done = true
			return errors.Wrapf(errors.ErrInput, "cannot decode %q element: %s", key, err)
		}
		return nil
	}
	return next, nil
}

// Initializer implementations are used to initialize
// extensions from genesis file contents
type Initializer interface {
	FromGenesis(Options, KVStore) error
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...Initializer) Initializer {
	return chainInitializer(inits)
}

type chainInitializer []Initializer

// FromGenesis will pass the options to every initializer in order.
// It stops on the first error.
func (c chainInitializer) FromGenesis(opts Options, kv KVStore) error {
	for _, i := range c {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
