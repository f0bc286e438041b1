package app

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

// ABCIStore exposes the abci.Query interface as a ReadOnlyKVStore. Wrap it
// with a bucket to reuse key and parse logic on the client side.
type ABCIStore struct {
	app abci.Application
}

var _ petal.ReadOnlyKVStore = (*ABCIStore)(nil)

// NewABCIStore returns a store reading the committed state of given
// application.
func NewABCIStore(app abci.Application) *ABCIStore {
	return &ABCIStore{app: app}
}

// Get will query for exactly one value over the abci store.
func (a *ABCIStore) Get(key []byte) ([]byte, error) {
	query := a.app.Query(abci.RequestQuery{
		Path: "/",
		Data: key,
	})
	if query.Code != 0 {
		return nil, errors.ABCIError(query.Code, query.Log)
	}
	var value ResultSet
	if err := value.Unmarshal(query.Value); err != nil {
		return nil, errors.Wrap(err, "unmarshal result set")
	}
	if len(value.Results) == 0 {
		return nil, nil
	}
	return value.Results[0], nil
}

// Has returns true if the given key in in the abci app store
func (a *ABCIStore) Has(key []byte) (bool, error) {
	val, err := a.Get(key)
	return len(val) > 0, err
}

// Iterator returns all entries starting with the start prefix. Only prefix
// queries are served over abci, so end is ignored.
func (a *ABCIStore) Iterator(start, end []byte) (petal.Iterator, error) {
	models, err := a.prefixQuery(start)
	if err != nil {
		return nil, err
	}
	return store.NewSliceIterator(models), nil
}

// ReverseIterator is Iterator in descending order.
func (a *ABCIStore) ReverseIterator(start, end []byte) (petal.Iterator, error) {
	models, err := a.prefixQuery(start)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return store.NewSliceIterator(models), nil
}

func (a *ABCIStore) prefixQuery(prefix []byte) ([]petal.Model, error) {
	query := a.app.Query(abci.RequestQuery{
		Path: "/?prefix",
		Data: prefix,
	})
	if query.Code != 0 {
		return nil, errors.ABCIError(query.Code, query.Log)
	}
	return toModels(query.Key, query.Value)
}

func toModels(keys, values []byte) ([]petal.Model, error) {
	var k, v ResultSet
	if err := k.Unmarshal(keys); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal keys")
	}
	if err := v.Unmarshal(values); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal values")
	}
	return JoinResults(&k, &v)
}
