package petal

import (
	"fmt"
)

// Query modifiers select how the query data is interpreted.
const (
	// KeyQueryMod treats the data as a single key.
	KeyQueryMod = ""
	// PrefixQueryMod returns every entry whose key starts with the data.
	PrefixQueryMod = "prefix"
)

// Model is a single key value entry returned by a query.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair constructs a model from a key value pair.
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}

// QueryHandler serves the queries sent to a single path.
type QueryHandler interface {
	Query(db ReadOnlyKVStore, mod string, data []byte) ([]Model, error)
}

// QueryRegister adds the handlers of one extension to the router.
type QueryRegister func(QueryRouter)

// QueryRouter dispatches abci queries to the handler registered for the
// query path, for example "/owners" or "/nonces".
type QueryRouter struct {
	routes map[string]QueryHandler
}

func NewQueryRouter() QueryRouter {
	return QueryRouter{routes: make(map[string]QueryHandler)}
}

// RegisterAll calls every register function with this router.
func (r QueryRouter) RegisterAll(qr ...QueryRegister) {
	for _, register := range qr {
		register(r)
	}
}

// Register binds the handler to the path. Registering the same path twice
// is a programming error and panics.
func (r QueryRouter) Register(path string, h QueryHandler) {
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("query path %q already registered", path))
	}
	r.routes[path] = h
}

// Handler returns the handler registered for the path, or nil.
func (r QueryRouter) Handler(path string) QueryHandler {
	return r.routes[path]
}
