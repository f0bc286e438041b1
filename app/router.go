package app

import (
	"context"
	"fmt"
	"regexp"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

// isPath is the RegExp to ensure the routes make sense
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_/]+$`).MatchString

// Router allows us to register many handlers with different
// paths and then direct each message to the proper handler.
//
// Minimal interface modeled after net/http.ServeMux
type Router struct {
	routes map[string]petal.Handler
}

var _ petal.Registry = (*Router)(nil)
var _ petal.Handler = (*Router)(nil)

// NewRouter returns a new empty router instance.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]petal.Handler),
	}
}

// Handle adds a new Handler for the path of given message.
// It panics if another Handler was already registered for that path or the
// path is not a valid route.
func (r *Router) Handle(msg petal.Msg, h petal.Handler) {
	path := msg.Path()
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// handler returns the registered Handler for this path. If no path is
// found, returns a noSuchPath Handler. Always returns a non-nil Handler.
func (r *Router) handler(m petal.Msg) petal.Handler {
	path := m.Path()
	if h, ok := r.routes[path]; ok {
		return h
	}
	return notFoundHandler(path)
}

// Check dispatches to the proper handler based on path
func (r *Router) Check(ctx context.Context, info petal.BlockInfo, store petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrState, "nil message")
	}
	return r.handler(msg).Check(ctx, info, store, tx)
}

// Deliver dispatches to the proper handler based on path
func (r *Router) Deliver(ctx context.Context, info petal.BlockInfo, store petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "cannot load msg")
	}
	if msg == nil {
		return nil, errors.Wrap(errors.ErrState, "nil message")
	}
	return r.handler(msg).Deliver(ctx, info, store, tx)
}

// notFoundHandler always returns ErrNotFound error regardless of the
// arguments.
type notFoundHandler string

func (path notFoundHandler) Check(context.Context, petal.BlockInfo, petal.KVStore, petal.Tx) (*petal.CheckResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}

func (path notFoundHandler) Deliver(context.Context, petal.BlockInfo, petal.KVStore, petal.Tx) (*petal.DeliverResult, error) {
	return nil, errors.Wrapf(errors.ErrNotFound, "no handler for message path %q", string(path))
}
