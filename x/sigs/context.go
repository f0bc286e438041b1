package sigs

import (
	"context"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/x"
)

type contextKey int

const (
	contextKeySigners contextKey = iota
)

// withSigners is private, as only this package can authenticate signers.
func withSigners(ctx context.Context, signers []petal.Condition) context.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate gives access to the conditions of all transaction signers
// verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the conditions of everyone who signed the current
// transaction. May be empty.
func (a Authenticate) GetConditions(ctx context.Context) []petal.Condition {
	val, _ := ctx.Value(contextKeySigners).([]petal.Condition)
	return val
}

// HasAddress returns true if given address signed the current transaction.
func (a Authenticate) HasAddress(ctx context.Context, addr petal.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
