package x

import (
	"context"

	"github.com/petaldocs/petal"
)

// Authenticator extracts authentication information from the context.
// Handlers receive it in their constructor, so that another authentication
// system can be plugged in.
type Authenticator interface {
	// GetConditions reveals all conditions fulfilled by the transaction.
	GetConditions(context.Context) []petal.Condition
	// HasAddress checks if any condition matches this address.
	HasAddress(context.Context, petal.Address) bool
}

// MultiAuth chains together many Authenticators into one.
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of Authenticators.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines the conditions of all Authenticators, in order.
func (m MultiAuth) GetConditions(ctx context.Context) []petal.Condition {
	var res []petal.Condition
	for _, impl := range m.impls {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

// HasAddress returns true if any Authenticator knows the address.
func (m MultiAuth) HasAddress(ctx context.Context, addr petal.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses returns the addresses of all fulfilled conditions.
func GetAddresses(ctx context.Context, auth Authenticator) []petal.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]petal.Address, len(conds))
	for i, c := range conds {
		addrs[i] = c.Address()
	}
	return addrs
}

// MainSigner returns the first condition if any, otherwise nil.
func MainSigner(ctx context.Context, auth Authenticator) petal.Condition {
	conds := auth.GetConditions(ctx)
	if len(conds) == 0 {
		return nil
	}
	return conds[0]
}

// HasAllAddresses returns true if every required address is authenticated.
func HasAllAddresses(ctx context.Context, auth Authenticator, required []petal.Address) bool {
	for _, r := range required {
		if !auth.HasAddress(ctx, r) {
			return false
		}
	}
	return true
}

// HasAllConditions returns true if every required condition is fulfilled.
func HasAllConditions(ctx context.Context, auth Authenticator, required []petal.Condition) bool {
	return HasNConditions(ctx, auth, required, len(required))
}

// HasNConditions returns true if at least n of the requested conditions are
// fulfilled.
func HasNConditions(ctx context.Context, auth Authenticator, requested []petal.Condition, n int) bool {
	if n <= 0 {
		return true
	}
	conds := auth.GetConditions(ctx)
	for _, r := range requested {
		if hasCondition(conds, r) {
			n--
			if n == 0 {
				return true
			}
		}
	}
	return false
}

func hasCondition(conds []petal.Condition, c petal.Condition) bool {
	for _, have := range conds {
		if have.Equals(c) {
			return true
		}
	}
	return false
}
