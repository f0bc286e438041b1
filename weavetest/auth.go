package weavetest

import (
	"context"
	"fmt"

	"github.com/petaldocs/petal"
)

// Auth is a mock implementing x.Authenticator interface.
//
// It authenticates every referenced condition. Signer and Signers can be
// combined and both are always considered.
type Auth struct {
	// Signer is a shortcut for authenticating a single condition.
	Signer petal.Condition

	// Signers represents an authentication of multiple signers.
	Signers []petal.Condition
}

// GetConditions returns Signers followed by Signer.
func (a *Auth) GetConditions(context.Context) []petal.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]petal.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	return append(conds, a.Signer)
}

func (a *Auth) HasAddress(ctx context.Context, addr petal.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []petal.Condition, addr petal.Address) bool {
	for _, c := range conds {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

type ctxAuthKey string

// CtxAuth is a mock implementing x.Authenticator interface.
//
// Conditions are stored in and loaded from the context.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context.
	Key string
}

func (a *CtxAuth) SetConditions(ctx context.Context, conds ...petal.Condition) context.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx context.Context) []petal.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]petal.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []petal.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx context.Context, addr petal.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}
