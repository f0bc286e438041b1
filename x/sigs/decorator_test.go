package sigs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	abci "github.com/tendermint/tendermint/abci/types"
)

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	checkKv := kv.CacheWrap()
	signers := new(SigCheckHandler)
	d := NewDecorator()
	chainID := "deco-rate"
	info, err := petal.NewBlockInfo(abci.Header{Height: 3, Time: time.Now()}, chainID, nil)
	require.NoError(t, err)
	ctx := context.Background()

	priv := crypto.GenPrivKeyEd25519()
	perms := []petal.Condition{priv.PublicKey().Condition()}

	tx := NewStdTx([]byte("art"))
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(priv, tx, chainID, 1)
	require.NoError(t, err)

	deliver := func(dec petal.Decorator, my petal.Tx) error {
		_, err := dec.Deliver(ctx, info, kv, my, signers)
		return err
	}
	check := func(dec petal.Decorator, my petal.Tx) error {
		_, err := dec.Check(ctx, info, checkKv, my, signers)
		return err
	}

	for i, fn := range []func(petal.Decorator, petal.Tx) error{check, deliver} {
		tx.Signatures = nil
		err := fn(d, tx)
		assert.True(t, errors.ErrUnauthorized.Is(err), "%d: %v", i, err)

		tx.Signatures = []*StdSignature{sig}
		err = fn(d, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.Signers)

		// replay
		err = fn(d, tx)
		assert.True(t, ErrInvalidSequence.Is(err), "%d: %v", i, err)

		ad := d.AllowMissingSigs()
		tx.Signatures = nil
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, []petal.Condition{}, signers.Signers)

		tx.Signatures = []*StdSignature{sig1}
		err = fn(ad, tx)
		assert.NoError(t, err, "%d", i)
		assert.Equal(t, perms, signers.Signers)
	}
}

func TestDecoratorChargesForSignatures(t *testing.T) {
	kv := store.MemStore()
	chainID := "gas-counter"
	info, err := petal.NewBlockInfo(abci.Header{Height: 1}, chainID, nil)
	require.NoError(t, err)

	priv := crypto.GenPrivKeyEd25519()
	tx := NewStdTx([]byte("gas"))
	sig, err := SignTx(priv, tx, chainID, 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sig}

	res, err := NewDecorator().Check(context.Background(), info, kv, tx, new(SigCheckHandler))
	require.NoError(t, err)
	assert.Equal(t, int64(signatureVerifyCost), res.GasAllocated)
}

func TestAuthenticate(t *testing.T) {
	cond := crypto.GenPrivKeyEd25519().PublicKey().Condition()
	other := crypto.GenPrivKeyEd25519().PublicKey().Condition()

	var auth Authenticate
	assert.Empty(t, auth.GetConditions(context.Background()))

	ctx := withSigners(context.Background(), []petal.Condition{cond})
	assert.True(t, auth.HasAddress(ctx, cond.Address()))
	assert.False(t, auth.HasAddress(ctx, other.Address()))
}
