package docsign

import (
	"context"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/gconf"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
	"github.com/tendermint/tendermint/libs/common"
)

func TestInitHandler(t *testing.T) {
	adminKey := weavetest.NewKey()
	admin := adminKey.PublicKey().Address()
	db := store.MemStore()
	info := blockAt(t, 100)

	auth := &weavetest.CtxAuth{Key: "auth"}
	rt := app.NewRouter()
	RegisterRoutes(rt, auth, newTestWorkflow())

	tx := &weavetest.Tx{Msg: &InitMsg{Metadata: &petal.Metadata{Schema: 1}, Admin: admin}}

	// Only the future admin can claim the role.
	ctx := auth.SetConditions(context.Background(), weavetest.NewCondition())
	_, err := rt.Deliver(ctx, info, db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ctx = auth.SetConditions(context.Background(), adminKey.PublicKey().Condition())
	_, err = rt.Check(ctx, info, db, tx)
	assert.Nil(t, err)
	_, err = rt.Deliver(ctx, info, db, tx)
	assert.Nil(t, err)

	_, err = rt.Check(ctx, info, db, tx)
	assert.IsErr(t, ErrAlreadyInitialized, err)
	_, err = rt.Deliver(ctx, info, db, tx)
	assert.IsErr(t, ErrAlreadyInitialized, err)

	got, err := NewAdminStore().Admin(db)
	assert.Nil(t, err)
	assert.Equal(t, admin, got)
}

func TestIssueHandler(t *testing.T) {
	issuer := weavetest.NewCondition()
	owner := weavetest.RandomAddr(t)
	signer := weavetest.RandomAddr(t)
	hash := contentHash("contract")
	info := blockAt(t, 100)

	cases := map[string]struct {
		signers    []petal.Condition
		msg        *IssueMsg
		wantErr    *errors.Error
		wantTokens map[uint32]petal.Address
	}{
		"success": {
			signers:    []petal.Condition{issuer},
			msg:        issueMsg(owner, 7, hash, 1000, signer),
			wantTokens: map[uint32]petal.Address{7: owner},
		},
		"issuer signature required": {
			msg:        issueMsg(owner, 7, hash, 1000, signer),
			wantErr:    errors.ErrUnauthorized,
			wantTokens: map[uint32]petal.Address{},
		},
		"empty signer roster": {
			signers:    []petal.Condition{issuer},
			msg:        issueMsg(owner, 7, hash, 1000),
			wantErr:    ErrEmptySignerRoster,
			wantTokens: map[uint32]petal.Address{},
		},
		"invalid message": {
			signers:    []petal.Condition{issuer},
			msg:        issueMsg(owner, 7, nil, 1000, signer),
			wantErr:    errors.ErrEmpty,
			wantTokens: map[uint32]petal.Address{},
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			rt := app.NewRouter()
			RegisterRoutes(rt, &weavetest.Auth{Signers: tc.signers}, newTestWorkflow())
			tx := &weavetest.Tx{Msg: tc.msg}

			// Check runs on a throw away cache, the same way the mempool
			// state is kept apart from the block state.
			cache := db.CacheWrap()
			cres, err := rt.Check(context.Background(), info, cache, tx)
			cache.Discard()
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, int64(issueCost), cres.GasAllocated)
			}

			res, err := rt.Deliver(context.Background(), info, db, tx)
			if tc.wantErr != nil {
				assert.IsErr(t, tc.wantErr, err)
			} else {
				assert.Nil(t, err)
				assert.Equal(t, TokenKey(tc.msg.TokenID), res.Data)
				assert.Equal(t, []common.KVPair{{Key: tagToken, Value: []byte("7")}}, res.Tags)
			}

			owners, err := NewTokenRegistry().Owners(db)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTokens, owners)
		})
	}
}

func TestSubmitSignatureHandler(t *testing.T) {
	key := weavetest.NewKey()
	signer := key.PublicKey().Address()
	hash := contentHash("contract")
	info := blockAt(t, 100)

	db := store.MemStore()
	w := newTestWorkflow()
	_, err := w.Issue(db, issueMsg(weavetest.RandomAddr(t), 4, hash, 1000, signer))
	assert.Nil(t, err)

	auth := &weavetest.CtxAuth{Key: "auth"}
	rt := app.NewRouter()
	RegisterRoutes(rt, auth, w)

	tx := &weavetest.Tx{Msg: signed(t, key, SignedPayload{
		TokenID:      4,
		DocumentHash: hash,
		Deadline:     1000,
		Status:       StatusSigned,
	})}

	// The transaction must be signed by the document signer.
	ctx := auth.SetConditions(context.Background(), weavetest.NewCondition())
	_, err = rt.Check(ctx, info, db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ctx = auth.SetConditions(context.Background(), key.PublicKey().Condition())
	cache := db.CacheWrap()
	cres, err := rt.Check(ctx, info, cache, tx)
	cache.Discard()
	assert.Nil(t, err)
	assert.Equal(t, int64(submitSignatureCost), cres.GasAllocated)

	res, err := rt.Deliver(ctx, info, db, tx)
	assert.Nil(t, err)
	assert.Equal(t, []common.KVPair{
		{Key: tagToken, Value: []byte("4")},
		{Key: tagSigner, Value: []byte(signer.String())},
	}, res.Tags)

	_, err = rt.Check(ctx, info, db, tx)
	assert.IsErr(t, ErrAlreadySigned, err)

	status, err := NewSigningSessions().StatusOf(db, 4, signer)
	assert.Nil(t, err)
	assert.Equal(t, StatusSigned, status)
}

func TestUpdateConfigurationHandler(t *testing.T) {
	adminKey := weavetest.NewKey()
	admin := adminKey.PublicKey().Address()
	owner := weavetest.NewCondition()
	info := blockAt(t, 100)

	db := store.MemStore()
	w := newTestWorkflow()
	assert.Nil(t, w.Init(db, admin))

	auth := &weavetest.CtxAuth{Key: "auth"}
	rt := app.NewRouter()
	RegisterRoutes(rt, auth, w)

	patch := func(c Configuration) petal.Tx {
		c.Metadata = &petal.Metadata{Schema: 1}
		return &weavetest.Tx{Msg: &UpdateConfigurationMsg{
			Metadata: &petal.Metadata{Schema: 1},
			Patch:    &c,
		}}
	}

	// Without a configuration only the admin can create one.
	ctx := auth.SetConditions(context.Background(), owner)
	_, err := rt.Deliver(ctx, info, db, patch(Configuration{NoncePolicy: NonceStrict}))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ctx = auth.SetConditions(context.Background(), adminKey.PublicKey().Condition())
	_, err = rt.Deliver(ctx, info, db, patch(Configuration{
		Owner:       owner.Address(),
		NoncePolicy: NonceStrict,
		MaxSigners:  10,
	}))
	assert.Nil(t, err)

	conf, err := loadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, NonceStrict, conf.NoncePolicy)
	assert.Equal(t, uint32(10), conf.MaxSigners)

	// From now on the configuration owner is in charge.
	_, err = rt.Deliver(ctx, info, db, patch(Configuration{MaxSigners: 20}))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ctx = auth.SetConditions(context.Background(), owner)
	_, err = rt.Deliver(ctx, info, db, patch(Configuration{MaxSigners: 20}))
	assert.Nil(t, err)

	var stored Configuration
	assert.Nil(t, gconf.Load(db, configPkg, &stored))
	assert.Equal(t, uint32(20), stored.MaxSigners)
	// Zero values of a patch keep the current value.
	assert.Equal(t, NonceStrict, stored.NoncePolicy)

	// The nonce policy can be switched back and forth.
	_, err = rt.Deliver(ctx, info, db, patch(Configuration{NoncePolicy: NonceLegacy}))
	assert.Nil(t, err)
	conf, err = loadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, NonceLegacy, conf.NoncePolicy)
	assert.Equal(t, uint32(20), conf.MaxSigners)

	_, err = rt.Deliver(ctx, info, db, patch(Configuration{NoncePolicy: NonceStrict}))
	assert.Nil(t, err)
	conf, err = loadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, NonceStrict, conf.NoncePolicy)
}

func TestUpdateConfigurationOwnerRequired(t *testing.T) {
	adminKey := weavetest.NewKey()
	owner := weavetest.NewCondition()
	info := blockAt(t, 100)

	db := store.MemStore()
	w := newTestWorkflow()
	assert.Nil(t, w.Init(db, adminKey.PublicKey().Address()))

	auth := &weavetest.CtxAuth{Key: "auth"}
	rt := app.NewRouter()
	RegisterRoutes(rt, auth, w)

	patch := func(c Configuration) petal.Tx {
		c.Metadata = &petal.Metadata{Schema: 1}
		return &weavetest.Tx{Msg: &UpdateConfigurationMsg{
			Metadata: &petal.Metadata{Schema: 1},
			Patch:    &c,
		}}
	}
	adminCtx := auth.SetConditions(context.Background(), adminKey.PublicKey().Condition())

	// Creating a configuration without an owner would lock it forever.
	_, err := rt.Deliver(adminCtx, info, db, patch(Configuration{MaxSigners: 5}))
	assert.IsErr(t, errors.ErrEmpty, err)
	var stored Configuration
	assert.IsErr(t, errors.ErrNotFound, gconf.Load(db, configPkg, &stored))

	// A configuration stored without an owner, for example from genesis,
	// stays under the admin until an owner is assigned.
	assert.Nil(t, gconf.Save(db, configPkg, &Configuration{
		Metadata:   &petal.Metadata{Schema: 1},
		MaxSigners: 5,
	}))
	_, err = rt.Deliver(adminCtx, info, db, patch(Configuration{MaxSigners: 50}))
	assert.IsErr(t, errors.ErrEmpty, err)

	_, err = rt.Deliver(adminCtx, info, db, patch(Configuration{Owner: owner.Address(), MaxSigners: 50}))
	assert.Nil(t, err)
	conf, err := loadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, uint32(50), conf.MaxSigners)
	assert.Equal(t, owner.Address(), conf.Owner)

	_, err = rt.Deliver(adminCtx, info, db, patch(Configuration{MaxSigners: 60}))
	assert.IsErr(t, errors.ErrUnauthorized, err)

	ownerCtx := auth.SetConditions(context.Background(), owner)
	_, err = rt.Deliver(ownerCtx, info, db, patch(Configuration{MaxSigners: 60}))
	assert.Nil(t, err)
}

func TestRegisterQuery(t *testing.T) {
	db := store.MemStore()
	w := newTestWorkflow()
	signer := weavetest.RandomAddr(t)
	_, err := w.Issue(db, issueMsg(weavetest.RandomAddr(t), 9, contentHash("x"), 1000, signer))
	assert.Nil(t, err)

	qr := petal.NewQueryRouter()
	RegisterQuery(qr)

	for _, path := range []string{"/owners", "/uris", "/dochashes", "/deadlines", "/sessions"} {
		t.Run(path, func(t *testing.T) {
			h := qr.Handler(path)
			if h == nil {
				t.Fatalf("no handler for %q", path)
			}
			res, err := h.Query(db, petal.KeyQueryMod, TokenKey(9))
			assert.Nil(t, err)
			assert.Equal(t, 1, len(res))
		})
	}

	res, err := qr.Handler("/sessions").Query(db, petal.PrefixQueryMod, nil)
	assert.Nil(t, err)
	assert.Equal(t, 1, len(res))
	var session SigningSession
	assert.Nil(t, session.Unmarshal(res[0].Value))
	assert.Equal(t, StatusWaiting, session.StatusOf(signer))

	for _, path := range []string{"/nonces", "/admin"} {
		if qr.Handler(path) == nil {
			t.Fatalf("no handler for %q", path)
		}
	}
}
