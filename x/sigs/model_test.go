package sigs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/store"
)

func TestUserModel(t *testing.T) {
	kv := store.MemStore()

	bucket := NewBucket()
	pub := crypto.GenPrivKeyEd25519().PublicKey()
	addr := pub.Address()

	obj, err := bucket.Get(kv, addr)
	require.NoError(t, err)
	assert.Nil(t, obj)

	obj, err = bucket.GetOrCreate(kv, pub)
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.NoError(t, obj.Validate())
	user := AsUser(obj)
	assert.NotNil(t, user.Pubkey)
	assert.Equal(t, int64(0), user.Sequence)

	assert.True(t, ErrInvalidSequence.Is(user.CheckAndIncrementSequence(5)))
	assert.NoError(t, user.CheckAndIncrementSequence(0))
	assert.Error(t, user.CheckAndIncrementSequence(0))
	assert.NoError(t, user.CheckAndIncrementSequence(1))
	assert.Equal(t, int64(2), user.Sequence)

	require.NoError(t, bucket.Save(kv, obj))
	obj2, err := bucket.Get(kv, addr)
	require.NoError(t, err)
	user2 := AsUser(obj2)
	require.NotNil(t, user2)
	assert.Equal(t, int64(2), user2.Sequence)
	assert.Equal(t, pub.Ed25519, user2.Pubkey.Ed25519)

	next, err := NextNonce(kv, addr)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	next, err = NextNonce(kv, crypto.GenPrivKeyEd25519().PublicKey().Address())
	require.NoError(t, err)
	assert.Equal(t, int64(0), next)
}

func TestUserValidation(t *testing.T) {
	// No key and no address.
	obj := NewUser(nil)
	assert.Error(t, obj.Validate())

	pub := crypto.GenPrivKeyEd25519().PublicKey()
	AsUser(obj).SetPubkey(pub)
	assert.Error(t, obj.Validate())
	obj.SetKey(pub.Address())
	assert.NoError(t, obj.Validate())
	assert.Panics(t, func() { AsUser(obj).SetPubkey(pub) })

	AsUser(obj).Sequence = -30
	assert.Error(t, obj.Validate())
	AsUser(obj).Sequence = 17
	assert.NoError(t, obj.Validate())
}

func TestSequenceOverflow(t *testing.T) {
	u := &UserData{Sequence: maxSequenceValue}
	err := u.CheckAndIncrementSequence(maxSequenceValue)
	assert.Error(t, err)
	assert.Equal(t, int64(maxSequenceValue), u.Sequence)
}
