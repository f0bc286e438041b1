package docsign

import (
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestTokenRegistry(t *testing.T) {
	db := store.MemStore()
	r := NewTokenRegistry()
	owner := weavetest.RandomAddr(t)

	exists, err := r.Exists(db, 7)
	assert.Nil(t, err)
	assert.Equal(t, false, exists)

	// Missing tokens read as zero values.
	o, err := r.OwnerOf(db, 7)
	assert.Nil(t, err)
	assert.Nil(t, o)
	uri, err := r.URIOf(db, 7)
	assert.Nil(t, err)
	assert.Equal(t, "", uri)

	assert.Nil(t, r.Create(db, 7, owner, "ipfs://doc"))
	assert.Nil(t, r.Create(db, 3, owner, ""))
	assert.IsErr(t, ErrTokenAlreadyMinted, r.Create(db, 7, weavetest.RandomAddr(t), "other"))

	exists, err = r.Exists(db, 7)
	assert.Nil(t, err)
	assert.Equal(t, true, exists)
	o, err = r.OwnerOf(db, 7)
	assert.Nil(t, err)
	assert.Equal(t, owner, o)
	uri, err = r.URIOf(db, 7)
	assert.Nil(t, err)
	assert.Equal(t, "ipfs://doc", uri)

	owners, err := r.Owners(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]petal.Address{3: owner, 7: owner}, owners)
	uris, err := r.URIs(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]string{3: "", 7: "ipfs://doc"}, uris)
}

func TestDocumentRegistry(t *testing.T) {
	db := store.MemStore()
	r := NewDocumentRegistry()

	hash, err := r.HashOf(db, 1)
	assert.Nil(t, err)
	assert.Nil(t, hash)
	_, found, err := r.DeadlineOf(db, 1)
	assert.Nil(t, err)
	assert.Equal(t, false, found)

	assert.Nil(t, r.Bind(db, 1, []byte("first"), 1000))
	// Bind overwrites.
	assert.Nil(t, r.Bind(db, 1, []byte("second"), 2000))
	assert.Nil(t, r.Bind(db, 2, []byte("other"), 0))

	hash, err = r.HashOf(db, 1)
	assert.Nil(t, err)
	assert.Equal(t, []byte("second"), hash)
	deadline, found, err := r.DeadlineOf(db, 1)
	assert.Nil(t, err)
	assert.Equal(t, true, found)
	assert.Equal(t, petal.UnixTime(2000), deadline)

	// Zero is a valid deadline and must be told apart from a missing one.
	deadline, found, err = r.DeadlineOf(db, 2)
	assert.Nil(t, err)
	assert.Equal(t, true, found)
	assert.Equal(t, petal.UnixTime(0), deadline)

	hashes, err := r.Hashes(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32][]byte{1: []byte("second"), 2: []byte("other")}, hashes)
	deadlines, err := r.Deadlines(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]petal.UnixTime{1: 2000, 2: 0}, deadlines)
}

func TestSigningSessions(t *testing.T) {
	db := store.MemStore()
	s := NewSigningSessions()
	a := weavetest.RandomAddr(t)
	b := weavetest.RandomAddr(t)
	stranger := weavetest.RandomAddr(t)

	session, err := s.Session(db, 1)
	assert.Nil(t, err)
	assert.Nil(t, session)
	status, err := s.StatusOf(db, 1, a)
	assert.Nil(t, err)
	assert.Equal(t, StatusNotASigner, status)

	assert.IsErr(t, ErrEmptySignerRoster, s.Initialize(db, 1, nil))
	assert.IsErr(t, ErrNoSigningSession, s.Record(db, 1, a, StatusSigned))

	assert.Nil(t, s.Initialize(db, 1, []petal.Address{a, b}))
	for _, signer := range []petal.Address{a, b} {
		status, err := s.StatusOf(db, 1, signer)
		assert.Nil(t, err)
		assert.Equal(t, StatusWaiting, status)
	}
	status, err = s.StatusOf(db, 1, stranger)
	assert.Nil(t, err)
	assert.Equal(t, StatusNotASigner, status)

	assert.Nil(t, s.Record(db, 1, a, StatusRejected))
	// Record does not check transitions.
	assert.Nil(t, s.Record(db, 1, a, StatusSigned))
	assert.IsErr(t, ErrNotASigner, s.Record(db, 1, stranger, StatusSigned))

	all, err := s.Sessions(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]map[string]SignatureStatus{
		1: {a.String(): StatusSigned, b.String(): StatusWaiting},
	}, all)
}

func TestNonceTrackerLegacy(t *testing.T) {
	db := store.MemStore()
	n := NewNonceTracker()
	a := weavetest.RandomAddr(t)
	b := weavetest.RandomAddr(t)

	empty, err := n.IsEmpty(db)
	assert.Nil(t, err)
	assert.Equal(t, true, empty)

	// The very first entry of the whole tracker keeps the current value.
	next, err := n.Next(db, a, NonceLegacy)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), next)
	got, err := n.Bump(db, a, NonceLegacy)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), got)

	empty, err = n.IsEmpty(db)
	assert.Nil(t, err)
	assert.Equal(t, false, empty)

	// From now on every bump increments, also for a signer seen first.
	got, err = n.Bump(db, a, NonceLegacy)
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), got)
	got, err = n.Bump(db, b, NonceLegacy)
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), got)

	all, err := n.All(db)
	assert.Nil(t, err)
	assert.Equal(t, map[string]uint32{a.String(): 1, b.String(): 1}, all)
}

func TestNonceTrackerStrict(t *testing.T) {
	db := store.MemStore()
	n := NewNonceTracker()
	a := weavetest.RandomAddr(t)

	for want := uint32(1); want <= 3; want++ {
		next, err := n.Next(db, a, NonceStrict)
		assert.Nil(t, err)
		assert.Equal(t, want, next)
		got, err := n.Bump(db, a, NonceStrict)
		assert.Nil(t, err)
		assert.Equal(t, want, got)
	}
	val, err := n.Get(db, a)
	assert.Nil(t, err)
	assert.Equal(t, uint32(3), val)
}

func TestAdminStore(t *testing.T) {
	db := store.MemStore()
	s := NewAdminStore()
	admin := weavetest.RandomAddr(t)

	got, err := s.Admin(db)
	assert.Nil(t, err)
	assert.Nil(t, got)

	assert.Nil(t, s.SetAdmin(db, admin))
	assert.IsErr(t, ErrAlreadyInitialized, s.SetAdmin(db, weavetest.RandomAddr(t)))

	got, err = s.Admin(db)
	assert.Nil(t, err)
	assert.Equal(t, admin, got)
}
