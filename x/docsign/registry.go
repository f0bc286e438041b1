package docsign

import (
	"math"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/orm"
)

// Lookups of missing keys in every registry return the zero value and no
// error. Callers decide whether absence is a failure.

// TokenRegistry tracks the owner and the metadata URI of every token.
type TokenRegistry interface {
	// Create mints a new token. It fails with ErrTokenAlreadyMinted if
	// the id is taken.
	Create(db petal.KVStore, id uint32, owner petal.Address, uri string) error
	Exists(db petal.ReadOnlyKVStore, id uint32) (bool, error)
	OwnerOf(db petal.ReadOnlyKVStore, id uint32) (petal.Address, error)
	URIOf(db petal.ReadOnlyKVStore, id uint32) (string, error)
	Owners(db petal.ReadOnlyKVStore) (map[uint32]petal.Address, error)
	URIs(db petal.ReadOnlyKVStore) (map[uint32]string, error)
}

// DocumentRegistry binds a content hash and a signing deadline to a token.
type DocumentRegistry interface {
	// Bind stores the document of a token, overwriting any previous one.
	Bind(db petal.KVStore, id uint32, hash []byte, deadline petal.UnixTime) error
	HashOf(db petal.ReadOnlyKVStore, id uint32) ([]byte, error)
	// DeadlineOf returns false if no deadline was bound to the token.
	DeadlineOf(db petal.ReadOnlyKVStore, id uint32) (petal.UnixTime, bool, error)
	Hashes(db petal.ReadOnlyKVStore) (map[uint32][]byte, error)
	Deadlines(db petal.ReadOnlyKVStore) (map[uint32]petal.UnixTime, error)
}

// SigningSessions holds the roster of every document.
type SigningSessions interface {
	// Initialize stores a roster with every signer waiting. It fails with
	// ErrEmptySignerRoster if no signer is given.
	Initialize(db petal.KVStore, id uint32, signers []petal.Address) error
	// Session returns nil if the token has no roster.
	Session(db petal.ReadOnlyKVStore, id uint32) (*SigningSession, error)
	StatusOf(db petal.ReadOnlyKVStore, id uint32, signer petal.Address) (SignatureStatus, error)
	// Record overwrites the status of a roster member. Transition rules
	// are not checked.
	Record(db petal.KVStore, id uint32, signer petal.Address, status SignatureStatus) error
	// Sessions returns every roster, keyed by token id and signer address.
	Sessions(db petal.ReadOnlyKVStore) (map[uint32]map[string]SignatureStatus, error)
}

// NonceTracker counts successful submissions of every signer.
type NonceTracker interface {
	Get(db petal.ReadOnlyKVStore, signer petal.Address) (uint32, error)
	// Next returns the value Bump would store, without writing it.
	Next(db petal.ReadOnlyKVStore, signer petal.Address, policy NoncePolicy) (uint32, error)
	// Bump stores and returns the next nonce of given signer.
	Bump(db petal.KVStore, signer petal.Address, policy NoncePolicy) (uint32, error)
	// IsEmpty returns true if no signer has a nonce yet.
	IsEmpty(db petal.ReadOnlyKVStore) (bool, error)
	// All returns every nonce keyed by the signer address.
	All(db petal.ReadOnlyKVStore) (map[string]uint32, error)
}

// AdminStore holds the single administrator address.
type AdminStore interface {
	// Admin returns nil if no administrator was set.
	Admin(db petal.ReadOnlyKVStore) (petal.Address, error)
	// SetAdmin fails with ErrAlreadyInitialized if an administrator exists.
	SetAdmin(db petal.KVStore, admin petal.Address) error
}

func newMetadata() *petal.Metadata {
	return &petal.Metadata{Schema: 1}
}

// one loads a model and reports whether it exists.
func one(b orm.ModelBucket, db petal.ReadOnlyKVStore, key []byte, dest orm.Model) (bool, error) {
	switch err := b.One(db, key, dest); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

// visitTokens calls fn for every entity of a token keyed bucket.
func visitTokens(b orm.ModelBucket, db petal.ReadOnlyKVStore, fn func(id uint32, m orm.Model) error) error {
	return b.Visit(db, func(key []byte, m orm.Model) error {
		id, err := TokenIDFromKey(key)
		if err != nil {
			return errors.Wrap(err, "corrupted token key")
		}
		return fn(id, m)
	})
}

// --------------------------------------------------------- tokens

type tokenRegistry struct {
	owners orm.ModelBucket
	uris   orm.ModelBucket
}

var _ TokenRegistry = (*tokenRegistry)(nil)

// NewTokenRegistry returns a TokenRegistry backed by the "owners" and
// "uris" buckets.
func NewTokenRegistry() TokenRegistry {
	return &tokenRegistry{
		owners: orm.NewModelBucket("owners", &TokenOwner{}),
		uris:   orm.NewModelBucket("uris", &TokenURI{}),
	}
}

func (r *tokenRegistry) Create(db petal.KVStore, id uint32, owner petal.Address, uri string) error {
	exists, err := r.Exists(db, id)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrTokenAlreadyMinted, "token %d", id)
	}
	key := TokenKey(id)
	if err := r.owners.Put(db, key, &TokenOwner{Metadata: newMetadata(), Owner: owner}); err != nil {
		return errors.Wrap(err, "cannot store owner")
	}
	if err := r.uris.Put(db, key, &TokenURI{Metadata: newMetadata(), URI: uri}); err != nil {
		return errors.Wrap(err, "cannot store uri")
	}
	return nil
}

func (r *tokenRegistry) Exists(db petal.ReadOnlyKVStore, id uint32) (bool, error) {
	switch err := r.owners.Has(db, TokenKey(id)); {
	case err == nil:
		return true, nil
	case errors.ErrNotFound.Is(err):
		return false, nil
	default:
		return false, err
	}
}

func (r *tokenRegistry) OwnerOf(db petal.ReadOnlyKVStore, id uint32) (petal.Address, error) {
	var o TokenOwner
	if _, err := one(r.owners, db, TokenKey(id), &o); err != nil {
		return nil, err
	}
	return o.Owner, nil
}

func (r *tokenRegistry) URIOf(db petal.ReadOnlyKVStore, id uint32) (string, error) {
	var u TokenURI
	if _, err := one(r.uris, db, TokenKey(id), &u); err != nil {
		return "", err
	}
	return u.URI, nil
}

func (r *tokenRegistry) Owners(db petal.ReadOnlyKVStore) (map[uint32]petal.Address, error) {
	res := make(map[uint32]petal.Address)
	err := visitTokens(r.owners, db, func(id uint32, m orm.Model) error {
		res[id] = m.(*TokenOwner).Owner
		return nil
	})
	return res, err
}

func (r *tokenRegistry) URIs(db petal.ReadOnlyKVStore) (map[uint32]string, error) {
	res := make(map[uint32]string)
	err := visitTokens(r.uris, db, func(id uint32, m orm.Model) error {
		res[id] = m.(*TokenURI).URI
		return nil
	})
	return res, err
}

// --------------------------------------------------------- documents

type documentRegistry struct {
	hashes    orm.ModelBucket
	deadlines orm.ModelBucket
}

var _ DocumentRegistry = (*documentRegistry)(nil)

// NewDocumentRegistry returns a DocumentRegistry backed by the "dochashes"
// and "deadlines" buckets.
func NewDocumentRegistry() DocumentRegistry {
	return &documentRegistry{
		hashes:    orm.NewModelBucket("dochashes", &DocumentHash{}),
		deadlines: orm.NewModelBucket("deadlines", &DocumentDeadline{}),
	}
}

func (r *documentRegistry) Bind(db petal.KVStore, id uint32, hash []byte, deadline petal.UnixTime) error {
	key := TokenKey(id)
	if err := r.hashes.Put(db, key, &DocumentHash{Metadata: newMetadata(), Hash: hash}); err != nil {
		return errors.Wrap(err, "cannot store document hash")
	}
	if err := r.deadlines.Put(db, key, &DocumentDeadline{Metadata: newMetadata(), Deadline: deadline}); err != nil {
		return errors.Wrap(err, "cannot store deadline")
	}
	return nil
}

func (r *documentRegistry) HashOf(db petal.ReadOnlyKVStore, id uint32) ([]byte, error) {
	var h DocumentHash
	if _, err := one(r.hashes, db, TokenKey(id), &h); err != nil {
		return nil, err
	}
	return h.Hash, nil
}

func (r *documentRegistry) DeadlineOf(db petal.ReadOnlyKVStore, id uint32) (petal.UnixTime, bool, error) {
	var d DocumentDeadline
	found, err := one(r.deadlines, db, TokenKey(id), &d)
	return d.Deadline, found, err
}

func (r *documentRegistry) Hashes(db petal.ReadOnlyKVStore) (map[uint32][]byte, error) {
	res := make(map[uint32][]byte)
	err := visitTokens(r.hashes, db, func(id uint32, m orm.Model) error {
		res[id] = m.(*DocumentHash).Hash
		return nil
	})
	return res, err
}

func (r *documentRegistry) Deadlines(db petal.ReadOnlyKVStore) (map[uint32]petal.UnixTime, error) {
	res := make(map[uint32]petal.UnixTime)
	err := visitTokens(r.deadlines, db, func(id uint32, m orm.Model) error {
		res[id] = m.(*DocumentDeadline).Deadline
		return nil
	})
	return res, err
}

// --------------------------------------------------------- sessions

type signingSessions struct {
	b orm.ModelBucket
}

var _ SigningSessions = (*signingSessions)(nil)

// NewSigningSessions returns SigningSessions backed by the "sessions"
// bucket.
func NewSigningSessions() SigningSessions {
	return &signingSessions{
		b: orm.NewModelBucket("sessions", &SigningSession{}),
	}
}

func (s *signingSessions) Initialize(db petal.KVStore, id uint32, signers []petal.Address) error {
	if len(signers) == 0 {
		return errors.Wrapf(ErrEmptySignerRoster, "token %d", id)
	}
	session := &SigningSession{
		Metadata: newMetadata(),
		Roster:   make([]*RosterEntry, len(signers)),
	}
	for i, signer := range signers {
		session.Roster[i] = &RosterEntry{Signer: signer, Status: StatusWaiting}
	}
	if err := s.b.Put(db, TokenKey(id), session); err != nil {
		return errors.Wrap(err, "cannot store signing session")
	}
	return nil
}

func (s *signingSessions) Session(db petal.ReadOnlyKVStore, id uint32) (*SigningSession, error) {
	var session SigningSession
	found, err := one(s.b, db, TokenKey(id), &session)
	if err != nil || !found {
		return nil, err
	}
	return &session, nil
}

func (s *signingSessions) StatusOf(db petal.ReadOnlyKVStore, id uint32, signer petal.Address) (SignatureStatus, error) {
	session, err := s.Session(db, id)
	if err != nil || session == nil {
		return StatusNotASigner, err
	}
	return session.StatusOf(signer), nil
}

func (s *signingSessions) Record(db petal.KVStore, id uint32, signer petal.Address, status SignatureStatus) error {
	session, err := s.Session(db, id)
	if err != nil {
		return err
	}
	if session == nil {
		return errors.Wrapf(ErrNoSigningSession, "token %d", id)
	}
	if err := session.record(signer, status); err != nil {
		return err
	}
	if err := s.b.Put(db, TokenKey(id), session); err != nil {
		return errors.Wrap(err, "cannot store signing session")
	}
	return nil
}

func (s *signingSessions) Sessions(db petal.ReadOnlyKVStore) (map[uint32]map[string]SignatureStatus, error) {
	res := make(map[uint32]map[string]SignatureStatus)
	err := visitTokens(s.b, db, func(id uint32, m orm.Model) error {
		res[id] = m.(*SigningSession).Statuses()
		return nil
	})
	return res, err
}

// --------------------------------------------------------- nonces

type nonceTracker struct {
	b orm.ModelBucket
}

var _ NonceTracker = (*nonceTracker)(nil)

// NewNonceTracker returns a NonceTracker backed by the "nonces" bucket.
func NewNonceTracker() NonceTracker {
	return &nonceTracker{
		b: orm.NewModelBucket("nonces", &Nonce{}),
	}
}

func (n *nonceTracker) Get(db petal.ReadOnlyKVStore, signer petal.Address) (uint32, error) {
	var nonce Nonce
	if _, err := one(n.b, db, signer, &nonce); err != nil {
		return 0, err
	}
	return nonce.Value, nil
}

// Next implements both policies. The legacy policy keeps the current value
// when the tracker holds no entry for any signer at all. The strict policy
// always increments. An unspecified policy behaves as the legacy one.
func (n *nonceTracker) Next(db petal.ReadOnlyKVStore, signer petal.Address, policy NoncePolicy) (uint32, error) {
	last, err := n.Get(db, signer)
	if err != nil {
		return 0, err
	}
	if policy != NonceStrict {
		empty, err := n.IsEmpty(db)
		if err != nil {
			return 0, err
		}
		if empty {
			return last, nil
		}
	}
	if last == math.MaxUint32 {
		return 0, errors.Wrapf(errors.ErrOverflow, "nonce of %s", signer)
	}
	return last + 1, nil
}

func (n *nonceTracker) Bump(db petal.KVStore, signer petal.Address, policy NoncePolicy) (uint32, error) {
	next, err := n.Next(db, signer, policy)
	if err != nil {
		return 0, err
	}
	if err := n.b.Put(db, signer, &Nonce{Metadata: newMetadata(), Value: next}); err != nil {
		return 0, errors.Wrap(err, "cannot store nonce")
	}
	return next, nil
}

// errStop ends a bucket visit early. Visit returns it unwrapped.
type errStop struct{}

func (errStop) Error() string { return "stop" }

func (n *nonceTracker) IsEmpty(db petal.ReadOnlyKVStore) (bool, error) {
	err := n.b.Visit(db, func([]byte, orm.Model) error {
		return errStop{}
	})
	switch err.(type) {
	case nil:
		return true, nil
	case errStop:
		return false, nil
	default:
		return false, err
	}
}

func (n *nonceTracker) All(db petal.ReadOnlyKVStore) (map[string]uint32, error) {
	res := make(map[string]uint32)
	err := n.b.Visit(db, func(key []byte, m orm.Model) error {
		res[petal.Address(key).String()] = m.(*Nonce).Value
		return nil
	})
	return res, err
}

// --------------------------------------------------------- admin

var adminKey = []byte("admin")

type adminStore struct {
	b orm.ModelBucket
}

var _ AdminStore = (*adminStore)(nil)

// NewAdminStore returns an AdminStore backed by the "admin" bucket.
func NewAdminStore() AdminStore {
	return &adminStore{
		b: orm.NewModelBucket("admin", &Admin{}),
	}
}

func (a *adminStore) Admin(db petal.ReadOnlyKVStore) (petal.Address, error) {
	var admin Admin
	if _, err := one(a.b, db, adminKey, &admin); err != nil {
		return nil, err
	}
	return admin.Address, nil
}

func (a *adminStore) SetAdmin(db petal.KVStore, admin petal.Address) error {
	switch err := a.b.Has(db, adminKey); {
	case err == nil:
		return errors.Wrap(ErrAlreadyInitialized, "admin already set")
	case !errors.ErrNotFound.Is(err):
		return err
	}
	if err := a.b.Put(db, adminKey, &Admin{Metadata: newMetadata(), Address: admin}); err != nil {
		return errors.Wrap(err, "cannot store admin")
	}
	return nil
}
