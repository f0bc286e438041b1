package docsign

import (
	"bytes"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/x/utils"
)

// Registries groups the storage used by the DocumentWorkflow.
type Registries struct {
	Tokens    TokenRegistry
	Documents DocumentRegistry
	Sessions  SigningSessions
	Nonces    NonceTracker
	Admin     AdminStore
}

// DefaultRegistries returns registries backed by the extension buckets.
func DefaultRegistries() Registries {
	return Registries{
		Tokens:    NewTokenRegistry(),
		Documents: NewDocumentRegistry(),
		Sessions:  NewSigningSessions(),
		Nonces:    NewNonceTracker(),
		Admin:     NewAdminStore(),
	}
}

// DocumentWorkflow issues documents and records signer decisions. Every
// operation performs all of its checks before the first write, and writes
// through a cache wrap, so a failed operation changes nothing.
type DocumentWorkflow struct {
	reg      Registries
	verifier SignatureVerifier
}

// NewDocumentWorkflow returns a workflow operating on given registries.
func NewDocumentWorkflow(reg Registries, verifier SignatureVerifier) *DocumentWorkflow {
	return &DocumentWorkflow{reg: reg, verifier: verifier}
}

// Init assigns the administrator. It can succeed only once.
func (w *DocumentWorkflow) Init(db petal.KVStore, admin petal.Address) error {
	if err := admin.Validate(); err != nil {
		return errors.Wrap(err, "admin")
	}
	return w.reg.Admin.SetAdmin(db, admin)
}

// Issue mints a token, binds the document to it and opens a signing
// session with every signer waiting. The token id is returned.
func (w *DocumentWorkflow) Issue(db petal.KVStore, msg *IssueMsg) (uint32, error) {
	if len(msg.Signers) == 0 {
		return 0, errors.Wrapf(ErrEmptySignerRoster, "token %d", msg.TokenID)
	}
	switch exists, err := w.reg.Tokens.Exists(db, msg.TokenID); {
	case err != nil:
		return 0, errors.Wrap(err, "token lookup")
	case exists:
		return 0, errors.Wrapf(ErrTokenAlreadyMinted, "token %d", msg.TokenID)
	}

	conf, err := loadConfiguration(db)
	if err != nil {
		return 0, err
	}
	if n := uint32(len(msg.Signers)); n > conf.MaxSigners {
		return 0, errors.Wrapf(errors.ErrInput, "%d signers, at most %d allowed", n, conf.MaxSigners)
	}
	if n := uint32(len(msg.URI)); n > conf.MaxURILength {
		return 0, errors.Wrapf(errors.ErrInput, "uri of %d characters, at most %d allowed", n, conf.MaxURILength)
	}

	err = utils.Atomic(db, func(db petal.KVStore) error {
		if err := w.reg.Tokens.Create(db, msg.TokenID, msg.Owner, msg.URI); err != nil {
			return err
		}
		if err := w.reg.Documents.Bind(db, msg.TokenID, msg.ContentHash, msg.Deadline); err != nil {
			return err
		}
		return w.reg.Sessions.Initialize(db, msg.TokenID, msg.Signers)
	})
	if err != nil {
		return 0, err
	}
	return msg.TokenID, nil
}

// SubmitSignature records the decision of a roster member. The signer is
// payload.Signer; the caller must have authenticated it. The checks run in
// a fixed order and the first failing one is returned.
//
// The nonce of the signer is bumped according to the configured policy.
// Under the strict policy payload.Nonce must be the next nonce value.
func (w *DocumentWorkflow) SubmitSignature(info petal.BlockInfo, db petal.KVStore, msg *SubmitSignatureMsg) error {
	p := msg.Payload
	if p == nil {
		return errors.Wrap(errors.ErrEmpty, "payload")
	}

	switch exists, err := w.reg.Tokens.Exists(db, p.TokenID); {
	case err != nil:
		return errors.Wrap(err, "token lookup")
	case !exists:
		return errors.Wrapf(ErrUnknownToken, "token %d", p.TokenID)
	}

	session, err := w.reg.Sessions.Session(db, p.TokenID)
	if err != nil {
		return errors.Wrap(err, "session lookup")
	}
	if session == nil || len(session.Roster) == 0 {
		return errors.Wrapf(ErrNoSigningSession, "token %d", p.TokenID)
	}

	status, found := session.lookup(p.Signer)
	switch {
	case !found:
		return errors.Wrapf(ErrNotASigner, "%s for token %d", p.Signer, p.TokenID)
	case status == StatusSigned:
		return errors.Wrapf(ErrAlreadySigned, "%s for token %d", p.Signer, p.TokenID)
	}

	hash, err := w.reg.Documents.HashOf(db, p.TokenID)
	if err != nil {
		return errors.Wrap(err, "hash lookup")
	}
	if hash == nil {
		return errors.Wrapf(ErrUnknownDocumentHash, "token %d", p.TokenID)
	}
	if !bytes.Equal(hash, p.DocumentHash) {
		return errors.Wrapf(ErrHashMismatch, "token %d", p.TokenID)
	}

	deadline, found, err := w.reg.Documents.DeadlineOf(db, p.TokenID)
	if err != nil {
		return errors.Wrap(err, "deadline lookup")
	}
	if !found {
		return errors.Wrapf(ErrUnknownDeadline, "token %d", p.TokenID)
	}
	if info.IsPassed(deadline) {
		return errors.Wrapf(ErrDeadlinePassed, "deadline %s", deadline)
	}
	if info.IsPassed(p.Deadline) {
		return errors.Wrapf(ErrSignatureExpired, "deadline %s", p.Deadline)
	}

	if err := w.verifier.Verify(p.Signer, msg.PublicKey, msg.Message, msg.Signature); err != nil {
		if ErrInvalidSignature.Is(err) {
			return err
		}
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}

	conf, err := loadConfiguration(db)
	if err != nil {
		return err
	}
	next, err := w.reg.Nonces.Next(db, p.Signer, conf.NoncePolicy)
	if err != nil {
		return errors.Wrap(err, "nonce")
	}
	if conf.NoncePolicy == NonceStrict && p.Nonce != next {
		return errors.Wrapf(ErrInvalidNonce, "want %d, got %d", next, p.Nonce)
	}

	return utils.Atomic(db, func(db petal.KVStore) error {
		if _, err := w.reg.Nonces.Bump(db, p.Signer, conf.NoncePolicy); err != nil {
			return err
		}
		return w.reg.Sessions.Record(db, p.TokenID, p.Signer, p.Status)
	})
}

// Admin returns the administrator address or nil if not initialized.
func (w *DocumentWorkflow) Admin(db petal.ReadOnlyKVStore) (petal.Address, error) {
	return w.reg.Admin.Admin(db)
}

// Owners returns the owner of every token.
func (w *DocumentWorkflow) Owners(db petal.ReadOnlyKVStore) (map[uint32]petal.Address, error) {
	return w.reg.Tokens.Owners(db)
}

// TokenURIs returns the metadata URI of every token.
func (w *DocumentWorkflow) TokenURIs(db petal.ReadOnlyKVStore) (map[uint32]string, error) {
	return w.reg.Tokens.URIs(db)
}

// DocumentHashes returns the content hash of every document.
func (w *DocumentWorkflow) DocumentHashes(db petal.ReadOnlyKVStore) (map[uint32][]byte, error) {
	return w.reg.Documents.Hashes(db)
}

// Deadlines returns the signing deadline of every document.
func (w *DocumentWorkflow) Deadlines(db petal.ReadOnlyKVStore) (map[uint32]petal.UnixTime, error) {
	return w.reg.Documents.Deadlines(db)
}

// Signatures returns the roster of every document keyed by signer address.
func (w *DocumentWorkflow) Signatures(db petal.ReadOnlyKVStore) (map[uint32]map[string]SignatureStatus, error) {
	return w.reg.Sessions.Sessions(db)
}

// Nonces returns the nonce of every signer keyed by signer address.
func (w *DocumentWorkflow) Nonces(db petal.ReadOnlyKVStore) (map[string]uint32, error) {
	return w.reg.Nonces.All(db)
}
