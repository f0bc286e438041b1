package docsign

import (
	"encoding/hex"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/gconf"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file.
type Initializer struct {
	// Workflow is used to apply the genesis. When nil, a workflow over the
	// default registries is used.
	Workflow *DocumentWorkflow
}

var _ petal.Initializer = (*Initializer)(nil)

type genesisToken struct {
	ID          uint32          `json:"id"`
	Owner       petal.Address   `json:"owner"`
	URI         string          `json:"uri"`
	Signers     []petal.Address `json:"signers"`
	ContentHash string          `json:"content_hash"`
	Deadline    petal.UnixTime  `json:"deadline"`
}

// FromGenesis stores the configuration, the administrator and every
// document declared in the genesis. Documents are issued through the
// workflow so they obey the same rules as issue transactions.
func (i *Initializer) FromGenesis(opts petal.Options, db petal.KVStore) error {
	switch err := gconf.InitConfig(db, opts, configPkg, &Configuration{}); {
	case err == nil, errors.ErrNotFound.Is(err):
	default:
		return errors.Wrap(err, "init config")
	}

	var state struct {
		Admin  petal.Address  `json:"admin"`
		Tokens []genesisToken `json:"tokens"`
	}
	if err := opts.ReadOptions("docsign", &state); err != nil {
		return err
	}

	w := i.Workflow
	if w == nil {
		w = NewDocumentWorkflow(DefaultRegistries(), Ed25519Verifier{})
	}
	if state.Admin != nil {
		if err := w.Init(db, state.Admin); err != nil {
			return errors.Wrap(err, "init admin")
		}
	}
	for n, t := range state.Tokens {
		hash, err := hex.DecodeString(t.ContentHash)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "token %d: content hash: %s", t.ID, err)
		}
		msg := &IssueMsg{
			Metadata:    newMetadata(),
			Owner:       t.Owner,
			TokenID:     t.ID,
			URI:         t.URI,
			Signers:     t.Signers,
			ContentHash: hash,
			Deadline:    t.Deadline,
		}
		if err := msg.Validate(); err != nil {
			return errors.Wrapf(err, "token #%d", n)
		}
		if _, err := w.Issue(db, msg); err != nil {
			return errors.Wrapf(err, "token #%d", n)
		}
	}
	return nil
}
