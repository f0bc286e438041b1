package docsign

import (
	"context"
	"strconv"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/gconf"
	"github.com/petaldocs/petal/orm"
	"github.com/petaldocs/petal/x"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	issueCost           = 100
	submitSignatureCost = 50
)

var (
	tagToken  = []byte("docsign/token")
	tagSigner = []byte("docsign/signer")
)

// RegisterQuery exposes every registry bucket to ABCI queries under its
// bucket name.
func RegisterQuery(qr petal.QueryRouter) {
	buckets := map[string]orm.Model{
		"owners":    &TokenOwner{},
		"uris":      &TokenURI{},
		"dochashes": &DocumentHash{},
		"deadlines": &DocumentDeadline{},
		"sessions":  &SigningSession{},
		"nonces":    &Nonce{},
		"admin":     &Admin{},
	}
	for name, model := range buckets {
		orm.NewModelBucket(name, model).Register(name, qr)
	}
}

// RegisterRoutes registers handlers for every document signing message.
func RegisterRoutes(r petal.Registry, auth x.Authenticator, w *DocumentWorkflow) {
	r.Handle(&InitMsg{}, &initHandler{auth: auth, workflow: w})
	r.Handle(&IssueMsg{}, &issueHandler{auth: auth, workflow: w})
	r.Handle(&SubmitSignatureMsg{}, &submitSignatureHandler{auth: auth, workflow: w})
	r.Handle(&UpdateConfigurationMsg{}, gconf.NewUpdateConfigurationHandler(configPkg, &Configuration{}, auth, w.Admin))
}

type initHandler struct {
	auth     x.Authenticator
	workflow *DocumentWorkflow
}

var _ petal.Handler = (*initHandler)(nil)

func (h *initHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &petal.CheckResult{}, nil
}

func (h *initHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.workflow.Init(db, msg.Admin); err != nil {
		return nil, err
	}
	info.Logger().Info("docsign initialized", "admin", msg.Admin)
	return &petal.DeliverResult{}, nil
}

func (h *initHandler) validate(ctx context.Context, db petal.KVStore, tx petal.Tx) (*InitMsg, error) {
	var msg InitMsg
	if err := petal.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	switch admin, err := h.workflow.Admin(db); {
	case err != nil:
		return nil, err
	case admin != nil:
		return nil, errors.Wrap(ErrAlreadyInitialized, "admin already set")
	}
	return &msg, nil
}

type issueHandler struct {
	auth     x.Authenticator
	workflow *DocumentWorkflow
}

var _ petal.Handler = (*issueHandler)(nil)

// Check runs the whole issue procedure on the check store so that every
// failure is reported before the transaction is included in a block.
func (h *issueHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	msg, _, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.workflow.Issue(db, msg); err != nil {
		return nil, err
	}
	return &petal.CheckResult{GasAllocated: issueCost}, nil
}

func (h *issueHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	msg, issuer, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	id, err := h.workflow.Issue(db, msg)
	if err != nil {
		return nil, err
	}
	info.Logger().Info("document issued",
		"token_id", id,
		"issuer", issuer,
		"owner", msg.Owner,
		"signers", len(msg.Signers))
	return &petal.DeliverResult{
		Data: TokenKey(id),
		Tags: []common.KVPair{
			{Key: tagToken, Value: []byte(strconv.FormatUint(uint64(id), 10))},
		},
	}, nil
}

// validate returns the message and the address of the issuer, which is the
// main signer of the transaction.
func (h *issueHandler) validate(ctx context.Context, tx petal.Tx) (*IssueMsg, petal.Address, error) {
	var msg IssueMsg
	if err := petal.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	issuer := x.MainSigner(ctx, h.auth)
	if issuer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "issuer signature required")
	}
	return &msg, issuer.Address(), nil
}

type submitSignatureHandler struct {
	auth     x.Authenticator
	workflow *DocumentWorkflow
}

var _ petal.Handler = (*submitSignatureHandler)(nil)

func (h *submitSignatureHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := h.workflow.SubmitSignature(info, db, msg); err != nil {
		return nil, err
	}
	return &petal.CheckResult{GasAllocated: submitSignatureCost}, nil
}

func (h *submitSignatureHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	msg, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	p := msg.Payload
	if err := h.workflow.SubmitSignature(info, db, msg); err != nil {
		info.Logger().Debug("signature refused",
			"token_id", p.TokenID,
			"signer", p.Signer,
			"err", err)
		return nil, err
	}
	info.Logger().Info("signature recorded",
		"token_id", p.TokenID,
		"signer", p.Signer,
		"status", p.Status)
	return &petal.DeliverResult{
		Tags: []common.KVPair{
			{Key: tagToken, Value: []byte(strconv.FormatUint(uint64(p.TokenID), 10))},
			{Key: tagSigner, Value: []byte(p.Signer.String())},
		},
	}, nil
}

func (h *submitSignatureHandler) validate(ctx context.Context, tx petal.Tx) (*SubmitSignatureMsg, error) {
	var msg SubmitSignatureMsg
	if err := petal.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Payload.Signer) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s did not sign the transaction", msg.Payload.Signer)
	}
	return &msg, nil
}
