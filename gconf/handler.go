package gconf

import (
	"context"
	"reflect"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/x"
)

// OwnedConfig is a configuration with an owner. Only the owner can update
// a stored configuration.
type OwnedConfig interface {
	Unmarshaler
	ValidMarshaler
	GetOwner() petal.Address
}

// UpdateConfigurationHandler applies configuration patches. The message
// must have a Patch field holding the configuration type of the package.
type UpdateConfigurationHandler struct {
	pkg       string
	config    OwnedConfig
	auth      x.Authenticator
	initAdmin func(petal.ReadOnlyKVStore) (petal.Address, error)
}

var _ petal.Handler = (*UpdateConfigurationHandler)(nil)

// NewUpdateConfigurationHandler returns a handler patching the configuration
// of pkg. config is only used as a scratch value of the right type.
//
// A stored configuration can be changed only by its owner. While nothing is
// stored yet, or the stored configuration has no owner, initAdmin, when
// given, returns the address allowed to write the configuration. Such a
// write must set the owner.
func NewUpdateConfigurationHandler(
	pkg string,
	config OwnedConfig,
	auth x.Authenticator,
	initAdmin func(petal.ReadOnlyKVStore) (petal.Address, error),
) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:       pkg,
		config:    config,
		auth:      auth,
		initAdmin: initAdmin,
	}
}

func (h UpdateConfigurationHandler) Check(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.CheckResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &petal.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx context.Context, info petal.BlockInfo, db petal.KVStore, tx petal.Tx) (*petal.DeliverResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	info.Logger().Info("configuration updated", "package", h.pkg)
	return &petal.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) apply(ctx context.Context, db petal.KVStore, tx petal.Tx) error {
	ownerless, err := h.authorize(ctx, db)
	if err != nil {
		return err
	}
	payload, err := patchPayload(tx)
	if err != nil {
		return errors.Wrap(err, "patch payload")
	}
	if err := patch(h.config, payload); err != nil {
		return err
	}
	if ownerless && h.config.GetOwner() == nil {
		return errors.Field("Owner", errors.ErrEmpty, "configuration owner required")
	}
	if err := Save(db, h.pkg, h.config); err != nil {
		return errors.Wrap(err, "save patched configuration")
	}
	return nil
}

// authorize loads the current configuration into h.config and ensures the
// transaction is signed by whoever may change it. A configuration that is
// not stored or has no owner can only be written by the initial admin, and
// ownerless is true then.
func (h UpdateConfigurationHandler) authorize(ctx context.Context, db petal.KVStore) (ownerless bool, err error) {
	// Unmarshal merges, so a value left by the previous call must be
	// cleared first.
	cfg := reflect.ValueOf(h.config).Elem()
	cfg.Set(reflect.Zero(cfg.Type()))

	switch err := Load(db, h.pkg, h.config); {
	case err == nil:
		if owner := h.config.GetOwner(); owner != nil {
			if !h.auth.HasAddress(ctx, owner) {
				return false, errors.Wrap(errors.ErrUnauthorized, "owner signature required")
			}
			return false, nil
		}
	case !errors.ErrNotFound.Is(err):
		return false, errors.Wrap(err, "load configuration")
	}

	if h.initAdmin == nil {
		return true, errors.Wrap(errors.ErrUnauthorized, "configuration has no owner")
	}
	admin, err := h.initAdmin(db)
	if err != nil {
		return true, errors.Wrap(err, "initial admin")
	}
	if admin == nil || !h.auth.HasAddress(ctx, admin) {
		return true, errors.Wrap(errors.ErrUnauthorized, "initial admin signature required")
	}
	return true, nil
}

// patch copies every non zero field of payload into config.
func patch(config, payload OwnedConfig) error {
	if reflect.TypeOf(payload) != reflect.TypeOf(config) {
		return errors.Wrapf(errors.ErrInput, "patch of type %T cannot update %T", payload, config)
	}
	dst := reflect.ValueOf(config).Elem()
	src := reflect.ValueOf(payload).Elem()
	for i := 0; i < dst.NumField(); i++ {
		if f := src.Field(i); !isZero(f) {
			dst.Field(i).Set(f)
		}
	}
	return nil
}

func isZero(val reflect.Value) bool {
	return reflect.DeepEqual(val.Interface(), reflect.Zero(val.Type()).Interface())
}

// patchPayload returns the validated value of the Patch field of the
// transaction message.
func patchPayload(tx petal.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	val := reflect.ValueOf(msg)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "unsupported message %T", msg)
	}
	field := val.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInput, "message %T has no Patch field", msg)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrEmpty, "patch required")
	}
	payload, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "patch of type %T is not a configuration", field.Interface())
	}
	return payload, nil
}
