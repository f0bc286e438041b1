package docsign

import (
	"encoding/json"
	"strings"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/gconf"
	"github.com/petaldocs/petal/orm"
)

// configPkg is the gconf package name of this extension.
const configPkg = "docsign"

const (
	defaultMaxSigners   = 100
	defaultMaxURILength = 2048
)

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if _, ok := NoncePolicy_name[int32(c.NoncePolicy)]; !ok {
		errs = errors.Append(errs, errors.Field("NoncePolicy", errors.ErrInput, "unknown policy %d", c.NoncePolicy))
	}
	return errs
}

func (c *Configuration) Copy() orm.CloneableData {
	return &Configuration{
		Metadata:     c.Metadata.Copy(),
		Owner:        c.Owner.Clone(),
		NoncePolicy:  c.NoncePolicy,
		MaxSigners:   c.MaxSigners,
		MaxURILength: c.MaxURILength,
	}
}

// withDefaults returns a copy of the configuration with every unset limit
// replaced by its default value. An unset nonce policy is the legacy one.
func (c Configuration) withDefaults() Configuration {
	if c.NoncePolicy == NoncePolicyUnspecified {
		c.NoncePolicy = NonceLegacy
	}
	if c.MaxSigners == 0 {
		c.MaxSigners = defaultMaxSigners
	}
	if c.MaxURILength == 0 {
		c.MaxURILength = defaultMaxURILength
	}
	return c
}

// DefaultConfiguration is used when no configuration was stored.
func DefaultConfiguration() Configuration {
	return Configuration{
		Metadata:    &petal.Metadata{Schema: 1},
		NoncePolicy: NonceLegacy,
	}.withDefaults()
}

// loadConfiguration returns the stored configuration, or the default one
// if none was saved yet.
func loadConfiguration(db petal.ReadOnlyKVStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, configPkg, &conf); {
	case err == nil:
		return conf.withDefaults(), nil
	case errors.ErrNotFound.Is(err):
		return DefaultConfiguration(), nil
	default:
		return Configuration{}, errors.Wrap(err, "load configuration")
	}
}

// MarshalJSON uses the short policy name, for example "STRICT".
func (p NoncePolicy) MarshalJSON() ([]byte, error) {
	name, ok := NoncePolicy_name[int32(p)]
	if !ok {
		return json.Marshal(int32(p))
	}
	return json.Marshal(strings.TrimPrefix(name, "NONCE_POLICY_"))
}

// UnmarshalJSON accepts the short policy name, the full enum name or the
// numeric value.
func (p *NoncePolicy) UnmarshalJSON(raw []byte) error {
	var num int32
	if err := json.Unmarshal(raw, &num); err == nil {
		if _, ok := NoncePolicy_name[num]; !ok {
			return errors.Wrapf(errors.ErrInput, "unknown nonce policy %d", num)
		}
		*p = NoncePolicy(num)
		return nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return errors.Wrapf(errors.ErrInput, "nonce policy: %s", err)
	}
	name = strings.ToUpper(name)
	if !strings.HasPrefix(name, "NONCE_POLICY_") {
		name = "NONCE_POLICY_" + name
	}
	val, ok := NoncePolicy_value[name]
	if !ok {
		return errors.Wrapf(errors.ErrInput, "unknown nonce policy %q", name)
	}
	*p = NoncePolicy(val)
	return nil
}

// MarshalJSON uses the short status name, for example "SIGNED".
func (s SignatureStatus) MarshalJSON() ([]byte, error) {
	name, ok := SignatureStatus_name[int32(s)]
	if !ok {
		return json.Marshal(int32(s))
	}
	return json.Marshal(strings.TrimPrefix(name, "SIGNATURE_STATUS_"))
}
