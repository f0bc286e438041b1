package petal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/petaldocs/petal/crypto/bech32"
	"github.com/petaldocs/petal/errors"
)

// AddressLength is the size of every address. It may only be changed in
// init, before any store is written.
var AddressLength = 20

// Address is the truncated sha256 digest of a Condition. Token owners and
// document signers are addresses.
type Address []byte

// NewAddress hashes data into an address. Nil data gives a nil address.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return Address(sum[:AddressLength])
}

// Equals compares two addresses byte by byte.
func (a Address) Equals(other Address) bool {
	return bytes.Equal(a, other)
}

// Clone returns a copy that shares no memory with a.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address(nil), a...)
}

// Validate fails unless the address has AddressLength bytes.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.Wrapf(errors.ErrInput, "address: %v", a)
	}
	return nil
}

// String returns upper case hex, or "(nil)" for an empty address.
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Bech32 encodes the address with the given human readable part.
func (a Address) Bech32(hrp string) (string, error) {
	raw, err := bech32.Encode(hrp, a)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// MarshalJSON writes upper case hex.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

// UnmarshalJSON accepts every form ParseAddress does.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	addr, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// ParseAddress decodes an address written as plain hex or with one of the
// "hex:", "cond:" or "bech32:" prefixes. An empty value decodes into a nil
// address.
func ParseAddress(s string) (Address, error) {
	format, value := "hex", s
	if i := strings.IndexByte(s, ':'); i >= 0 {
		format, value = s[:i], s[i+1:]
	}
	if value == "" {
		return nil, nil
	}

	var addr Address
	switch format {
	case "hex":
		raw, err := hex.DecodeString(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "cannot decode hex: %s", err)
		}
		addr = raw
	case "bech32":
		_, raw, err := bech32.Decode(value)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInput, "deserialize bech32: %s", err)
		}
		addr = raw
	case "cond":
		var c Condition
		if err := c.parseString(value); err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c.Address(), nil
	default:
		return nil, errors.Wrapf(errors.ErrType, "unknown format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return addr, nil
}
