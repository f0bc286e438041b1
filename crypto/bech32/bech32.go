// Package bech32 converts addresses to and from the checksummed bech32
// text form, for example petal1qy352euf40x77qfrg4ncn27dauqjx3t875v6m5.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/petaldocs/petal/errors"
)

// Encode returns the bech32 text of data under the human readable part hrp.
func Encode(hrp string, data []byte) ([]byte, error) {
	groups, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	text, err := bech32.Encode(hrp, groups)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "bech32 encode: %s", err)
	}
	return []byte(text), nil
}

// Decode verifies the checksum of text and returns its human readable part
// and data. Every failure is an errors.ErrInput.
func Decode(text string) (hrp string, data []byte, err error) {
	hrp, groups, err := bech32.Decode(text)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32 decode: %s", err)
	}
	if data, err = bech32.ConvertBits(groups, 5, 8, false); err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "convert bits: %s", err)
	}
	return hrp, data, nil
}
