package petal_test

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressPrinting(t *testing.T) {
	Convey("hexadecimal address printing", t, func() {
		addr := petal.NewAddress([]byte("ABCD123456LHB"))

		So(addr.String(), ShouldEqual, fmt.Sprintf("%X", []byte(addr)))
		So(petal.Address(nil).String(), ShouldEqual, "(nil)")
	})

	Convey("condition printing keeps the prefix readable", t, func() {
		cond := petal.NewCondition("sigs", "ed25519", []byte{0xAB, 0xCD})

		So(cond.String(), ShouldEqual, "sigs/ed25519/ABCD")
	})
}

func TestAddressUnmarshalJSON(t *testing.T) {
	cond := petal.NewCondition("foo", "bar", []byte("conditiondata"))
	addr := cond.Address()
	bech, err := addr.Bech32("petal")
	require.NoError(t, err)

	cases := map[string]struct {
		json     string
		wantErr  *errors.Error
		wantAddr petal.Address
	}{
		"default decoding": {
			json:     fmt.Sprintf(`"%X"`, []byte(addr)),
			wantAddr: addr,
		},
		"hex decoding": {
			json:     fmt.Sprintf(`"hex:%x"`, []byte(addr)),
			wantAddr: addr,
		},
		"cond decoding": {
			json:     `"cond:foo/bar/636f6e646974696f6e64617461"`,
			wantAddr: addr,
		},
		"bech32 decoding": {
			json:     fmt.Sprintf(`"bech32:%s"`, bech),
			wantAddr: addr,
		},
		"hex address too short": {
			json:    `"6865782d61646472"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition format": {
			json:    `"cond:foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"cond:foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"unknown format": {
			json:    `"foobar:xxx"`,
			wantErr: errors.ErrType,
		},
		"zero address": {
			json:     `""`,
			wantAddr: nil,
		},
		"zero hex address": {
			json:     `"hex:"`,
			wantAddr: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var a petal.Address
			err := json.Unmarshal([]byte(tc.json), &a)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !reflect.DeepEqual(a, tc.wantAddr) {
				t.Fatalf("got address: %q", a)
			}
		})
	}
}

func TestAddressJSONRoundTrip(t *testing.T) {
	addr := petal.NewAddress([]byte("some data"))
	raw, err := json.Marshal(addr)
	require.NoError(t, err)

	var got petal.Address
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.True(t, addr.Equals(got))
}

func TestConditionJSON(t *testing.T) {
	cases := map[string]struct {
		json          string
		wantErr       *errors.Error
		wantCondition petal.Condition
	}{
		"default decoding": {
			json:          `"foo/bar/636f6e646974696f6e64617461"`,
			wantCondition: petal.NewCondition("foo", "bar", []byte("conditiondata")),
		},
		"invalid condition format": {
			json:    `"foo/636f6e646974696f6e64617461"`,
			wantErr: errors.ErrInput,
		},
		"invalid condition data": {
			json:    `"foo/bar/zzzzz"`,
			wantErr: errors.ErrInput,
		},
		"zero condition": {
			json:          `""`,
			wantCondition: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got petal.Condition
			err := json.Unmarshal([]byte(tc.json), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("got error: %+v", err)
			}
			if err == nil && !got.Equals(tc.wantCondition) {
				t.Fatalf("expected %q but got condition: %q", tc.wantCondition, got)
			}
		})
	}

	raw, err := json.Marshal(petal.NewCondition("foo", "bar", []byte("conditiondata")))
	require.NoError(t, err)
	assert.Equal(t, `"foo/bar/636F6E646974696F6E64617461"`, string(raw))
}

func TestConditionValidate(t *testing.T) {
	assert.NoError(t, petal.NewCondition("sigs", "ed25519", []byte{1}).Validate())
	assert.Error(t, petal.Condition("no slashes").Validate())
	assert.Error(t, petal.NewCondition("a", "b", []byte{1}).Validate())
}

func TestAddressClone(t *testing.T) {
	addr := petal.NewAddress([]byte("clone me"))
	clone := addr.Clone()
	require.True(t, addr.Equals(clone))

	clone[0]++
	assert.False(t, addr.Equals(clone))
	assert.Nil(t, petal.Address(nil).Clone())
}
