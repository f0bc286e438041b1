package docsign

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestGenesis(t *testing.T) {
	admin := weavetest.RandomAddr(t)
	owner := weavetest.RandomAddr(t)
	a := weavetest.RandomAddr(t)
	b := weavetest.RandomAddr(t)

	genesis := fmt.Sprintf(`
		{
			"conf": {
				"docsign": {
					"metadata": {"schema": 1},
					"nonce_policy": "STRICT",
					"max_signers": 5
				}
			},
			"docsign": {
				"admin": %q,
				"tokens": [
					{
						"id": 1,
						"owner": %q,
						"uri": "ipfs://first",
						"signers": [%q, %q],
						"content_hash": "00112233445566778899aabbccddeeff",
						"deadline": "2030-01-01T00:00:00Z"
					},
					{
						"id": 2,
						"owner": %q,
						"signers": [%q],
						"content_hash": "ff",
						"deadline": 1000
					}
				]
			}
		}
	`, admin, owner, a, b, owner, b)

	var opts petal.Options
	if err := json.Unmarshal([]byte(genesis), &opts); err != nil {
		t.Fatalf("cannot unmarshal genesis: %s", err)
	}

	db := store.MemStore()
	var ini Initializer
	if err := ini.FromGenesis(opts, db); err != nil {
		t.Fatalf("cannot load genesis: %+v", err)
	}

	w := newTestWorkflow()
	got, err := w.Admin(db)
	assert.Nil(t, err)
	assert.Equal(t, admin, got)

	owners, err := w.Owners(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]petal.Address{1: owner, 2: owner}, owners)

	deadlines, err := w.Deadlines(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]petal.UnixTime{1: 1893456000, 2: 1000}, deadlines)

	hashes, err := w.DocumentHashes(db)
	assert.Nil(t, err)
	assert.Equal(t, []byte{0xff}, hashes[2])

	sigs, err := w.Signatures(db)
	assert.Nil(t, err)
	assert.Equal(t, map[uint32]map[string]SignatureStatus{
		1: {a.String(): StatusWaiting, b.String(): StatusWaiting},
		2: {b.String(): StatusWaiting},
	}, sigs)

	conf, err := loadConfiguration(db)
	assert.Nil(t, err)
	assert.Equal(t, NonceStrict, conf.NoncePolicy)
	assert.Equal(t, uint32(5), conf.MaxSigners)
}

func TestGenesisFailures(t *testing.T) {
	signer := weavetest.RandomAddr(t)

	cases := map[string]struct {
		genesis string
		wantErr *errors.Error
	}{
		"empty signer roster": {
			genesis: `{"docsign": {"tokens": [{"id": 1, "owner": "SIGNER", "content_hash": "ff", "signers": []}]}}`,
			wantErr: ErrEmptySignerRoster,
		},
		"duplicated token": {
			genesis: `{"docsign": {"tokens": [
				{"id": 1, "owner": "SIGNER", "content_hash": "ff", "signers": ["SIGNER"]},
				{"id": 1, "owner": "SIGNER", "content_hash": "ee", "signers": ["SIGNER"]}
			]}}`,
			wantErr: ErrTokenAlreadyMinted,
		},
		"content hash is not hex": {
			genesis: `{"docsign": {"tokens": [{"id": 1, "owner": "SIGNER", "content_hash": "xyz", "signers": ["SIGNER"]}]}}`,
			wantErr: errors.ErrInput,
		},
		"invalid configuration": {
			genesis: `{"conf": {"docsign": {"metadata": {"schema": 1}, "nonce_policy": 4}}}`,
			wantErr: errors.ErrInput,
		},
		"malformed state": {
			genesis: `{"docsign": {"tokens": 4}}`,
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw := strings.Replace(tc.genesis, "SIGNER", signer.String(), -1)
			var opts petal.Options
			if err := json.Unmarshal([]byte(raw), &opts); err != nil {
				t.Fatalf("cannot unmarshal genesis: %s", err)
			}
			var ini Initializer
			assert.IsErr(t, tc.wantErr, ini.FromGenesis(opts, store.MemStore()))
		})
	}
}
