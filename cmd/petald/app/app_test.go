package app

import (
	"crypto/sha256"
	"encoding/json"
	"testing"
	"time"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/crypto"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/store"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/x/docsign"
	"github.com/petaldocs/petal/x/sigs"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "petal-test-chain"

type account struct {
	key *crypto.PrivateKey
	seq int64
}

func newAccount() *account {
	return &account{key: crypto.GenPrivKeyEd25519()}
}

func (a *account) address() petal.Address {
	return a.key.PublicKey().Address()
}

// tx wraps given message into a transaction signed by the account, using
// and then incrementing its sequence.
func (a *account) tx(t testing.TB, msg petal.Msg) *Tx {
	t.Helper()
	tx, err := Wrap(msg)
	require.NoError(t, err)
	sig, err := sigs.SignTx(a.key, tx, chainID, a.seq)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	a.seq++
	return tx
}

func newTestRunner(t *testing.T, admin petal.Address) *weavetest.WeaveRunner {
	abciApp, err := newApplication("", log.NewNopLogger(), true, prometheus.NewRegistry())
	require.NoError(t, err)

	runner := weavetest.NewWeaveRunner(t, abciApp, chainID, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	runner.InitChain(map[string]interface{}{
		"conf": map[string]interface{}{
			"docsign": map[string]interface{}{
				"metadata":     map[string]int{"schema": 1},
				"nonce_policy": "LEGACY",
			},
		},
		"docsign": map[string]interface{}{
			"admin": admin,
		},
	})
	return runner
}

// deliver executes given transactions in a single block and returns the
// result of each of them.
func deliver(runner *weavetest.WeaveRunner, txs ...petal.Tx) []error {
	errs := make([]error, len(txs))
	runner.InBlock(func(wapp weavetest.WeaveApp) error {
		for i, tx := range txs {
			errs[i] = wapp.DeliverTx(tx)
		}
		return nil
	})
	return errs
}

func TestDocumentSigningApp(t *testing.T) {
	Convey("Given a chain with an administrator", t, func() {
		admin := newAccount()
		issuer := newAccount()
		alice := newAccount()
		bob := newAccount()
		runner := newTestRunner(t, admin.address())
		workflow := docsign.NewDocumentWorkflow(docsign.DefaultRegistries(), docsign.Ed25519Verifier{})

		stored, err := workflow.Admin(runner)
		So(err, ShouldBeNil)
		So(stored, ShouldResemble, admin.address())

		Convey("A second init is refused", func() {
			errs := deliver(runner, admin.tx(t, &docsign.InitMsg{
				Metadata: &petal.Metadata{Schema: 1},
				Admin:    admin.address(),
			}))
			So(docsign.ErrAlreadyInitialized.Is(errs[0]), ShouldBeTrue)
		})

		Convey("A document is issued", func() {
			hash := sha256.Sum256([]byte("lease agreement"))
			deadline := petal.UnixTime(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
			errs := deliver(runner, issuer.tx(t, &docsign.IssueMsg{
				Metadata:    &petal.Metadata{Schema: 1},
				Owner:       issuer.address(),
				TokenID:     7,
				URI:         "https://example.com/lease",
				Signers:     []petal.Address{alice.address(), bob.address()},
				ContentHash: hash[:],
				Deadline:    deadline,
			}))
			So(errs[0], ShouldBeNil)

			owners, err := workflow.Owners(runner)
			So(err, ShouldBeNil)
			So(owners, ShouldResemble, map[uint32]petal.Address{7: issuer.address()})

			submit := func(a *account, status docsign.SignatureStatus) petal.Tx {
				msg, err := docsign.SignPayload(a.key, docsign.SignedPayload{
					TokenID:      7,
					DocumentHash: hash[:],
					Deadline:     deadline,
					Status:       status,
				})
				So(err, ShouldBeNil)
				return a.tx(t, msg)
			}

			Convey("Signers decide and the nonces follow", func() {
				errs := deliver(runner,
					submit(alice, docsign.StatusSigned),
					submit(bob, docsign.StatusRejected),
				)
				So(errs, ShouldResemble, []error{nil, nil})

				signatures, err := workflow.Signatures(runner)
				So(err, ShouldBeNil)
				So(signatures[7], ShouldResemble, map[string]docsign.SignatureStatus{
					alice.address().String(): docsign.StatusSigned,
					bob.address().String():   docsign.StatusRejected,
				})

				nonces, err := workflow.Nonces(runner)
				So(err, ShouldBeNil)
				So(nonces, ShouldResemble, map[string]uint32{
					alice.address().String(): 0,
					bob.address().String():   1,
				})

				Convey("A signed decision is final, a rejection is not", func() {
					errs := deliver(runner,
						submit(alice, docsign.StatusRejected),
						submit(bob, docsign.StatusSigned),
					)
					So(docsign.ErrAlreadySigned.Is(errs[0]), ShouldBeTrue)
					So(errs[1], ShouldBeNil)

					signatures, err := workflow.Signatures(runner)
					So(err, ShouldBeNil)
					So(signatures[7][alice.address().String()], ShouldEqual, docsign.StatusSigned)
					So(signatures[7][bob.address().String()], ShouldEqual, docsign.StatusSigned)

					nonces, err := workflow.Nonces(runner)
					So(err, ShouldBeNil)
					So(nonces[bob.address().String()], ShouldEqual, uint32(2))
				})
			})

			Convey("An outsider cannot sign", func() {
				errs := deliver(runner, submit(newAccount(), docsign.StatusSigned))
				So(docsign.ErrNotASigner.Is(errs[0]), ShouldBeTrue)
			})

			Convey("The same token cannot be issued twice", func() {
				errs := deliver(runner, issuer.tx(t, &docsign.IssueMsg{
					Metadata:    &petal.Metadata{Schema: 1},
					Owner:       issuer.address(),
					TokenID:     7,
					URI:         "https://example.com/other",
					Signers:     []petal.Address{alice.address()},
					ContentHash: hash[:],
					Deadline:    deadline,
				}))
				So(docsign.ErrTokenAlreadyMinted.Is(errs[0]), ShouldBeTrue)
			})
		})

		Convey("An unsigned transaction is refused", func() {
			tx, err := Wrap(&docsign.InitMsg{
				Metadata: &petal.Metadata{Schema: 1},
				Admin:    admin.address(),
			})
			So(err, ShouldBeNil)
			errs := deliver(runner, tx)
			So(errors.ErrUnauthorized.Is(errs[0]), ShouldBeTrue)
		})
	})
}

func TestTxGetMsg(t *testing.T) {
	_, err := new(Tx).GetMsg()
	require.True(t, errors.ErrEmpty.Is(err))

	tx := &Tx{
		InitMsg:  &docsign.InitMsg{},
		IssueMsg: &docsign.IssueMsg{},
	}
	_, err = tx.GetMsg()
	require.True(t, errors.ErrInput.Is(err))

	issue := &docsign.IssueMsg{TokenID: 3}
	msg, err := (&Tx{IssueMsg: issue}).GetMsg()
	require.NoError(t, err)
	require.Equal(t, issue, msg)

	_, err = Wrap(&weavetest.Msg{RoutePath: "other/msg"})
	require.True(t, errors.ErrInput.Is(err))
}

func TestTxDecoder(t *testing.T) {
	tx := newAccount().tx(t, &docsign.InitMsg{Metadata: &petal.Metadata{Schema: 1}})
	raw, err := tx.Marshal()
	require.NoError(t, err)

	decoded, err := TxDecoder(raw)
	require.NoError(t, err)
	require.Equal(t, tx, decoded)

	_, err = TxDecoder([]byte("not a transaction"))
	require.True(t, errors.ErrInput.Is(err))
}

func TestGenInitOptions(t *testing.T) {
	admin := newAccount().address()
	raw, err := GenInitOptions([]string{admin.String()})
	require.NoError(t, err)

	var opts petal.Options
	require.NoError(t, json.Unmarshal(raw, &opts))
	ini := &docsign.Initializer{}
	db := store.MemStore()
	require.NoError(t, ini.FromGenesis(opts, db))

	workflow := docsign.NewDocumentWorkflow(docsign.DefaultRegistries(), docsign.Ed25519Verifier{})
	got, err := workflow.Admin(db)
	require.NoError(t, err)
	require.Equal(t, admin, got)

	_, err = GenInitOptions([]string{"not an address"})
	require.Error(t, err)
}

func TestExamples(t *testing.T) {
	for _, ex := range Examples() {
		require.NotEmpty(t, ex.Filename)
		require.NotNil(t, ex.Obj)
	}
}
