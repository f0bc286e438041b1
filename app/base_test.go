package app_test

import (
	"strings"
	"testing"
	"time"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/orm"
	"github.com/petaldocs/petal/store/iavl"
	"github.com/petaldocs/petal/weavetest"
	"github.com/petaldocs/petal/x/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
)

// pathTx is serialized as its message path. It is enough for the router to
// find a handler.
type pathTx struct {
	weavetest.Tx
}

func (tx *pathTx) Marshal() ([]byte, error) {
	return []byte(tx.Msg.Path()), nil
}

func decodePathTx(raw []byte) (petal.Tx, error) {
	if strings.Contains(string(raw), "panic") {
		panic("decoder panic")
	}
	if len(raw) == 0 {
		return nil, errors.Wrap(errors.ErrInput, "empty transaction")
	}
	return &weavetest.Tx{Msg: &weavetest.Msg{RoutePath: string(raw)}}, nil
}

func newTx(path string) *pathTx {
	return &pathTx{Tx: weavetest.Tx{Msg: &weavetest.Msg{RoutePath: path}}}
}

func newBaseApp(t *testing.T) app.BaseApp {
	t.Helper()

	r := app.NewRouter()
	r.Handle(&weavetest.Msg{RoutePath: "test/write"}, &weavetest.WriteHandler{
		Key:   []byte("written"),
		Value: []byte("yes"),
	})
	r.Handle(&weavetest.Msg{RoutePath: "test/fail"}, &weavetest.WriteHandler{
		Key:   []byte("failed"),
		Value: []byte("yes"),
		Err:   errors.ErrUnauthorized,
	})
	handler := app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
	).WithHandler(r)

	qr := petal.NewQueryRouter()
	qr.RegisterAll(orm.RegisterQuery)
	store := app.NewStoreApp("base", iavl.MockCommitStore(), qr).WithInit(&kvInit{})
	return app.NewBaseApp(store, decodePathTx, handler, false)
}

func TestBaseAppDeliver(t *testing.T) {
	base := newBaseApp(t)
	runner := weavetest.NewWeaveRunner(t, base, "base-chain", time.Now())
	runner.InitChain(map[string]interface{}{
		"kv": map[string]string{"genesis": "ok"},
	})

	runner.InBlock(func(wapp weavetest.WeaveApp) error {
		require.NoError(t, wapp.CheckTx(newTx("test/write")))
		require.NoError(t, wapp.DeliverTx(newTx("test/write")))

		err := wapp.DeliverTx(newTx("test/fail"))
		assert.True(t, errors.ErrUnauthorized.Is(err))
		err = wapp.DeliverTx(newTx("test/unknown"))
		assert.True(t, errors.ErrNotFound.Is(err))
		return nil
	})

	val, err := runner.Get([]byte("written"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), val)

	// the failed handler write is rolled back by the savepoint
	ok, err := runner.Has([]byte("failed"))
	require.NoError(t, err)
	assert.False(t, ok)

	val, err = runner.Get([]byte("genesis"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), val)

	it, err := runner.Iterator([]byte("gen"), nil)
	require.NoError(t, err)
	models, err := orm.ConsumeIterator(it)
	require.NoError(t, err)
	assert.Equal(t, []petal.Model{petal.Pair([]byte("genesis"), []byte("ok"))}, models)
}

func TestBaseAppDecoderFailures(t *testing.T) {
	base := newBaseApp(t)
	base.InitChain(abci.RequestInitChain{ChainId: "base-chain", AppStateBytes: []byte(`{}`)})
	base.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: time.Now()}})

	res := base.DeliverTx(nil)
	assert.Equal(t, errors.ErrInput.ABCICode(), res.Code)

	// panics are redacted outside of debug mode
	chk := base.CheckTx([]byte("panic"))
	assert.Equal(t, errors.ErrPanic.ABCICode(), chk.Code)
}
