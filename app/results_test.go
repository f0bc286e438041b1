package app_test

import (
	"testing"

	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/app"
	"github.com/petaldocs/petal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinResults(t *testing.T) {
	models := []petal.Model{
		petal.Pair([]byte("a"), []byte("1")),
		petal.Pair([]byte("b"), []byte("2")),
	}
	joined, err := app.JoinResults(app.ResultsFromKeys(models), app.ResultsFromValues(models))
	require.NoError(t, err)
	assert.Equal(t, models, joined)

	_, err = app.JoinResults(app.ResultsFromKeys(models), app.ResultsFromValues(models[:1]))
	assert.True(t, errors.ErrInput.Is(err))
}

func TestUnmarshalOneResult(t *testing.T) {
	first := &app.ResultSet{Results: [][]byte{[]byte("x")}}
	raw, err := first.Marshal()
	require.NoError(t, err)

	outer, err := app.ResultsFromValues([]petal.Model{petal.Pair(nil, raw)}).Marshal()
	require.NoError(t, err)

	var got app.ResultSet
	require.NoError(t, app.UnmarshalOneResult(outer, &got))
	assert.Equal(t, first.Results, got.Results)

	empty, err := app.ResultsFromValues(nil).Marshal()
	require.NoError(t, err)
	var untouched app.ResultSet
	require.NoError(t, app.UnmarshalOneResult(empty, &untouched))
	assert.Empty(t, untouched.Results)
}
