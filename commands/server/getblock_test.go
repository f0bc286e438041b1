package server

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/petaldocs/petal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

func TestParseGetBlockArgs(t *testing.T) {
	cases := map[string]struct {
		args    []string
		want    getBlockArgs
		wantErr *errors.Error
	}{
		"no arguments": {
			wantErr: errors.ErrInput,
		},
		"latest block": {
			args: []string{"blockstore.db"},
			want: getBlockArgs{storePath: "blockstore.db"},
		},
		"explicit height": {
			args: []string{"data/blockstore.db", "-height=7"},
			want: getBlockArgs{storePath: "data/blockstore.db", height: 7},
		},
		"negative height": {
			args:    []string{"blockstore.db", "-height=-2"},
			wantErr: errors.ErrInput,
		},
		"malformed height": {
			args:    []string{"blockstore.db", "-height=top"},
			wantErr: errors.ErrInput,
		},
		"unknown flag": {
			args:    []string{"blockstore.db", "-format=json"},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := parseGetBlockArgs(tc.args)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOpenDb(t *testing.T) {
	dir, err := ioutil.TempDir("", "petal-getblock")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	_, err = openDb(filepath.Join(dir, "blockstore"))
	assert.True(t, errors.ErrInput.Is(err), "unexpected error: %+v", err)

	db, err := openDb(filepath.Join(dir, "blockstore.db") + "/")
	require.NoError(t, err)
	db.Close()
	_, err = os.Stat(filepath.Join(dir, "blockstore.db"))
	assert.NoError(t, err)
}

func TestGetBlockCmdEmptyStore(t *testing.T) {
	dir, err := ioutil.TempDir("", "petal-getblock")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "blockstore.db")
	err = GetBlockCmd(log.NewNopLogger(), dir, []string{path})
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)

	err = GetBlockCmd(log.NewNopLogger(), dir, []string{path, "-height=3"})
	assert.True(t, errors.ErrNotFound.Is(err), "unexpected error: %+v", err)
}
