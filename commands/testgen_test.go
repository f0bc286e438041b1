package commands

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/petaldocs/petal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestGenCmd(t *testing.T) {
	dir, err := ioutil.TempDir("", "testgen")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	meta := &petal.Metadata{Schema: 4}
	examples := []Example{{Filename: "metadata", Obj: meta}}
	require.NoError(t, TestGenCmd(examples, []string{dir}))

	js, err := ioutil.ReadFile(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"schema": 4}`, string(js))

	pb, err := ioutil.ReadFile(filepath.Join(dir, "metadata.bin"))
	require.NoError(t, err)
	var got petal.Metadata
	require.NoError(t, proto.Unmarshal(pb, &got))
	assert.Equal(t, meta.Schema, got.Schema)
}
