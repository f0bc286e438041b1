package petal

import (
	"testing"

	"github.com/petaldocs/petal/errors"
	"github.com/petaldocs/petal/weavetest/assert"
)

func TestMetadataValidate(t *testing.T) {
	var missing *Metadata
	assert.IsErr(t, errors.ErrMetadata, missing.Validate())
	assert.IsErr(t, errors.ErrMetadata, (&Metadata{}).Validate())
	assert.Nil(t, (&Metadata{Schema: 1}).Validate())

	m := &Metadata{Schema: 3}
	c := m.Copy()
	c.Schema = 4
	assert.Equal(t, int32(3), m.Schema)
}
