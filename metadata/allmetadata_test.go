package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllOfVariant(t *testing.T) {
	t.Parallel()

	all := All{
		{Variant: ID3v2},
		{Variant: FLAC},
		{Variant: FLAC},
		{Variant: ID3v1},
	}

	assert.Equal(t, []int{1, 2}, all.OfVariant(FLAC))
	assert.Equal(t, []int{0}, all.OfVariant(ID3v2))
	assert.Nil(t, all.OfVariant(APE))
}

func TestAllCountDistinctVariants(t *testing.T) {
	t.Parallel()

	all := All{
		{Variant: FLAC},
		{Variant: FLAC},
		{Variant: ID3v1},
	}

	assert.Equal(t, 2, all.CountDistinctVariants())
}

func TestFieldKey(t *testing.T) {
	t.Parallel()

	k, ok := FieldArtist.Key(ID3v2)
	assert.True(t, ok)
	assert.Equal(t, "TPE1", k)

	_, ok = FieldOriginalDate.Key(ID3v1)
	assert.False(t, ok)
}
