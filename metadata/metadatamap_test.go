package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapPutPreservesOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	var m Map
	m.Put("ARTIST", "one")
	m.Put("ARTIST", "two")
	m.Put("ALBUM", "three")

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"one", "two"}, m.Values("ARTIST"))

	v, ok := m.GetFirst("ARTIST")
	assert.True(t, ok)
	assert.Equal(t, "one", v)
}

func TestMapGetFirstCaseSensitive(t *testing.T) {
	t.Parallel()

	var m Map
	m.Put("Artist", "mixed case")

	_, ok := m.GetFirst("ARTIST")
	assert.False(t, ok)

	v, ok := m.GetFirst("Artist")
	assert.True(t, ok)
	assert.Equal(t, "mixed case", v)
}

func TestMapGetFirstMissing(t *testing.T) {
	t.Parallel()

	var m Map
	_, ok := m.GetFirst("ARTIST")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMapPutEmptyKeyPanics(t *testing.T) {
	t.Parallel()

	var m Map
	assert.Panics(t, func() { m.Put("", "value") })
}
