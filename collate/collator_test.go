package collate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.senan.xyz/tagcollate/metadata"
)

func tag(v metadata.Variant, kv ...string) metadata.TypedMetadata {
	if len(kv)%2 != 0 {
		panic("kv must be pairs")
	}
	var m metadata.Map
	for i := 0; i < len(kv); i += 2 {
		m.Put(kv[i], kv[i+1])
	}
	return metadata.TypedMetadata{Variant: v, Map: m}
}

func TestS1LastResortSuppression(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.ID3v2, "TPE1", "test"),
		tag(metadata.ID3v1, "artist", "ignored"),
	}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeBest)

	assert.Equal(t, []string{"test"}, c.Artists())
}

func TestS2PrioritizeBestAcrossFormats(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.APE, "Album", "ape album"),
		tag(metadata.FLAC, "ALBUM", "bad album"),
		tag(metadata.FLAC, "ALBUM", "good album", "ARTIST", "artist"),
		tag(metadata.FLAC, "ALBUM", "best album", "ARTIST", "artist", "TITLE", "song"),
	}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeBest)

	album, ok := c.Album()
	require.True(t, ok)
	assert.Equal(t, "best album", album)
}

func TestS3PrioritizeFirst(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.APE, "Album", "ape album"),
		tag(metadata.FLAC, "ALBUM", "first album"),
		tag(metadata.FLAC, "ALBUM", "good album", "ARTIST", "artist"),
		tag(metadata.FLAC, "ALBUM", "best album", "ARTIST", "artist", "TITLE", "title"),
	}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeFirst)

	album, ok := c.Album()
	require.True(t, ok)
	assert.Equal(t, "first album", album)

	title, ok := c.Title()
	require.True(t, ok)
	assert.Equal(t, "title", title)
}

func TestS4IgnoreDuplicates(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.APE, "Album", "ape album"),
		tag(metadata.FLAC, "ALBUM", "first album"),
		tag(metadata.FLAC, "ALBUM", "good album", "ARTIST", "artist"),
		tag(metadata.FLAC, "ALBUM", "best album", "ARTIST", "artist", "TITLE", "title"),
	}
	c := New(all, metadata.DefaultPrioritization(), IgnoreDuplicates)

	album, ok := c.Album()
	require.True(t, ok)
	assert.Equal(t, "first album", album)

	_, ok = c.Title()
	assert.False(t, ok)
}

func TestS5CaseCollapseAcrossFormats(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.APE, "Artist", "FLACcase"),
		tag(metadata.FLAC, "ARTIST", "FlacCase"),
	}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeBest)

	assert.Equal(t, []string{"FlacCase"}, c.Artists())
}

func TestGetPrioritizedValueAbsent(t *testing.T) {
	t.Parallel()

	all := metadata.All{tag(metadata.FLAC, "ALBUM", "x")}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeBest)

	_, ok := c.Title()
	assert.False(t, ok)
}

func TestPrioritizeBestStability(t *testing.T) {
	t.Parallel()

	// Two FLAC tags with equal field counts must stay in file order; a
	// third with strictly more fields must sort before both.
	all := metadata.All{
		tag(metadata.FLAC, "ALBUM", "first"),
		tag(metadata.FLAC, "ALBUM", "second"),
		tag(metadata.FLAC, "ALBUM", "third", "ARTIST", "a", "TITLE", "t"),
	}
	perm := buildPermutation(all, metadata.Prioritization{Order: []metadata.Variant{metadata.FLAC}}, PrioritizeBest)

	assert.Equal(t, []int{2, 0, 1}, perm)
}

func TestIgnoreDuplicatesPermutationLength(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.FLAC, "ALBUM", "a"),
		tag(metadata.FLAC, "ALBUM", "b"),
		tag(metadata.ID3v1, "album", "c"),
	}
	perm := buildPermutation(all, metadata.DefaultPrioritization(), IgnoreDuplicates)

	assert.Equal(t, all.CountDistinctVariants(), len(perm))
}

func TestPrioritizeFirstPermutationLength(t *testing.T) {
	t.Parallel()

	all := metadata.All{
		tag(metadata.FLAC, "ALBUM", "a"),
		tag(metadata.FLAC, "ALBUM", "b"),
		tag(metadata.ID3v1, "album", "c"),
	}
	perm := buildPermutation(all, metadata.DefaultPrioritization(), PrioritizeFirst)

	assert.Len(t, perm, len(all))
}

func TestDateUsesDateparse(t *testing.T) {
	t.Parallel()

	all := metadata.All{tag(metadata.FLAC, "DATE", "2004-05-12")}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeBest)

	d, ok := c.Date()
	require.True(t, ok)
	assert.Equal(t, 2004, d.Year())
	assert.Equal(t, 12, d.Day())
}

func TestDateAbsentWhenUnparseable(t *testing.T) {
	t.Parallel()

	all := metadata.All{tag(metadata.FLAC, "DATE", "not a date")}
	c := New(all, metadata.DefaultPrioritization(), PrioritizeBest)

	_, ok := c.Date()
	assert.False(t, ok)
}
