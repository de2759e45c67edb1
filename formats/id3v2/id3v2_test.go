package id3v2

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.senan.xyz/tagcollate/metadata"
)

func synchsafe(n uint32) [4]byte {
	return [4]byte{
		byte((n >> 21) & 0x7f),
		byte((n >> 14) & 0x7f),
		byte((n >> 7) & 0x7f),
		byte(n & 0x7f),
	}
}

func buildV4TextFrame(id, text string) []byte {
	data := append([]byte{3}, []byte(text)...) // encoding 3 = UTF-8
	size := synchsafe(uint32(len(data)))
	buf := bytes.NewBuffer(nil)
	buf.WriteString(id)
	buf.Write(size[:])
	buf.Write([]byte{0, 0}) // frame flags
	buf.Write(data)
	return buf.Bytes()
}

func buildV4Tag(frames ...[]byte) []byte {
	body := bytes.NewBuffer(nil)
	for _, f := range frames {
		body.Write(f)
	}
	size := synchsafe(uint32(body.Len()))
	buf := bytes.NewBuffer(nil)
	buf.WriteString("ID3")
	buf.Write([]byte{4, 0, 0}) // major, revision, flags
	buf.Write(size[:])
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestParseTextFrames(t *testing.T) {
	t.Parallel()

	raw := buildV4Tag(
		buildV4TextFrame("TIT2", "song title"),
		buildV4TextFrame("TPE1", "artist name"),
	)
	tm, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)

	title, ok := tm.Map.GetFirst("TIT2")
	require.True(t, ok)
	assert.Equal(t, "song title", title)

	artist, ok := tm.Map.GetFirst("TPE1")
	require.True(t, ok)
	assert.Equal(t, "artist name", artist)
}

func TestParseNotATag(t *testing.T) {
	t.Parallel()

	_, err := Parse(bytes.NewReader([]byte("not an id3 tag at all")))
	assert.ErrorIs(t, err, ErrNotATag)
}

func TestSkipTagLeavesReaderAfterTag(t *testing.T) {
	t.Parallel()

	raw := buildV4Tag(buildV4TextFrame("TALB", "album"))
	trailer := []byte("fLaC")
	r := bytes.NewReader(append(append([]byte{}, raw...), trailer...))

	require.NoError(t, SkipTag(r))

	rest := make([]byte, 4)
	_, err := r.Read(rest)
	require.NoError(t, err)
	assert.Equal(t, "fLaC", string(rest))
}

func TestSkipTagMalformedHeader(t *testing.T) {
	t.Parallel()

	err := SkipTag(bytes.NewReader([]byte("XXXXXXXXXX")))
	assert.ErrorIs(t, err, ErrNotATag)
}

func TestDecodeUTF16WithBOM(t *testing.T) {
	t.Parallel()

	// "hi" little-endian UTF-16 with a little-endian BOM.
	data := []byte{0xff, 0xfe, 'h', 0, 'i', 0, 0, 0}
	assert.Equal(t, "hi", decodeUTF16(data, true))
}

func TestApplyFullTextComment(t *testing.T) {
	t.Parallel()

	commentBody := bytes.NewBuffer(nil)
	commentBody.WriteByte(3) // UTF-8
	commentBody.WriteString("eng")
	commentBody.WriteString("desc")
	commentBody.WriteByte(0)
	commentBody.WriteString("the comment text")
	frameBytes := commentBody.Bytes()
	size := synchsafe(uint32(len(frameBytes)))

	buf := bytes.NewBuffer(nil)
	buf.WriteString("COMM")
	buf.Write(size[:])
	buf.Write([]byte{0, 0})
	buf.Write(frameBytes)

	raw := buildV4Tag(buf.Bytes())
	tm, err := Parse(bytes.NewReader(raw))
	require.NoError(t, err)

	key := metadata.ID3v2TextKey{Language: "eng", Description: "desc"}
	assert.Equal(t, "the comment text", tm.ID3v2Extra.Comments[key])
}
