package mp4

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReaderAt struct{ b []byte }

func (f fakeReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(f.b)) {
		return 0, io.EOF
	}
	n := copy(p, f.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func box(typ string, payload []byte) []byte {
	buf := bytes.NewBuffer(nil)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(8+len(payload)))
	buf.Write(size[:])
	buf.WriteString(typ)
	buf.Write(payload)
	return buf.Bytes()
}

func dataAtom(payload []byte) []byte {
	header := make([]byte, 8) // version+flags(4) + reserved(4)
	return box("data", append(header, payload...))
}

func textTag(typ, value string) []byte {
	return box(typ, dataAtom([]byte(value)))
}

func trknTag(num, total uint16) []byte {
	payload := make([]byte, 8)
	binary.BigEndian.PutUint16(payload[2:4], num)
	binary.BigEndian.PutUint16(payload[4:6], total)
	return box("trkn", dataAtom(payload))
}

func buildFile(ilstChildren ...[]byte) []byte {
	ilstPayload := bytes.Join(ilstChildren, nil)
	ilst := box("ilst", ilstPayload)
	metaPayload := append([]byte{0, 0, 0, 0}, ilst...) // meta's version/flags header
	meta := box("meta", metaPayload)
	udta := box("udta", meta)
	moov := box("moov", udta)
	return moov
}

func TestParseTextTags(t *testing.T) {
	t.Parallel()

	data := buildFile(
		textTag("\xa9nam", "a title"),
		textTag("\xa9ART", "an artist"),
	)
	tm, err := Parse(fakeReaderAt{data}, int64(len(data)))
	require.NoError(t, err)

	title, ok := tm.Map.GetFirst("\xa9nam")
	require.True(t, ok)
	assert.Equal(t, "a title", title)

	artist, ok := tm.Map.GetFirst("\xa9ART")
	require.True(t, ok)
	assert.Equal(t, "an artist", artist)
}

func TestParseTrackNumber(t *testing.T) {
	t.Parallel()

	data := buildFile(trknTag(3, 12))
	tm, err := Parse(fakeReaderAt{data}, int64(len(data)))
	require.NoError(t, err)

	trkn, ok := tm.Map.GetFirst("trkn")
	require.True(t, ok)
	assert.Equal(t, "3/12", trkn)
}

func TestParseNoMetadata(t *testing.T) {
	t.Parallel()

	data := box("moov", box("udta", nil))
	_, err := Parse(fakeReaderAt{data}, int64(len(data)))
	assert.ErrorIs(t, err, ErrNoMetadata)
}
