// Package id3v1 parses the fixed 128-byte ID3v1 trailer appended to the
// end of many MP3 files.
package id3v1

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.senan.xyz/tagcollate/metadata"
)

const tagSize = 128

// ErrNotATag is returned when the trailer doesn't begin with "TAG".
var ErrNotATag = errors.New("id3v1: not an ID3v1 tag")

// Parse reads the last 128 bytes of r (a file opened for random access)
// and, if they form an ID3v1 trailer, returns them as typed metadata.
func Parse(r io.ReaderAt, size int64) (*metadata.TypedMetadata, error) {
	if size < tagSize {
		return nil, ErrNotATag
	}
	buf := make([]byte, tagSize)
	if _, err := r.ReadAt(buf, size-tagSize); err != nil {
		return nil, fmt.Errorf("id3v1: read trailer: %w", err)
	}
	return ParseBytes(buf)
}

// ParseBytes parses an already-read 128-byte ID3v1 trailer.
func ParseBytes(buf []byte) (*metadata.TypedMetadata, error) {
	if len(buf) != tagSize || string(buf[0:3]) != "TAG" {
		return nil, ErrNotATag
	}

	tm := &metadata.TypedMetadata{Variant: metadata.ID3v1}
	put := func(key string, v string) {
		if v != "" {
			tm.Map.Put(key, v)
		}
	}

	put("title", nulTerminated(buf[3:33]))
	put("artist", nulTerminated(buf[33:63]))
	put("album", nulTerminated(buf[63:93]))
	put("year", nulTerminated(buf[93:97]))

	comment := buf[97:127]
	track := 0
	// ID3v1.1: byte 28 of the comment field is zero and byte 29 holds
	// the track number, repurposing the last two bytes of what ID3v1.0
	// treats as freeform comment text.
	if comment[28] == 0 && comment[29] != 0 {
		track = int(comment[29])
		comment = comment[:28]
	}
	put("comment", nulTerminated(comment))
	if track > 0 {
		put("track", strconv.Itoa(track))
	}

	if genre := genreName(buf[127]); genre != "" {
		put("genre", genre)
	}

	return tm, nil
}

func nulTerminated(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// genreName maps an ID3v1 genre byte through the original 80-entry ID3v1
// genre table (indexes 0-79). Any other index, including the Winamp
// extension range, yields an empty string rather than a guess.
func genreName(b byte) string {
	if int(b) >= len(genres) {
		return ""
	}
	return genres[b]
}

var genres = []string{
	"Blues", "Classic Rock", "Country", "Dance", "Disco", "Funk", "Grunge",
	"Hip-Hop", "Jazz", "Metal", "New Age", "Oldies", "Other", "Pop", "R&B",
	"Rap", "Reggae", "Rock", "Techno", "Industrial", "Alternative", "Ska",
	"Death Metal", "Pranks", "Soundtrack", "Euro-Techno", "Ambient",
	"Trip-Hop", "Vocal", "Jazz+Funk", "Fusion", "Trance", "Classical",
	"Instrumental", "Acid", "House", "Game", "Sound Clip", "Gospel",
	"Noise", "AlternRock", "Bass", "Soul", "Punk", "Space", "Meditative",
	"Instrumental Pop", "Instrumental Rock", "Ethnic", "Gothic",
	"Darkwave", "Techno-Industrial", "Electronic", "Pop-Folk",
	"Eurodance", "Dream", "Southern Rock", "Comedy", "Cult", "Gangsta",
	"Top 40", "Christian Rap", "Pop/Funk", "Jungle", "Native US",
	"Cabaret", "New Wave", "Psychedelic", "Rave", "Showtunes", "Trailer",
	"Lo-Fi", "Tribal", "Acid Punk", "Acid Jazz", "Polka", "Retro",
	"Musical", "Rock & Roll", "Hard Rock",
}
