// Package flac reads the metadata block section of a FLAC stream far
// enough to extract its vorbis_comment block, stopping at the first
// audio frame rather than parsing the whole file.
package flac

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.senan.xyz/tagcollate/formats/id3v2"
	"go.senan.xyz/tagcollate/metadata"
)

// ErrInvalidStreamMarker is returned when the four bytes following any
// leading ID3v2 tag are not the ASCII marker "fLaC".
var ErrInvalidStreamMarker = errors.New("flac: invalid stream marker")

// ErrUnexpectedEndOfStream is returned when a declared length runs past
// the data actually available.
var ErrUnexpectedEndOfStream = errors.New("flac: unexpected end of stream")

// ErrMalformedBlock is returned when a vorbis_comment block's declared
// length is too small to hold its own fixed-size header fields.
var ErrMalformedBlock = errors.New("flac: malformed block")

const blockTypeVorbisComment = 4

// ReadVorbisComment reads r up to and including the metadata block
// whose last-block flag is set, returning the vorbis_comment block's
// contents as typed metadata. r is left positioned at the start of the
// audio frames regardless of whether a vorbis_comment block was found.
func ReadVorbisComment(r io.ReadSeeker) (*metadata.TypedMetadata, error) {
	var marker [4]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return nil, fmt.Errorf("flac: read marker: %w", err)
	}
	if string(marker[:3]) == "ID3" {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("flac: rewind: %w", err)
		}
		if err := id3v2.SkipTag(r); err != nil {
			return nil, fmt.Errorf("flac: skip leading id3v2 tag: %w", err)
		}
		if _, err := io.ReadFull(r, marker[:]); err != nil {
			return nil, fmt.Errorf("flac: read marker: %w", err)
		}
	}
	if string(marker[:]) != "fLaC" {
		return nil, ErrInvalidStreamMarker
	}

	var found *metadata.TypedMetadata
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: read block header: %v", ErrUnexpectedEndOfStream, err)
		}
		isLast := hdr[0]&0x80 != 0
		blockType := hdr[0] & 0x7f
		length := int(hdr[1])<<16 | int(hdr[2])<<8 | int(hdr[3])

		if blockType == blockTypeVorbisComment {
			tm, err := readVorbisCommentBlock(r, length)
			if err != nil {
				return nil, err
			}
			found = tm
		} else if _, err := r.Seek(int64(length), io.SeekCurrent); err != nil {
			return nil, fmt.Errorf("%w: skip block: %v", ErrUnexpectedEndOfStream, err)
		}

		if isLast {
			break
		}
	}
	return found, nil
}

func readVorbisCommentBlock(r io.Reader, length int) (*metadata.TypedMetadata, error) {
	if length < 8 {
		return nil, fmt.Errorf("%w: vorbis_comment block too small (%d bytes)", ErrMalformedBlock, length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: read vorbis_comment block: %v", ErrUnexpectedEndOfStream, err)
	}

	pos := 0
	readU32LE := func() (uint32, error) {
		if pos+4 > len(buf) {
			return 0, ErrUnexpectedEndOfStream
		}
		v := binary.LittleEndian.Uint32(buf[pos : pos+4])
		pos += 4
		return v, nil
	}

	vendorLen, err := readU32LE()
	if err != nil {
		return nil, err
	}
	if pos+int(vendorLen) > len(buf) {
		return nil, ErrUnexpectedEndOfStream
	}
	vendor := string(buf[pos : pos+int(vendorLen)])
	pos += int(vendorLen)

	count, err := readU32LE()
	if err != nil {
		return nil, err
	}

	tm := &metadata.TypedMetadata{
		Variant:   metadata.FLAC,
		FLACExtra: &metadata.FLACExtra{VendorString: vendor},
	}
	for i := uint32(0); i < count; i++ {
		commentLen, err := readU32LE()
		if err != nil {
			return nil, err
		}
		if pos+int(commentLen) > len(buf) {
			return nil, ErrUnexpectedEndOfStream
		}
		comment := buf[pos : pos+int(commentLen)]
		pos += int(commentLen)

		key, value := splitComment(comment)
		if key == "" {
			continue
		}
		tm.Map.Put(key, value)
	}
	return tm, nil
}

// splitComment splits a vorbis comment at its first '=': the prefix is
// the field name, the suffix (which may itself contain '=') is the
// value. A comment with no '=' yields an empty value, not an error.
func splitComment(b []byte) (key, value string) {
	for i, c := range b {
		if c == '=' {
			return string(b[:i]), string(b[i+1:])
		}
	}
	return string(b), ""
}
