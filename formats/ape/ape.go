// Package ape parses the APEv2 tag footer and its text items. Only the
// output schema this format must produce (a MetadataMap plus a list of
// binary-item keys) is specified upstream; this is a minimal walker,
// not a full APEv1/APEv2 implementation.
package ape

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.senan.xyz/tagcollate/metadata"
)

const footerSize = 32

var preamble = [8]byte{'A', 'P', 'E', 'T', 'A', 'G', 'E', 'X'}

// ErrNotATag is returned when the last 32 bytes of the stream aren't an
// APEv2 footer.
var ErrNotATag = errors.New("ape: not an APEv2 tag")

const flagIsBinary = 1 << 1

// Parse reads the APEv2 tag from the end of a size-byte stream.
func Parse(r io.ReaderAt, size int64) (*metadata.TypedMetadata, error) {
	if size < footerSize {
		return nil, ErrNotATag
	}
	footer := make([]byte, footerSize)
	if _, err := r.ReadAt(footer, size-footerSize); err != nil {
		return nil, fmt.Errorf("ape: read footer: %w", err)
	}
	if [8]byte(footer[0:8]) != preamble {
		return nil, ErrNotATag
	}

	version := int(binary.LittleEndian.Uint32(footer[8:12]))
	tagSize := int64(binary.LittleEndian.Uint32(footer[12:16]))
	itemCount := binary.LittleEndian.Uint32(footer[16:20])

	// tagSize counts items + footer but excludes any preceding 32-byte
	// header, so this holds regardless of whether the tag has a header.
	itemsStart := size - tagSize
	if itemsStart < 0 || itemsStart > size-footerSize {
		return nil, fmt.Errorf("ape: tag size %d out of range", tagSize)
	}

	itemsBuf := make([]byte, size-footerSize-itemsStart)
	if _, err := r.ReadAt(itemsBuf, itemsStart); err != nil {
		return nil, fmt.Errorf("ape: read items: %w", err)
	}

	tm := &metadata.TypedMetadata{
		Variant:  metadata.APE,
		APEExtra: &metadata.APEExtra{Version: version},
	}

	pos := 0
	for i := uint32(0); i < itemCount && pos < len(itemsBuf); i++ {
		n, err := parseItem(itemsBuf[pos:], tm)
		if err != nil {
			break
		}
		pos += n
	}
	return tm, nil
}

// parseItem reads one item from the front of buf: 4-byte LE value size,
// 4-byte LE flags, a NUL-terminated ASCII key, then the value. It
// returns the number of bytes consumed.
func parseItem(buf []byte, tm *metadata.TypedMetadata) (int, error) {
	if len(buf) < 9 {
		return 0, fmt.Errorf("ape: truncated item header")
	}
	valueSize := int(binary.LittleEndian.Uint32(buf[0:4]))
	flags := binary.LittleEndian.Uint32(buf[4:8])

	keyEnd := -1
	for i := 8; i < len(buf); i++ {
		if buf[i] == 0 {
			keyEnd = i
			break
		}
	}
	if keyEnd < 0 {
		return 0, fmt.Errorf("ape: unterminated item key")
	}
	key := string(buf[8:keyEnd])
	valueStart := keyEnd + 1
	valueEnd := valueStart + valueSize
	if valueEnd > len(buf) {
		return 0, fmt.Errorf("ape: item value runs past buffer")
	}

	if flags&flagIsBinary != 0 {
		tm.APEExtra.BinaryKeys = append(tm.APEExtra.BinaryKeys, key)
	} else {
		tm.Map.Put(key, string(buf[valueStart:valueEnd]))
	}
	return valueEnd, nil
}
