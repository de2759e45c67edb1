// Package mp4 walks an MP4/M4A atom tree down to the iTunes-style
// "ilst" metadata list and extracts its tag atoms.
package mp4

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.senan.xyz/tagcollate/metadata"
)

// ErrNoMetadata is returned when the file has no moov/udta/meta/ilst
// atom path at all, which is a normal (if metadata-free) MP4 file, not
// necessarily a malformed one.
var ErrNoMetadata = errors.New("mp4: no ilst atom found")

type atom struct {
	typ          string
	dataOffset   int64
	dataSize     int64
	headerLength int64
}

func readAtomHeader(r io.ReaderAt, offset int64) (atom, error) {
	var hdr [8]byte
	if _, err := r.ReadAt(hdr[:], offset); err != nil {
		return atom{}, fmt.Errorf("mp4: read atom header: %w", err)
	}
	size := int64(binary.BigEndian.Uint32(hdr[0:4]))
	typ := string(hdr[4:8])
	headerLen := int64(8)
	if size == 1 {
		var ext [8]byte
		if _, err := r.ReadAt(ext[:], offset+8); err != nil {
			return atom{}, fmt.Errorf("mp4: read extended atom size: %w", err)
		}
		size = int64(binary.BigEndian.Uint64(ext[:]))
		headerLen = 16
	}
	if size < headerLen {
		return atom{}, fmt.Errorf("mp4: invalid atom size %d at offset %d", size, offset)
	}
	return atom{typ: typ, dataOffset: offset + headerLen, dataSize: size - headerLen, headerLength: headerLen}, nil
}

// findChild scans the container [start, end) for the first direct
// child atom of the given type.
func findChild(r io.ReaderAt, start, end int64, typ string) (atom, bool) {
	offset := start
	for offset < end {
		a, err := readAtomHeader(r, offset)
		if err != nil {
			return atom{}, false
		}
		if a.typ == typ {
			return a, true
		}
		offset = a.dataOffset + a.dataSize
	}
	return atom{}, false
}

var containerPath = []string{"moov", "udta", "meta", "ilst"}

// Parse walks r's atom tree to the ilst atom and returns its tag atoms
// as typed metadata. r must support random access over the full size
// of the file (or at least its moov tree).
func Parse(r io.ReaderAt, size int64) (*metadata.TypedMetadata, error) {
	start, end := int64(0), size
	for i, typ := range containerPath {
		a, ok := findChild(r, start, end, typ)
		if !ok {
			return nil, ErrNoMetadata
		}
		start, end = a.dataOffset, a.dataOffset+a.dataSize
		if typ == "meta" && i == 2 {
			// The "meta" atom carries a 4-byte version/flags header
			// before its children, unlike the other containers on this
			// path.
			start += 4
		}
	}

	tm := &metadata.TypedMetadata{Variant: metadata.MP4}
	offset := start
	for offset < end {
		tagAtom, err := readAtomHeader(r, offset)
		if err != nil {
			break
		}
		switch tagAtom.typ {
		case "trkn":
			if num, total, ok := parseTrackNumber(r, tagAtom); ok {
				v := strconv.Itoa(num)
				if total > 0 {
					v = fmt.Sprintf("%d/%d", num, total)
				}
				tm.Map.Put("trkn", v)
			}
		default:
			if v, ok := parseTextTag(r, tagAtom); ok {
				tm.Map.Put(tagAtom.typ, v)
			}
		}
		offset = tagAtom.dataOffset + tagAtom.dataSize
	}
	return tm, nil
}

// parseTextTag reads a tag atom's nested "data" atom and returns its
// payload as text, skipping the data atom's 8-byte version/flags/
// reserved header.
func parseTextTag(r io.ReaderAt, tagAtom atom) (string, bool) {
	dataAtom, ok := findChild(r, tagAtom.dataOffset, tagAtom.dataOffset+tagAtom.dataSize, "data")
	if !ok || dataAtom.dataSize < 8 {
		return "", false
	}
	valueOffset := dataAtom.dataOffset + 8
	valueSize := dataAtom.dataSize - 8
	if valueSize <= 0 {
		return "", false
	}
	buf := make([]byte, valueSize)
	if _, err := r.ReadAt(buf, valueOffset); err != nil {
		return "", false
	}
	return string(buf), true
}

// parseTrackNumber reads the "trkn" atom's binary payload: 2 bytes
// reserved, 2 bytes track number, 2 bytes track total, 2 bytes
// reserved.
func parseTrackNumber(r io.ReaderAt, tagAtom atom) (number, total int, ok bool) {
	dataAtom, found := findChild(r, tagAtom.dataOffset, tagAtom.dataOffset+tagAtom.dataSize, "data")
	if !found || dataAtom.dataSize < 8+8 {
		return 0, 0, false
	}
	buf := make([]byte, 8)
	if _, err := r.ReadAt(buf, dataAtom.dataOffset+8); err != nil {
		return 0, 0, false
	}
	number = int(binary.BigEndian.Uint16(buf[2:4]))
	total = int(binary.BigEndian.Uint16(buf[4:6]))
	return number, total, true
}
