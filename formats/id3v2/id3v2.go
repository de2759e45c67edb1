// Package id3v2 parses ID3v2.2/2.3/2.4 tags, both as a standalone
// format (leading tag on an MP3 stream) and as a collaborator the FLAC
// reader uses to skip an ID3v2 tag some encoders prepend ahead of the
// "fLaC" marker.
package id3v2

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"

	"go.senan.xyz/tagcollate/metadata"
)

// ErrNotATag is returned when the stream doesn't begin with the "ID3"
// identifier.
var ErrNotATag = errors.New("id3v2: not an ID3v2 tag")

// ErrMalformedFrame is returned when a frame header claims a size that
// runs past the end of the tag body.
var ErrMalformedFrame = errors.New("id3v2: malformed frame")

const headerSize = 10

type header struct {
	MajorVersion int
	Flags        byte
	Size         int // tag body size, excluding the 10-byte header
}

func readHeader(r io.Reader) (header, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return header{}, fmt.Errorf("id3v2: read header: %w", err)
	}
	if string(buf[0:3]) != "ID3" {
		return header{}, ErrNotATag
	}
	return header{
		MajorVersion: int(buf[3]),
		Flags:        buf[5],
		Size:         int(desynchsafe(buf[6:10])),
	}, nil
}

// desynchsafe decodes a synchsafe integer: 7 significant bits per byte,
// top bit always clear, used throughout ID3v2 so that a tag parser
// scanning for frame boundaries can never mistake tag data for an
// MPEG frame sync.
func desynchsafe(b []byte) uint32 {
	return uint32(b[0]&0x7f)<<21 | uint32(b[1]&0x7f)<<14 | uint32(b[2]&0x7f)<<7 | uint32(b[3]&0x7f)
}

// SkipTag advances r past a leading ID3v2 tag: header parsed, declared
// tag size consumed, leaving r positioned immediately after the tag. On
// a malformed header it returns an error without guaranteeing any
// particular resulting position.
func SkipTag(r io.ReadSeeker) error {
	hdr, err := readHeader(r)
	if err != nil {
		return err
	}
	if _, err := r.Seek(int64(hdr.Size), io.SeekCurrent); err != nil {
		return fmt.Errorf("id3v2: seek past tag: %w", err)
	}
	return nil
}

// Parse reads a full ID3v2 tag from the start of r and returns it as
// typed metadata. Only major versions 2, 3 and 4 are understood;
// extended headers and the unsynchronisation flag are not supported and
// return an error rather than silently mis-parsing.
func Parse(r io.Reader) (*metadata.TypedMetadata, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if hdr.Flags&0x80 != 0 {
		return nil, fmt.Errorf("id3v2: unsynchronised tags not supported")
	}
	if hdr.Flags&0x40 != 0 {
		return nil, fmt.Errorf("id3v2: extended header not supported")
	}
	if hdr.MajorVersion < 2 || hdr.MajorVersion > 4 {
		return nil, fmt.Errorf("id3v2: unsupported major version %d", hdr.MajorVersion)
	}

	body := make([]byte, hdr.Size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("id3v2: read body: %w", err)
	}

	tm := &metadata.TypedMetadata{
		Variant: metadata.ID3v2,
		ID3v2Extra: &metadata.ID3v2Extra{
			MajorVersion: hdr.MajorVersion,
			Comments:     map[metadata.ID3v2TextKey]string{},
			Lyrics:       map[metadata.ID3v2TextKey]string{},
		},
	}

	fs, err := frames(body, hdr.MajorVersion)
	if err != nil {
		return nil, err
	}
	for _, frame := range fs {
		applyFrame(tm, frame)
	}
	return tm, nil
}

type frame struct {
	id   string
	data []byte
}

// frames walks body's frame sequence, stopping at the first all-zero
// frame header (padding) or once a frame header no longer fits. A frame
// whose declared size runs past the end of body yields ErrMalformedFrame.
func frames(body []byte, majorVersion int) ([]frame, error) {
	idLen, sizeLen := 4, 4
	if majorVersion == 2 {
		idLen, sizeLen = 3, 3
	}
	hdrLen := idLen + sizeLen
	if majorVersion != 2 {
		hdrLen += 2 // frame status + format flags, v2.3/2.4 only
	}

	var out []frame
	pos := 0
	for pos+hdrLen <= len(body) {
		id := string(body[pos : pos+idLen])
		if isAllZero(body[pos : pos+idLen]) {
			return out, nil
		}
		sizeBytes := body[pos+idLen : pos+idLen+sizeLen]
		var size int
		switch {
		case majorVersion == 4:
			size = int(desynchsafe(pad4(sizeBytes)))
		case majorVersion == 3:
			size = int(binary.BigEndian.Uint32(sizeBytes))
		default: // v2.2: 3-byte plain big-endian size
			size = int(sizeBytes[0])<<16 | int(sizeBytes[1])<<8 | int(sizeBytes[2])
		}
		pos += hdrLen
		if pos+size > len(body) {
			return nil, fmt.Errorf("%w: %s frame size %d exceeds tag body", ErrMalformedFrame, id, size)
		}
		out = append(out, frame{id: normalizeFrameID(id, majorVersion), data: body[pos : pos+size]})
		pos += size
	}
	return out, nil
}

func pad4(b []byte) []byte {
	if len(b) == 4 {
		return b
	}
	out := make([]byte, 4)
	copy(out[4-len(b):], b)
	return out
}

func isAllZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// normalizeFrameID maps an ID3v2.2 three-letter frame ID to its
// ID3v2.3/2.4 four-letter equivalent, so Field descriptors only have to
// carry one ID3v2 key per logical field.
func normalizeFrameID(id string, majorVersion int) string {
	if majorVersion != 2 {
		return id
	}
	if v, ok := v22FrameNames[id]; ok {
		return v
	}
	return id
}

var v22FrameNames = map[string]string{
	"TT2": "TIT2",
	"TP1": "TPE1",
	"TP2": "TPE2",
	"TAL": "TALB",
	"TYE": "TYER",
	"TDA": "TDAT",
	"TRK": "TRCK",
	"TPA": "TPOS",
	"TCO": "TCON",
	"TCM": "TCOM",
	"COM": "COMM",
	"ULT": "USLT",
}

func applyFrame(tm *metadata.TypedMetadata, f frame) {
	switch {
	case f.id == "COMM":
		applyFullText(f, func(k metadata.ID3v2TextKey, v string) { tm.ID3v2Extra.Comments[k] = v })
	case f.id == "USLT":
		applyFullText(f, func(k metadata.ID3v2TextKey, v string) { tm.ID3v2Extra.Lyrics[k] = v })
	case len(f.id) > 0 && f.id[0] == 'T':
		applyTextFrame(tm, f)
	}
}

func applyTextFrame(tm *metadata.TypedMetadata, f frame) {
	if len(f.data) < 1 {
		return
	}
	text := decodeText(f.data[0], f.data[1:])
	tm.Map.Put(f.id, text)
}

// applyFullText decodes a COMM/USLT-shaped frame: encoding byte,
// 3-byte language code, null-terminated description, then text.
func applyFullText(f frame, set func(metadata.ID3v2TextKey, string)) {
	if len(f.data) < 4 {
		return
	}
	enc := f.data[0]
	lang := string(f.data[1:4])
	rest := f.data[4:]

	nullIdx := findTerminator(rest, enc)
	if nullIdx < 0 {
		set(metadata.ID3v2TextKey{Language: lang}, decodeText(enc, rest))
		return
	}
	desc := decodeText(enc, rest[:nullIdx])
	text := decodeText(enc, rest[nullIdx+terminatorWidth(enc):])
	set(metadata.ID3v2TextKey{Language: lang, Description: desc}, text)
}

func findTerminator(data []byte, enc byte) int {
	if enc == 1 || enc == 2 {
		for i := 0; i+1 < len(data); i += 2 {
			if data[i] == 0 && data[i+1] == 0 {
				return i
			}
		}
		return -1
	}
	return bytes.IndexByte(data, 0)
}

func terminatorWidth(enc byte) int {
	if enc == 1 || enc == 2 {
		return 2
	}
	return 1
}

// decodeText decodes a text frame body per the ID3v2 text-encoding
// byte: 0 ISO-8859-1, 1 UTF-16 with BOM, 2 UTF-16BE, 3 UTF-8.
func decodeText(enc byte, data []byte) string {
	switch enc {
	case 1:
		return decodeUTF16(data, true)
	case 2:
		return decodeUTF16(data, false)
	case 3:
		return trimTrailingNUL(string(data))
	default:
		return latin1ToUTF8(trimLatin1NUL(data))
	}
}

func trimTrailingNUL(s string) string {
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}

func trimLatin1NUL(b []byte) []byte {
	for len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	return b
}

func latin1ToUTF8(b []byte) string {
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs)
}

// decodeUTF16 decodes data as UTF-16, honoring a leading byte-order
// mark when bomAllowed is true (encoding byte 1); encoding byte 2
// carries no BOM and is always big-endian.
func decodeUTF16(data []byte, bomAllowed bool) string {
	bigEndian := true
	if bomAllowed && len(data) >= 2 {
		switch {
		case data[0] == 0xff && data[1] == 0xfe:
			bigEndian = false
			data = data[2:]
		case data[0] == 0xfe && data[1] == 0xff:
			data = data[2:]
		}
	}
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		if bigEndian {
			units[i] = uint16(data[i*2])<<8 | uint16(data[i*2+1])
		} else {
			units[i] = uint16(data[i*2]) | uint16(data[i*2+1])<<8
		}
	}
	return trimTrailingNUL(string(utf16.Decode(units)))
}
