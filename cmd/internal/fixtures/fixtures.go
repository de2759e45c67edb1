// Package fixtures builds tiny synthetic audio files for CLI
// integration tests: just enough of each format's tag container to
// exercise formats/... without needing real encoded audio.
package fixtures

import (
	"bytes"
	"encoding/binary"
	"flag"
	"log"
	"os"
	"sort"
	"strings"
)

// Write is a testscript subcommand: `write <format> <path> [KEY=VALUE]...`.
// format is one of flac, mp3, mp4, ape.
func Write() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		log.Fatalf("usage: write <format> <path> [KEY=VALUE]...")
	}
	format, path := args[0], args[1]
	tags := parseKV(args[2:])

	var data []byte
	switch format {
	case "flac":
		data = FLAC(tags)
	case "mp3":
		data = MP3(tags)
	case "mp4":
		data = MP4(tags)
	case "ape":
		data = APE(tags)
	default:
		log.Fatalf("unknown fixture format %q", format)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("write fixture: %v", err)
	}
}

func parseKV(args []string) map[string]string {
	m := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			log.Fatalf("bad tag %q, expected KEY=VALUE", a)
		}
		m[k] = v
	}
	return m
}

// sortedKeys gives fixtures a deterministic tag order, for repeatable
// test output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FLAC builds a minimal FLAC stream: the "fLaC" marker followed by a
// single, last, vorbis_comment block holding tags.
func FLAC(tags map[string]string) []byte {
	buf := bytes.NewBuffer(nil)
	buf.WriteString("fLaC")

	vc := bytes.NewBuffer(nil)
	writeU32LE(vc, 0) // empty vendor string
	writeU32LE(vc, uint32(len(tags)))
	for _, k := range sortedKeys(tags) {
		comment := k + "=" + tags[k]
		writeU32LE(vc, uint32(len(comment)))
		vc.WriteString(comment)
	}

	buf.Write(blockHeader(true, 4, vc.Len()))
	buf.Write(vc.Bytes())
	buf.WriteString("...audio-frames...")
	return buf.Bytes()
}

func blockHeader(isLast bool, blockType byte, length int) []byte {
	b0 := blockType & 0x7f
	if isLast {
		b0 |= 0x80
	}
	return []byte{b0, byte(length >> 16), byte(length >> 8), byte(length)}
}

func writeU32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

var id3v2FrameIDs = map[string]string{
	"artist": "TPE1",
	"album":  "TALB",
	"title":  "TIT2",
	"genre":  "TCON",
}

// MP3 builds a minimal MP3-shaped file: a leading ID3v2.4 tag with
// text frames for the tags given under their id3v2/vorbis-style key
// names (artist, album, title, genre), followed by a trailing ID3v1
// tag carrying title, artist, album, year and comment truncated to
// ID3v1's fixed widths, with its genre byte always 255 (unknown).
func MP3(tags map[string]string) []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write(id3v2Tag(tags))
	buf.WriteString("...mpeg-frames...")
	buf.Write(id3v1Tag(tags))
	return buf.Bytes()
}

func id3v2Tag(tags map[string]string) []byte {
	body := bytes.NewBuffer(nil)
	for _, k := range sortedKeys(tags) {
		id, ok := id3v2FrameIDs[k]
		if !ok {
			continue
		}
		frame := append([]byte{3}, []byte(tags[k])...) // encoding 3 = UTF-8
		body.WriteString(id)
		body.Write(synchsafe(uint32(len(frame))))
		body.Write([]byte{0, 0})
		body.Write(frame)
	}

	buf := bytes.NewBuffer(nil)
	buf.WriteString("ID3")
	buf.Write([]byte{4, 0, 0}) // major version 4, revision 0, flags 0
	buf.Write(synchsafe(uint32(body.Len())))
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func synchsafe(n uint32) []byte {
	return []byte{
		byte((n >> 21) & 0x7f),
		byte((n >> 14) & 0x7f),
		byte((n >> 7) & 0x7f),
		byte(n & 0x7f),
	}
}

func id3v1Tag(tags map[string]string) []byte {
	buf := make([]byte, 128)
	copy(buf[0:3], "TAG")
	putFixed(buf[3:33], tags["title"])
	putFixed(buf[33:63], tags["artist"])
	putFixed(buf[63:93], tags["album"])
	putFixed(buf[93:97], tags["year"])
	putFixed(buf[97:127], tags["comment"])
	buf[127] = 255 // "unknown" genre
	return buf
}

func putFixed(dst []byte, s string) {
	copy(dst, s)
}

var mp4AtomNames = map[string]string{
	"artist": "\xa9ART",
	"album":  "\xa9alb",
	"title":  "\xa9nam",
	"genre":  "\xa9gen",
}

// MP4 builds a minimal moov/udta/meta/ilst atom tree holding the given
// tags under their common-name keys (artist, album, title, genre).
func MP4(tags map[string]string) []byte {
	var ilstChildren bytes.Buffer
	for _, k := range sortedKeys(tags) {
		typ, ok := mp4AtomNames[k]
		if !ok {
			continue
		}
		ilstChildren.Write(mp4Box(typ, mp4DataAtom([]byte(tags[k]))))
	}

	ilst := mp4Box("ilst", ilstChildren.Bytes())
	meta := mp4Box("meta", append([]byte{0, 0, 0, 0}, ilst...))
	udta := mp4Box("udta", meta)
	moov := mp4Box("moov", udta)

	buf := bytes.NewBuffer(nil)
	buf.Write(mp4Box("ftyp", []byte("M4A isom\x00\x00\x02\x00M4A ")))
	buf.Write(moov)
	return buf.Bytes()
}

func mp4Box(typ string, payload []byte) []byte {
	buf := bytes.NewBuffer(nil)
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(8+len(payload)))
	buf.Write(size[:])
	buf.WriteString(typ)
	buf.Write(payload)
	return buf.Bytes()
}

func mp4DataAtom(value []byte) []byte {
	header := make([]byte, 8) // type indicator (4) + locale (4), zeroed for UTF-8 text
	return mp4Box("data", append(header, value...))
}

// APE builds a minimal APEv2 tag: a run of text items followed by the
// 32-byte footer.
func APE(tags map[string]string) []byte {
	var items bytes.Buffer
	count := 0
	for _, k := range sortedKeys(tags) {
		var sizeBuf, flagsBuf [4]byte
		binary.LittleEndian.PutUint32(sizeBuf[:], uint32(len(tags[k])))
		items.Write(sizeBuf[:])
		items.Write(flagsBuf[:]) // flags zero: UTF-8 text item
		items.WriteString(k)
		items.WriteByte(0)
		items.WriteString(tags[k])
		count++
	}

	footer := make([]byte, 32)
	copy(footer[0:8], "APETAGEX")
	binary.LittleEndian.PutUint32(footer[8:12], 2000)
	binary.LittleEndian.PutUint32(footer[12:16], uint32(items.Len()+32))
	binary.LittleEndian.PutUint32(footer[16:20], uint32(count))

	buf := bytes.NewBuffer(nil)
	buf.WriteString("...mpc-audio-frames...")
	buf.Write(items.Bytes())
	buf.Write(footer)
	return buf.Bytes()
}
