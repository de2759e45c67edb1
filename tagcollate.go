// Package tagcollate reads the tag blocks a file carries (possibly
// several, possibly of different formats) into a metadata.All. It
// dispatches to the format parsers under formats/... by file extension;
// collating the result is left to the caller (see collate.New).
package tagcollate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.senan.xyz/tagcollate/formats/ape"
	"go.senan.xyz/tagcollate/formats/flac"
	"go.senan.xyz/tagcollate/formats/id3v1"
	"go.senan.xyz/tagcollate/formats/id3v2"
	"go.senan.xyz/tagcollate/formats/mp4"
	"go.senan.xyz/tagcollate/metadata"
)

// ErrUnsupportedExtension is returned by ReadFile for a file extension
// none of the format parsers claim.
type ErrUnsupportedExtension struct{ Ext string }

func (e ErrUnsupportedExtension) Error() string {
	return fmt.Sprintf("tagcollate: unsupported file extension %q", e.Ext)
}

// ReadFile opens path and returns every tag block it carries, in file-
// discovery order: an MP3 with both a leading ID3v2 tag and a trailing
// ID3v1 tag contributes two blocks.
func ReadFile(path string) (metadata.All, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	size := info.Size()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".flac":
		return readFLAC(f)
	case ".mp3":
		return readMP3(f, size)
	case ".mp4", ".m4a", ".m4b":
		return readMP4(f, size)
	case ".ape":
		return readAPE(f, size)
	default:
		return nil, ErrUnsupportedExtension{Ext: ext}
	}
}

func readFLAC(f *os.File) (metadata.All, error) {
	tm, err := flac.ReadVorbisComment(f)
	if err != nil {
		return nil, fmt.Errorf("read flac: %w", err)
	}
	var all metadata.All
	if tm != nil {
		all = append(all, *tm)
	}
	return all, nil
}

func readMP3(f *os.File, size int64) (metadata.All, error) {
	var all metadata.All
	if tm, err := id3v2.Parse(f); err == nil {
		all = append(all, *tm)
	}
	if tm, err := id3v1.Parse(f, size); err == nil {
		all = append(all, *tm)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("read mp3: no id3v1 or id3v2 tag found")
	}
	return all, nil
}

func readMP4(f *os.File, size int64) (metadata.All, error) {
	tm, err := mp4.Parse(f, size)
	if err != nil {
		return nil, fmt.Errorf("read mp4: %w", err)
	}
	return metadata.All{*tm}, nil
}

func readAPE(f *os.File, size int64) (metadata.All, error) {
	tm, err := ape.Parse(f, size)
	if err != nil {
		return nil, fmt.Errorf("read ape: %w", err)
	}
	return metadata.All{*tm}, nil
}
