// Package charset implements the encoding-recovery predicates the
// CollatedTextSet needs to undo a common corruption: a Windows-1251
// (Cyrillic) byte string that was misread as Latin-1 and re-encoded to
// UTF-8, one byte per code point, by whatever wrote the tag originally.
package charset

import (
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// IsAllLatin1 reports whether every code point in s is at most U+00FF,
// i.e. s could be the result of decoding a single-byte charset as
// Latin-1.
func IsAllLatin1(s string) bool {
	for _, r := range s {
		if r > 0x00FF {
			return false
		}
	}
	return true
}

// UTF8ToLatin1 reduces each code point of s (which must be all-Latin-1,
// see IsAllLatin1) to the single byte it represents.
func UTF8ToLatin1(s string) []byte {
	b := make([]byte, 0, len(s))
	for _, r := range s {
		b = append(b, byte(r))
	}
	return b
}

// Windows1251ToUTF8 decodes b as Windows-1251 text.
func Windows1251ToUTF8(b []byte) (string, error) {
	out, err := charmap.Windows1251.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// CouldBeWindows1251 reports whether b, reinterpreted as Windows-1251,
// decodes to text more plausible than its Latin-1 reading. Windows-1251
// is a single-byte charset, so decoding never fails outright, but most
// of its 0x80-0xFF range is assigned to Cyrillic letters: b is plausible
// Windows-1251 iff at least one byte in that range decodes to one and no
// such byte sits directly beside an ASCII letter (a high byte inside a
// Latin word, as in "foé", is far more likely an accented Latin letter).
// This matches the spec's contract that false positives are only
// acceptable for strings containing such a byte.
func CouldBeWindows1251(b []byte) bool {
	var anyHighByte bool
	for _, c := range b {
		if c >= 0x80 {
			anyHighByte = true
			break
		}
	}
	if !anyHighByte {
		return false
	}

	decoded, err := Windows1251ToUTF8(b)
	if err != nil {
		return false
	}
	runes := []rune(decoded)
	if len(runes) != len(b) {
		// single-byte charset: decoding is always 1 byte -> 1 rune
		return false
	}

	isASCIILetter := func(i int) bool {
		return i >= 0 && i < len(b) && (b[i] >= 'a' && b[i] <= 'z' || b[i] >= 'A' && b[i] <= 'Z')
	}
	var anyCyrillic bool
	for i, c := range b {
		if c < 0x80 || !unicode.Is(unicode.Cyrillic, runes[i]) {
			continue
		}
		if isASCIILetter(i-1) || isASCIILetter(i+1) {
			return false
		}
		anyCyrillic = true
	}
	return anyCyrillic
}
