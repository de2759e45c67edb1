// Package textset implements an append-only ordered set that deduplicates
// strings modulo trimming, a Windows-1251-misread-as-Latin-1 recovery
// heuristic, Unicode case folding, and NFC normalization.
package textset

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"go.senan.xyz/tagcollate/charset"
)

var folder = cases.Fold()

// Set is an ordered multiset of strings, behaving as a set under the
// canonical form (trim -> optional Windows-1251 recovery -> case fold ->
// NFC). The zero value is ready to use.
//
// Values() reflects first-seen insertion order under that relation: the
// first pre-canonical form seen for a class becomes its representative
// and is never overwritten by a later equivalent Put.
type Set struct {
	values []string
	index  map[string]int
}

// Put inserts value, ignoring it if it is empty after trimming ASCII
// space and NUL from both ends, or if its canonical form has already
// been seen.
func (s *Set) Put(value string) {
	trimmed := strings.Trim(value, " \x00")
	if trimmed == "" {
		return
	}

	representative := trimmed
	if charset.IsAllLatin1(trimmed) {
		latin1 := charset.UTF8ToLatin1(trimmed)
		if charset.CouldBeWindows1251(latin1) {
			if recovered, err := charset.Windows1251ToUTF8(latin1); err == nil {
				representative = recovered
			}
		}
	}

	canonical := norm.NFC.String(folder.String(representative))

	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[canonical]; ok {
		return
	}
	s.index[canonical] = len(s.values)
	s.values = append(s.values, representative)
}

// Values returns the deduplicated representatives in first-seen order.
func (s *Set) Values() []string {
	return s.values
}

// Count returns len(Values()).
func (s *Set) Count() int {
	return len(s.values)
}
