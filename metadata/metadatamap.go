// Package metadata defines the tag-block shapes a collator reconciles:
// an ordered multimap of raw key/value pairs, a closed set of format
// variants, and the per-file sequence of tag blocks those variants appear
// in.
package metadata

// entry is one raw key/value pair in the order it was appended.
type entry struct {
	key, value string
}

// Map is an ordered, append-only multimap from raw tag key to one or more
// raw values. Keys are not unique: duplicates are not coalesced here, so
// callers that care about "the best" value among duplicates must choose
// one themselves (that choice is the Collator's job, not this type's).
//
// Keys and values are borrowed byte slices owned by whatever parser built
// the Map; Map itself never trims, folds, or normalizes them.
type Map struct {
	entries []entry
}

// Put appends a key/value pair. key must not be empty.
func (m *Map) Put(key, value string) {
	if key == "" {
		panic("metadata: empty key")
	}
	m.entries = append(m.entries, entry{key, value})
}

// GetFirst returns the first value whose key is byte-equal to key, and
// whether one was found.
func (m *Map) GetFirst(key string) (string, bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return "", false
}

// Values returns every value for key, in insertion order.
func (m *Map) Values(key string) []string {
	var vs []string
	for _, e := range m.entries {
		if e.key == key {
			vs = append(vs, e.value)
		}
	}
	return vs
}

// Len returns the total number of key/value pairs, counting duplicate
// keys separately.
func (m *Map) Len() int {
	return len(m.entries)
}
