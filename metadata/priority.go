package metadata

// Priority marks whether a variant's values should only be used when no
// higher-priority variant contributed anything for the field being
// queried.
type Priority int

const (
	Normal Priority = iota
	LastResort
)

// Prioritization is a variant ordering plus a per-variant Priority. It
// drives the order in which the Collator consults tag blocks.
type Prioritization struct {
	Order    []Variant
	Priority map[Variant]Priority
}

// PriorityOf returns the configured Priority for v, defaulting to Normal
// for any variant with no explicit entry.
func (p Prioritization) PriorityOf(v Variant) Priority {
	return p.Priority[v]
}

// DefaultPrioritization is the spec-mandated default: mp4, flac, vorbis,
// id3v2, ape, id3v1, with id3v1 as last resort.
func DefaultPrioritization() Prioritization {
	return Prioritization{
		Order: []Variant{MP4, FLAC, Vorbis, ID3v2, APE, ID3v1},
		Priority: map[Variant]Priority{
			ID3v1: LastResort,
		},
	}
}
