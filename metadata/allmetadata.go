package metadata

// Variant identifies the originating tag format. The set is closed: every
// switch over Variant in this module must be exhaustive, and adding a
// format means extending this type, the Field array shape, and the
// Prioritization default table together.
type Variant int

const (
	ID3v1 Variant = iota
	ID3v2
	FLAC
	Vorbis
	APE
	MP4

	numVariants
)

func (v Variant) String() string {
	switch v {
	case ID3v1:
		return "id3v1"
	case ID3v2:
		return "id3v2"
	case FLAC:
		return "flac"
	case Vorbis:
		return "vorbis"
	case APE:
		return "ape"
	case MP4:
		return "mp4"
	default:
		return "unknown"
	}
}

// TypedMetadata is one tag block extracted from a file: its Variant, the
// raw key/value Map it carries, and, for the variants that have
// format-specific data beyond a flat map (ID3v2, APE, FLAC), that extra
// data.
//
// ID3v2Extra and APEExtra are opaque to the Collator; they exist so
// callers that care about a format's headers or full-text tables
// (comment/lyric frames keyed by language and description, for example)
// can get at them without the Collator needing to understand them.
type TypedMetadata struct {
	Variant Variant
	Map     Map

	ID3v2Extra *ID3v2Extra
	APEExtra   *APEExtra
	FLACExtra  *FLACExtra
}

// ID3v2Extra carries the parsed ID3v2 header and any full-text frames
// (COMM/USLT) that don't fit the flat key/value Map, keyed by the
// frame's language+description pair.
type ID3v2Extra struct {
	MajorVersion int
	Comments     map[ID3v2TextKey]string
	Lyrics       map[ID3v2TextKey]string
}

// ID3v2TextKey identifies one COMM or USLT frame.
type ID3v2TextKey struct {
	Language, Description string
}

// APEExtra carries the parsed APEv2 footer and the keys of any binary
// items, which don't fit the flat key/value Map. Locator items are
// stored in the Map like text items.
type APEExtra struct {
	Version    int
	BinaryKeys []string
}

// FLACExtra carries the vendor string read from a vorbis_comment block's
// header. The Collator never reads it; it's retained purely because a
// caller inspecting a file's tags may want it and discarding something
// already in hand costs nothing to keep.
type FLACExtra struct {
	VendorString string
}

// All is the ordered sequence of tag blocks extracted from a single file,
// in file-discovery order. It is immutable for the lifetime of any
// Collator built over it.
type All []TypedMetadata

// OfVariant yields the indices of every tag block of the given variant,
// in file order.
func (a All) OfVariant(v Variant) []int {
	var idxs []int
	for i, t := range a {
		if t.Variant == v {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// CountDistinctVariants returns the number of distinct variants present,
// i.e. the count of tag blocks ignoring duplicates within a variant.
func (a All) CountDistinctVariants() int {
	var seen [numVariants]bool
	var n int
	for _, t := range a {
		if !seen[t.Variant] {
			seen[t.Variant] = true
			n++
		}
	}
	return n
}
