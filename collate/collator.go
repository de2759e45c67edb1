// Package collate implements the prioritization and selection algorithm
// that reconciles the tag blocks of a single file — possibly several of
// the same format, possibly disagreeing — into one canonical value or
// deduplicated value list per logical field.
package collate

import (
	"time"

	"github.com/araddon/dateparse"

	"go.senan.xyz/tagcollate/metadata"
	"go.senan.xyz/tagcollate/textset"
)

// DuplicateTagStrategy controls how the Collator orders multiple tag
// blocks of the same variant relative to each other.
type DuplicateTagStrategy int

const (
	// PrioritizeBest orders same-variant tag blocks by descending
	// populated-field count, falling back to file order on ties.
	PrioritizeBest DuplicateTagStrategy = iota
	// PrioritizeFirst keeps same-variant tag blocks in file order,
	// performing no reordering within the group.
	PrioritizeFirst
	// IgnoreDuplicates keeps only the first same-variant tag block,
	// making every later one invisible to GetPrioritizedValue;
	// GetValuesFromKeys still reads every block.
	IgnoreDuplicates
)

// Collator selects and merges field values across the tag blocks of a
// single file. It borrows its All and must not outlive it; All is never
// mutated.
type Collator struct {
	tags           metadata.All
	prioritization metadata.Prioritization
	byPriority     []int // indexes into tags, consultation order
}

// New builds a Collator over tags using p to order variants and strategy
// to resolve multiple tag blocks of the same variant.
func New(tags metadata.All, p metadata.Prioritization, strategy DuplicateTagStrategy) *Collator {
	return &Collator{
		tags:           tags,
		prioritization: p,
		byPriority:     buildPermutation(tags, p, strategy),
	}
}

// GetPrioritizedValue returns the single highest-priority value for
// field, honoring the Collator's DuplicateTagStrategy, or false if no
// consulted tag block carries it.
func (c *Collator) GetPrioritizedValue(field metadata.Field) (string, bool) {
	for _, idx := range c.byPriority {
		t := c.tags[idx]
		key, ok := field.Key(t.Variant)
		if !ok {
			continue
		}
		if v, ok := t.Map.GetFirst(key); ok {
			return v, true
		}
	}
	return "", false
}

// GetValuesFromKeys returns every distinct value for field across every
// tag block, deduplicated by a CollatedTextSet, in prioritization order.
// A LastResort variant is skipped entirely once any higher-priority
// variant has already contributed a value, regardless of duplicate-tag
// strategy — this accessor always walks prioritization.Order, not the
// permutation built for GetPrioritizedValue.
func (c *Collator) GetValuesFromKeys(field metadata.Field) []string {
	var set textset.Set
	for _, v := range c.prioritization.Order {
		if c.prioritization.PriorityOf(v) == metadata.LastResort && set.Count() > 0 {
			continue
		}
		for _, idx := range c.tags.OfVariant(v) {
			c.addValuesToSet(&set, field, idx)
		}
	}
	return set.Values()
}

func (c *Collator) addValuesToSet(set *textset.Set, field metadata.Field, idx int) {
	t := c.tags[idx]
	key, ok := field.Key(t.Variant)
	if !ok {
		return
	}
	if t.Variant == metadata.ID3v1 {
		// ID3v1 fields are fixed-width and single-valued by format; only
		// the first value for the key is meaningful.
		if v, ok := t.Map.GetFirst(key); ok {
			set.Put(v)
		}
		return
	}
	for _, v := range t.Map.Values(key) {
		set.Put(v)
	}
}

func (c *Collator) Artist() (string, bool)       { return c.GetPrioritizedValue(metadata.FieldArtist) }
func (c *Collator) Artists() []string            { return c.GetValuesFromKeys(metadata.FieldArtist) }
func (c *Collator) Album() (string, bool)        { return c.GetPrioritizedValue(metadata.FieldAlbum) }
func (c *Collator) Albums() []string             { return c.GetValuesFromKeys(metadata.FieldAlbum) }
func (c *Collator) Title() (string, bool)        { return c.GetPrioritizedValue(metadata.FieldTitle) }
func (c *Collator) Titles() []string             { return c.GetValuesFromKeys(metadata.FieldTitle) }
func (c *Collator) Genre() (string, bool)        { return c.GetPrioritizedValue(metadata.FieldGenre) }
func (c *Collator) Genres() []string             { return c.GetValuesFromKeys(metadata.FieldGenre) }
func (c *Collator) AlbumArtist() (string, bool)  { return c.GetPrioritizedValue(metadata.FieldAlbumArtist) }
func (c *Collator) AlbumArtists() []string       { return c.GetValuesFromKeys(metadata.FieldAlbumArtist) }
func (c *Collator) TrackNumber() (string, bool)  { return c.GetPrioritizedValue(metadata.FieldTrackNumber) }

// Date parses the prioritized raw date value with dateparse, since tag
// writers use wildly inconsistent date formats ("1999", "1999-03",
// "03/1999", full RFC3339, ...). The raw string accessor
// (GetPrioritizedValue(metadata.FieldDate)) remains authoritative; this
// is a best-effort convenience, not a replacement for it, and returns
// false rather than a zero time on either an absent field or a date
// dateparse can't make sense of.
func (c *Collator) Date() (time.Time, bool) { return c.parsedDate(metadata.FieldDate) }

// OriginalDate is the OriginalDate analogue of Date.
func (c *Collator) OriginalDate() (time.Time, bool) { return c.parsedDate(metadata.FieldOriginalDate) }

func (c *Collator) parsedDate(field metadata.Field) (time.Time, bool) {
	raw, ok := c.GetPrioritizedValue(field)
	if !ok {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
