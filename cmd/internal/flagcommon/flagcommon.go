// Package flagcommon defines the flag.Value adapters shared by
// tagcollate's commands: a duplicate-tag strategy, a variant
// prioritization order, and last-resort variant overrides.
package flagcommon

import (
	"flag"
	"fmt"
	"strings"

	"go.senan.xyz/tagcollate/collate"
	"go.senan.xyz/tagcollate/metadata"
)

var _ flag.Value = (*strategyParser)(nil)
var _ flag.Value = (*orderParser)(nil)
var _ flag.Value = (*lastResortParser)(nil)

// Strategy registers -duplicate-strategy, defaulting to prioritize_best.
func Strategy() *collate.DuplicateTagStrategy {
	strategy := collate.PrioritizeBest
	flag.Var(&strategyParser{&strategy}, "duplicate-strategy", "How to resolve multiple tag blocks of the same format: prioritize_best, prioritize_first, or ignore_duplicates")
	return &strategy
}

// Prioritization registers -variant-order and -last-resort (stackable),
// defaulting to metadata.DefaultPrioritization().
func Prioritization() *metadata.Prioritization {
	p := metadata.DefaultPrioritization()
	flag.Var(&orderParser{&p}, "variant-order", "Comma-separated variant order, highest priority first, e.g. mp4,flac,vorbis,id3v2,ape,id3v1")
	flag.Var(&lastResortParser{&p}, "last-resort", "Mark a variant as last-resort, consulted only when nothing else contributed a value (stackable)")
	return &p
}

var variantNames = map[string]metadata.Variant{
	"id3v1":  metadata.ID3v1,
	"id3v2":  metadata.ID3v2,
	"flac":   metadata.FLAC,
	"vorbis": metadata.Vorbis,
	"ape":    metadata.APE,
	"mp4":    metadata.MP4,
}

func parseVariant(name string) (metadata.Variant, error) {
	v, ok := variantNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown variant %q", name)
	}
	return v, nil
}

type strategyParser struct{ strategy *collate.DuplicateTagStrategy }

func (s *strategyParser) Set(value string) error {
	switch value {
	case "prioritize_best":
		*s.strategy = collate.PrioritizeBest
	case "prioritize_first":
		*s.strategy = collate.PrioritizeFirst
	case "ignore_duplicates":
		*s.strategy = collate.IgnoreDuplicates
	default:
		return fmt.Errorf("unknown duplicate strategy %q", value)
	}
	return nil
}

func (s strategyParser) String() string {
	if s.strategy == nil {
		return ""
	}
	switch *s.strategy {
	case collate.PrioritizeFirst:
		return "prioritize_first"
	case collate.IgnoreDuplicates:
		return "ignore_duplicates"
	default:
		return "prioritize_best"
	}
}

type orderParser struct{ p *metadata.Prioritization }

func (o *orderParser) Set(value string) error {
	var order []metadata.Variant
	for _, name := range strings.Split(value, ",") {
		v, err := parseVariant(name)
		if err != nil {
			return err
		}
		order = append(order, v)
	}
	o.p.Order = order
	return nil
}

func (o orderParser) String() string {
	if o.p == nil {
		return ""
	}
	names := make([]string, len(o.p.Order))
	for i, v := range o.p.Order {
		names[i] = v.String()
	}
	return strings.Join(names, ",")
}

type lastResortParser struct{ p *metadata.Prioritization }

func (l *lastResortParser) Set(value string) error {
	v, err := parseVariant(value)
	if err != nil {
		return err
	}
	if l.p.Priority == nil {
		l.p.Priority = map[metadata.Variant]metadata.Priority{}
	}
	l.p.Priority[v] = metadata.LastResort
	return nil
}

func (l lastResortParser) String() string {
	if l.p == nil {
		return ""
	}
	var names []string
	for v, pr := range l.p.Priority {
		if pr == metadata.LastResort {
			names = append(names, v.String())
		}
	}
	return strings.Join(names, ",")
}
