package collate

import "go.senan.xyz/tagcollate/metadata"

// buildPermutation produces tag_indexes_by_priority: the order in which
// GetPrioritizedValue consults tag blocks. It walks prioritization.Order
// once, and for each variant resolves that variant's same-format tag
// blocks according to strategy.
func buildPermutation(tags metadata.All, p metadata.Prioritization, strategy DuplicateTagStrategy) []int {
	var perm []int
	for _, v := range p.Order {
		idxs := tags.OfVariant(v)
		switch strategy {
		case PrioritizeFirst:
			perm = append(perm, idxs...)
		case IgnoreDuplicates:
			if len(idxs) > 0 {
				perm = append(perm, idxs[0])
			}
		default: // PrioritizeBest
			groupStart := len(perm)
			for _, idx := range idxs {
				perm = insertByFieldCount(perm, groupStart, idx, tags)
			}
		}
	}
	return perm
}

// insertByFieldCount inserts idx into perm[groupStart:] at the first
// position whose tag has strictly fewer populated fields than idx's tag,
// preserving file order among ties: idx only jumps ahead of tags with
// strictly fewer fields, never past one with an equal count.
//
// This is a placeholder heuristic (entry count as a proxy for tag
// quality), acknowledged as such by the tests pinning this exact
// behavior rather than some more sophisticated notion of "best".
func insertByFieldCount(perm []int, groupStart, idx int, tags metadata.All) []int {
	target := fieldCountForPrioritization(tags[idx])

	pos := groupStart
	for pos < len(perm) && fieldCountForPrioritization(tags[perm[pos]]) >= target {
		pos++
	}

	perm = append(perm, 0)
	copy(perm[pos+1:], perm[pos:])
	perm[pos] = idx
	return perm
}

// fieldCountForPrioritization is insertByFieldCount's comparison key:
// the number of populated key/value pairs on the tag block's map. Every
// TypedMetadata variant exposes its primary key/value data through the
// same Map field regardless of format, so unlike the nested
// metadata-struct split some formats have for auxiliary data, this is
// uniform across variants.
func fieldCountForPrioritization(t metadata.TypedMetadata) int {
	return t.Map.Len()
}
