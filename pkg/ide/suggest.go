package ide

import (
	"github.com/agnivade/levenshtein"

	"github.com/graphlang/gqlanalyzer/pkg/hir"
)

// suggestName implements SPEC_FULL.md §4.9a's "did you mean" helper:
// when a fragment or type name a hover lookup needs doesn't exist,
// propose the closest candidate by edit distance rather than silently
// returning nothing, the way original_source/crates/ide/src/helpers.rs
// does for unknown fragment/type names.
func suggestName(candidates []string, target string) string {
	best := ""
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(target, c)
		if bestDist == -1 || d < bestDist {
			best, bestDist = c, d
		}
	}
	// Only surface the suggestion when it's plausibly a typo, not an
	// unrelated name — half the target's length plus two is a generous bound.
	if best == "" || bestDist > (len(target)/2+2) {
		return ""
	}
	return best
}

func fragmentNames(byName map[string]hir.FragmentStructure) []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	return out
}

func typeNames(byName map[string]hir.TypeDef) []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	return out
}
