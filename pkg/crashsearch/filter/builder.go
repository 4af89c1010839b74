package filter

import (
	"sort"
	"strconv"

	"github.com/cognicore/crashsearch/pkg/crashsearch/match"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// Builder turns candidate matches into a Set, resolving ambiguity
// deterministically. It holds only read-only state and is safe for
// concurrent use.
type Builder struct {
	vocabs *vocab.Vocabularies
}

// NewBuilder creates a builder validating against the given vocabularies.
func NewBuilder(vocabs *vocab.Vocabularies) *Builder {
	return &Builder{vocabs: vocabs}
}

// Build groups candidates by category and selects, per category, the best
// non-overlapping candidates under the match.Better total order. Distinct
// values from non-overlapping spans all survive (OR semantics). Candidates
// whose canonical is absent from the vocabulary, and years outside the
// dataset's coverage, are dropped. Build never fails: worst case it returns
// an empty Set.
func (b *Builder) Build(candidates []match.Candidate) Set {
	byCategory := make(map[vocab.Category][]match.Candidate)
	for _, c := range candidates {
		if !b.admissible(c) {
			continue
		}
		byCategory[c.Category] = append(byCategory[c.Category], c)
	}

	values := make(map[vocab.Category][]string, len(byCategory))
	for cat, cands := range byCategory {
		sort.Slice(cands, func(i, j int) bool { return match.Better(cands[i], cands[j]) })

		var accepted []match.Candidate
		for _, c := range cands {
			if overlapsAny(c, accepted) {
				continue
			}
			accepted = append(accepted, c)
		}

		for _, c := range accepted {
			values[cat] = append(values[cat], c.Canonical)
		}
	}

	return NewSet(values)
}

func (b *Builder) admissible(c match.Candidate) bool {
	if !b.vocabs.Contains(c.Category, c.Canonical) {
		return false
	}
	if c.Category == vocab.Year {
		year, err := strconv.Atoi(c.Canonical)
		if err != nil {
			return false
		}
		if min, max, ok := b.vocabs.YearRange(); ok && (year < min || year > max) {
			return false
		}
	}
	return true
}

func overlapsAny(c match.Candidate, accepted []match.Candidate) bool {
	for _, a := range accepted {
		if c.Overlaps(a) {
			return true
		}
	}
	return false
}
