package match

import "github.com/cognicore/crashsearch/pkg/crashsearch/vocab"

// Candidate is one recognized vocabulary hit: a token span [Start, End) that
// matched an alias of Canonical in Category. Confidence is 1.0 for exact
// matches and the normalized similarity for fuzzy ones.
type Candidate struct {
	Category   vocab.Category
	Canonical  string
	Start      int
	End        int
	Confidence float64
}

// Span returns the number of tokens the candidate covers.
func (c Candidate) Span() int { return c.End - c.Start }

// Overlaps reports whether two candidates cover any common token index.
func (c Candidate) Overlaps(other Candidate) bool {
	return c.Start < other.End && other.Start < c.End
}

// Better is the total order used for ambiguity resolution: higher confidence
// first, then longer span, then earlier start position. Canonical value is the
// final key only so that sorting is fully deterministic on pathological ties.
func Better(a, b Candidate) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Span() != b.Span() {
		return a.Span() > b.Span()
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.Canonical < b.Canonical
}
