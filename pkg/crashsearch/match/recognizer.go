package match

import (
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"github.com/cognicore/crashsearch/pkg/crashsearch/tokenize"
	"github.com/cognicore/crashsearch/pkg/crashsearch/vocab"
)

// maxWindow caps how many consecutive tokens a single alias may span.
const maxWindow = 3

// minFuzzyRunes is the shortest window text eligible for fuzzy matching.
// Below four runes a single edit exceeds any sane threshold, and short
// abbreviations ("bk", "bx") are one edit apart from each other.
const minFuzzyRunes = 4

// DefaultFuzzyThreshold is the maximum normalized edit distance (relative to
// the longer string) accepted as a fuzzy alias match.
const DefaultFuzzyThreshold = 0.2

// Recognizer scans token windows against the vocabulary tables. It holds only
// read-only state and is safe for concurrent use.
type Recognizer struct {
	vocabs    *vocab.Vocabularies
	threshold float64
	windows   map[vocab.Category]int
}

// NewRecognizer builds a recognizer over the given vocabularies. threshold is
// the maximum normalized edit distance for fuzzy matches; pass 0 to use
// DefaultFuzzyThreshold.
func NewRecognizer(vocabs *vocab.Vocabularies, threshold float64) *Recognizer {
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	windows := make(map[vocab.Category]int)
	for _, cat := range vocab.Categories() {
		if voc := vocabs.Category(cat); voc != nil {
			w := voc.MaxWindow()
			if w > maxWindow {
				w = maxWindow
			}
			windows[cat] = w
		}
	}
	return &Recognizer{vocabs: vocabs, threshold: threshold, windows: windows}
}

// Recognize returns every candidate match over the token sequence, longest
// windows first. Overlapping and conflicting candidates are all included;
// resolution is the filter builder's job.
func (r *Recognizer) Recognize(tokens []tokenize.Token) []Candidate {
	var out []Candidate

	for _, cat := range vocab.Categories() {
		voc := r.vocabs.Category(cat)
		if voc == nil {
			continue
		}
		window := r.windows[cat]

		for n := window; n >= 1; n-- {
			for i := 0; i+n <= len(tokens); i++ {
				text := windowText(tokens[i : i+n])
				if c, ok := r.matchWindow(cat, voc, text, i, i+n); ok {
					out = append(out, c)
				}
			}
		}
	}

	return out
}

func (r *Recognizer) matchWindow(cat vocab.Category, voc *vocab.Vocabulary, text string, start, end int) (Candidate, bool) {
	if canonical, ok := voc.Lookup(text); ok {
		return Candidate{Category: cat, Canonical: canonical, Start: start, End: end, Confidence: 1.0}, true
	}

	// Numeric windows never fuzzy-match: one edit turns a valid year into a
	// different valid year. Same for the year category as a whole.
	if cat == vocab.Year || tokenize.IsNumeric(text) || utf8.RuneCountInString(text) < minFuzzyRunes {
		return Candidate{}, false
	}

	best := Candidate{}
	found := false
	voc.Forms(func(form, canonical string) {
		if utf8.RuneCountInString(form) < minFuzzyRunes {
			return
		}
		sim := similarity(text, form)
		if 1.0-sim > r.threshold {
			return
		}
		c := Candidate{Category: cat, Canonical: canonical, Start: start, End: end, Confidence: sim}
		if !found || Better(c, best) {
			best = c
			found = true
		}
	})
	return best, found
}

// similarity returns 1 - dist/longerLen over runes.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longer := utf8.RuneCountInString(a)
	if l := utf8.RuneCountInString(b); l > longer {
		longer = l
	}
	if longer == 0 {
		return 1.0
	}
	dist := levenshtein.Distance(a, b, nil)
	return 1.0 - float64(dist)/float64(longer)
}

func windowText(tokens []tokenize.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}
