package tokenize

import (
	"strings"
	"unicode"
)

// Token is a normalized unit of query text. Pos is the token's index in the
// original token sequence; downstream span resolution relies on it, so tokens
// are never reordered or mutated after creation.
type Token struct {
	Text string
	Pos  int
}

// Tokenize splits a raw query string into ordered, lowercase alphanumeric
// tokens. Standalone punctuation is dropped; numeric substrings like "2022"
// become their own tokens. Empty or whitespace-only input yields an empty
// sequence, which downstream layers read as "no filters requested".
func Tokenize(text string) []Token {
	var tokens []Token
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		tokens = append(tokens, Token{Text: current.String(), Pos: len(tokens)})
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// Texts returns just the token strings, in order.
func Texts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

// Normalize runs text through the tokenizer and rejoins the tokens with
// single spaces. Vocabulary aliases are normalized this way at load time so
// that "pick-up truck" and "pick up truck" index identically.
func Normalize(text string) string {
	return strings.Join(Texts(Tokenize(text)), " ")
}

// IsNumeric reports whether the token consists only of digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
