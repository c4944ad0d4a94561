package textsplitters

import "strings"

// Tokenizer converts between text and the token units UnitTokens splitting
// counts against. Implementations must be stateless or concurrency-safe.
type Tokenizer interface {
	Tokenize(text string) []string
	Detokenize(tokens []string) string
}

// WhitespaceTokenizer treats runs of whitespace as token boundaries and
// rejoins tokens with a single space; it is the default Tokenizer whenever
// UnitTokens is selected without one configured explicitly.
type WhitespaceTokenizer struct{}

func (WhitespaceTokenizer) Tokenize(text string) []string {
	return strings.Fields(text)
}

func (WhitespaceTokenizer) Detokenize(tokens []string) string {
	return strings.Join(tokens, " ")
}
