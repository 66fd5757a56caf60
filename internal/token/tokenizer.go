package token

import "regexp"

// wordPattern splits text into runs of word characters, runs of whitespace,
// and individual punctuation/symbol characters — the same three-way split
// MediaWiki's own word tokenizer makes, just expressed with the standard
// library instead of a dedicated tokenizer package (§B.2 of SPEC_FULL.md:
// not listed among spec.md's external collaborators, so it lives in-tree).
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+|[ \t]+|\r?\n|.`)

// Tokenize splits text into an ordered list of token strings. Concatenating
// the result reproduces text exactly (the round-trip property in spec §8).
func Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}
