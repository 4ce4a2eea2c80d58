package tfidf

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC and Unicode case folding so that "Ｈｅｌｌｏ", "HELLO"
// and "hello" produce the same tokens. A Caser holds state, so each call gets its own.
func Normalize(text string) string {
	return cases.Fold().String(norm.NFKC.String(text))
}

// Tokenize splits normalized text into runs of word characters at least
// minLen runes long. Everything else separates tokens.
func Tokenize(text string, minLen int) []string {
	if minLen < 1 {
		minLen = 1
	}
	fields := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !isWordRune(r)
	})

	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NGrams returns the contiguous token n-grams of every order in [minN, maxN],
// joined by single spaces.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	var out []string
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}
