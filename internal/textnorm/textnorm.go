// Package textnorm normalizes question text and keyword rules so that the
// catalog validator and the lexicon agree on what a rule can match.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// keptSymbols survive normalization because they carry meaning in technical
// questions: hyphenated terms, signs, ratios, percentages and degrees.
const keptSymbols = "-+/%°'"

// Normalize prepares text for matching. It applies NFKC (so the ohm sign and
// micro sign fold onto their Greek letters), Unicode case folding, replaces
// punctuation with spaces and separates numbers from attached units
// ("10kΩ" becomes "10 kω"). A dot survives only between two digits.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	// A Caser is stateful; build one per call so Normalize stays goroutine-safe.
	s = cases.Fold().String(s)

	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	pendingSpace := false
	var prev rune
	for i, r := range runes {
		if r == '‘' || r == '’' {
			r = '\''
		}

		keep := unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(keptSymbols, r)
		if r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			keep = true
		}
		if !keep {
			pendingSpace = true
			continue
		}

		if unicode.IsDigit(prev) && unicode.IsLetter(r) && !pendingSpace {
			pendingSpace = true
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

// Fields splits normalized text into the whole words token-set rules match
// against. Kept symbols other than the apostrophe separate words.
func Fields(normalized string) []string {
	return strings.FieldsFunc(normalized, isSeparator)
}

// Token normalizes a token-set entry. It fails unless the token is exactly
// one word as Fields would see it.
func Token(tok string) (string, error) {
	n := Normalize(tok)
	if f := Fields(n); len(f) != 1 || f[0] != n {
		return "", fmt.Errorf("token %q does not normalize to a single word", tok)
	}
	return n, nil
}

// Phrase normalizes a phrase rule into its words. Hyphens separate words so
// "flip-flop" and "flip flop" compile alike.
func Phrase(phrase string) ([]string, error) {
	parts := strings.FieldsFunc(Normalize(phrase), func(r rune) bool { return r == ' ' || r == '-' })
	if len(parts) == 0 {
		return nil, fmt.Errorf("phrase %q is empty after normalization", phrase)
	}
	return parts, nil
}

func isSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'')
}
