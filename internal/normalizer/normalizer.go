// Package normalizer canonicalizes free text into the stable form used for
// embedding. The same function runs at index time and query time; any
// divergence between the two breaks similarity quality because the embedding
// provider is sensitive to surface form.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes text and removes combining marks, transliterating
// accented characters to their ASCII base form ("à" -> "a").
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ForEmbedding lowercases text, strips diacritics, replaces any character
// outside a conservative whitelist (letters, digits, whitespace and sentence
// punctuation) with a space, collapses runs of whitespace and trims. When the
// result would be empty it falls back to the trimmed original, so non-empty
// input never normalizes to an unusable empty string.
func ForEmbedding(text string) string {
	lowered := strings.ToLower(text)

	ascii, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		ascii = lowered
	}

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == ',', r == '-', r == ':', r == ';', r == '!', r == '?':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	normalized := strings.Join(strings.Fields(b.String()), " ")
	if normalized == "" {
		return strings.TrimSpace(text)
	}
	return normalized
}

// ForMatching is the stricter variant used by keyword and structured lookup:
// like ForEmbedding but without sentence punctuation, and without the
// original-text fallback. Matching against an empty haystack should fail,
// not match the raw input.
func ForMatching(text string) string {
	lowered := strings.ToLower(text)

	ascii, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		ascii = lowered
	}

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
