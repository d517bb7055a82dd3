// Package chunker splits document content into overlapping passages bounded
// by a target size. Splitting is length-based, not token-based, and never
// cuts inside a paragraph except through the overlap carry-over.
package chunker

import (
	"regexp"
	"strings"
)

// MinChunkLength is the minimum passage length kept after trimming; shorter
// chunks carry too little signal to embed usefully and are discarded.
const MinChunkLength = 40

var paragraphSplit = regexp.MustCompile(`\n{2,}`)

// Chunker accumulates paragraphs greedily up to a target size, carrying a
// character overlap from each closed chunk into the next.
type Chunker struct {
	targetSize int
	overlap    int
}

// New creates a chunker. targetSize bounds the chunk length in runes;
// overlap is the number of trailing runes carried into the next chunk.
func New(targetSize, overlap int) *Chunker {
	if targetSize <= 0 {
		targetSize = 900
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Chunker{targetSize: targetSize, overlap: overlap}
}

// Split chunks content into trimmed passages of at least MinChunkLength
// runes. Empty or whitespace-only content yields no chunks. A single
// paragraph longer than the target size is emitted whole: the split
// condition requires a non-empty buffer, so there is no hard truncation.
func (c *Chunker) Split(content string) []string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" {
		return nil
	}

	var paragraphs []string
	for _, p := range paragraphSplit.Split(content, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	current := ""

	for _, paragraph := range paragraphs {
		candidate := paragraph
		if current != "" {
			candidate = current + "\n\n" + paragraph
		}

		if runeLen(candidate) > c.targetSize && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))

			if c.overlap > 0 {
				current = tail(current, c.overlap) + "\n\n" + paragraph
			} else {
				current = paragraph
			}
			continue
		}

		current = candidate
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	kept := chunks[:0]
	for _, chunk := range chunks {
		if runeLen(chunk) >= MinChunkLength {
			kept = append(kept, chunk)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}

// tail returns the last n runes of s.
func tail(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

func runeLen(s string) int {
	return len([]rune(s))
}
