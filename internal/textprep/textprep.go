// Package textprep cleans raw article text and splits it into overlapping
// sentence-bounded chunks sized for embedding.
package textprep

import (
	"regexp"
	"strings"
)

const (
	defaultMaxChars  = 1500
	defaultOverlap   = 200
	defaultMinLength = 100
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	// Terminal-punctuation splitter used when no smarter tokenizer applies.
	sentenceEnd = regexp.MustCompile(`[.!?]+["')\]]?\s+`)
)

// Preparer turns raw text into chunk strings under a character budget.
type Preparer struct {
	maxChars  int
	overlap   int
	minLength int
}

// NewPreparer validates the chunking parameters and applies defaults.
func NewPreparer(maxChars, overlap, minLength int) *Preparer {
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	if overlap < 0 {
		overlap = defaultOverlap
	}
	if overlap >= maxChars {
		overlap = maxChars / 4
	}
	if minLength <= 0 {
		minLength = defaultMinLength
	}
	return &Preparer{maxChars: maxChars, overlap: overlap, minLength: minLength}
}

// Clean collapses runs of whitespace and newlines into single spaces.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

// SplitSentences breaks cleaned text on terminal punctuation. It never
// fails: text without any boundary comes back as a single sentence.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	bounds := sentenceEnd.FindAllStringIndex(text, -1)
	if len(bounds) == 0 {
		return []string{text}
	}

	sentences := make([]string, 0, len(bounds)+1)
	start := 0
	for _, b := range bounds {
		sent := strings.TrimSpace(text[start:b[1]])
		if sent != "" {
			sentences = append(sentences, sent)
		}
		start = b[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// Prepare cleans raw text and returns ordered chunk strings. Text shorter
// than the minimum viable length yields no chunks. Sentences accumulate
// greedily until the budget would be exceeded; each subsequent chunk is
// seeded with the trailing sentences of its predecessor until the overlap
// length is covered, so the seed always starts on a sentence boundary.
func (p *Preparer) Prepare(raw string) []string {
	text := Clean(raw)
	if len(text) < p.minLength {
		return nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var cur []string
	seeded := 0

	for _, sent := range sentences {
		// Close the chunk only once it holds at least one fresh sentence,
		// so an oversized sentence still becomes its own chunk.
		if len(cur) > seeded && joinedLen(cur)+len(sent)+1 > p.maxChars {
			chunks = append(chunks, strings.Join(cur, " "))
			cur = p.overlapSeed(cur)
			seeded = len(cur)
		}
		cur = append(cur, sent)
	}
	if len(cur) > 0 {
		chunks = append(chunks, strings.Join(cur, " "))
	}
	return chunks
}

// overlapSeed walks the previous chunk's sentences backward until the
// configured overlap length is met, then rejoins them in forward order.
func (p *Preparer) overlapSeed(prev []string) []string {
	if p.overlap == 0 || len(prev) == 0 {
		return nil
	}
	total := 0
	i := len(prev)
	for i > 0 {
		total += len(prev[i-1]) + 1
		i--
		if total >= p.overlap {
			break
		}
	}
	seed := make([]string, len(prev)-i)
	copy(seed, prev[i:])
	return seed
}

func joinedLen(parts []string) int {
	if len(parts) == 0 {
		return 0
	}
	n := len(parts) - 1
	for _, s := range parts {
		n += len(s)
	}
	return n
}
