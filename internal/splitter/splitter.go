// Package splitter splits extracted text into overlapping chunks using
// recursive separator splitting: paragraph breaks first, then line breaks,
// then spaces, then a hard rune cut.
package splitter

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter splits text into chunks of at most chunkSize runes, with
// chunkOverlap runes shared between adjacent chunks. Splitting is
// deterministic: the same input and parameters always yield the same chunks.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// New creates a splitter. chunkOverlap must be non-negative and strictly
// smaller than chunkSize.
func New(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", chunkOverlap, chunkSize)
	}
	return &Splitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}, nil
}

// Split returns the ordered chunks of text. Text shorter than the chunk size
// yields exactly one chunk, unmodified. Whitespace-only input yields nothing.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	return s.split(text, s.separators)
}

// split recursively splits text on the highest-priority separator it contains,
// subdividing only fragments that still exceed the chunk size.
func (s *Splitter) split(text string, seps []string) []string {
	sep, rest := chooseSeparator(text, seps)
	if sep == "" {
		return s.cutRunes(text)
	}

	var final []string
	var pending []string
	for _, piece := range strings.Split(text, sep) {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) <= s.chunkSize {
			pending = append(pending, piece)
			continue
		}
		if len(pending) > 0 {
			final = append(final, s.merge(pending, sep)...)
			pending = nil
		}
		if len(rest) == 0 {
			final = append(final, s.cutRunes(piece)...)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(pending) > 0 {
		final = append(final, s.merge(pending, sep)...)
	}
	return final
}

// merge greedily packs consecutive fragments into chunks of at most chunkSize
// runes, carrying a tail of at most chunkOverlap runes into the next chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)
	var chunks []string
	var window []string
	total := 0
	for _, piece := range pieces {
		pl := utf8.RuneCountInString(piece)
		add := pl
		if len(window) > 0 {
			add += sepLen
		}
		if total+add > s.chunkSize && len(window) > 0 {
			chunks = appendChunk(chunks, strings.Join(window, sep))
			for len(window) > 0 && (total > s.chunkOverlap || total+add > s.chunkSize) {
				total -= utf8.RuneCountInString(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
				add = pl
				if len(window) > 0 {
					add += sepLen
				}
			}
		}
		window = append(window, piece)
		total += add
	}
	if len(window) > 0 {
		chunks = appendChunk(chunks, strings.Join(window, sep))
	}
	return chunks
}

// cutRunes slices text into fixed-size rune windows stepping by size-overlap.
func (s *Splitter) cutRunes(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	var out []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = appendChunk(out, string(runes[i:end]))
		if end == len(runes) {
			break
		}
	}
	return out
}

// chooseSeparator returns the first separator present in text and the lower
// priority separators remaining after it. The empty separator always matches.
func chooseSeparator(text string, seps []string) (string, []string) {
	for i, cand := range seps {
		if cand == "" {
			return "", nil
		}
		if strings.Contains(text, cand) {
			return cand, seps[i+1:]
		}
	}
	return "", nil
}

func appendChunk(chunks []string, chunk string) []string {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return chunks
	}
	return append(chunks, chunk)
}
