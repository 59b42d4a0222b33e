package splitter

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNew_RejectsBadOverlap(t *testing.T) {
	if _, err := New(100, 100); err == nil {
		t.Error("overlap == size should be rejected")
	}
	if _, err := New(100, 150); err == nil {
		t.Error("overlap > size should be rejected")
	}
	if _, err := New(0, 0); err == nil {
		t.Error("zero size should be rejected")
	}
	if _, err := New(100, 0); err != nil {
		t.Errorf("zero overlap should be valid: %v", err)
	}
}

func TestSplit_ShortTextPassesThrough(t *testing.T) {
	s, _ := New(1000, 200)
	text := "Paris is the capital of France."
	chunks := s.Split(text)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("short text should yield one unmodified chunk, got %v", chunks)
	}
}

func TestSplit_WhitespaceOnly(t *testing.T) {
	s, _ := New(100, 10)
	if chunks := s.Split("  \n\t \n"); chunks != nil {
		t.Errorf("whitespace-only text should yield nothing, got %v", chunks)
	}
}

func TestSplit_Deterministic(t *testing.T) {
	s, _ := New(50, 10)
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	a := s.Split(text)
	b := s.Split(text)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("chunk %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestSplit_RespectsChunkSize(t *testing.T) {
	s, _ := New(40, 8)
	text := strings.Repeat("alpha beta gamma delta epsilon ", 30)
	for i, ch := range s.Split(text) {
		if n := utf8.RuneCountInString(ch); n > 40 {
			t.Errorf("chunk %d has %d runes, limit 40", i, n)
		}
	}
}

func TestSplit_CoversAllWords(t *testing.T) {
	s, _ := New(30, 6)
	words := []string{"one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}
	text := strings.Repeat(strings.Join(words, " ")+" ", 5)
	joined := strings.Join(s.Split(strings.TrimSpace(text)), " ")
	for _, w := range words {
		if !strings.Contains(joined, w) {
			t.Errorf("word %q missing from chunks", w)
		}
	}
}

func TestSplit_AdjacentChunksOverlap(t *testing.T) {
	s, _ := New(20, 8)
	text := strings.Repeat("ab cd ef gh ij kl mn op ", 10)
	chunks := s.Split(strings.TrimSpace(text))
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1]
		if idx := strings.LastIndex(prevTail, " "); idx >= 0 {
			prevTail = prevTail[idx+1:]
		}
		if !strings.Contains(chunks[i], prevTail) {
			t.Errorf("chunk %d does not share content with chunk %d: %q / %q",
				i, i-1, chunks[i-1], chunks[i])
		}
	}
}

func TestSplit_ParagraphsPreferredOverHardCuts(t *testing.T) {
	s, _ := New(25, 5)
	text := "first paragraph here\n\nsecond paragraph here\n\nthird paragraph here"
	chunks := s.Split(text)
	for i, ch := range chunks {
		if strings.Contains(ch, "\n\n") && utf8.RuneCountInString(ch) > 25 {
			t.Errorf("chunk %d crosses paragraph boundary and exceeds size: %q", i, ch)
		}
	}
}

func TestSplit_LongUnbrokenText(t *testing.T) {
	s, _ := New(10, 3)
	text := strings.Repeat("x", 35)
	chunks := s.Split(text)
	if len(chunks) < 4 {
		t.Fatalf("expected at least 4 chunks, got %d", len(chunks))
	}
	for i, ch := range chunks {
		if utf8.RuneCountInString(ch) > 10 {
			t.Errorf("chunk %d too long: %q", i, ch)
		}
	}
	// Hard-cut windows share the configured overlap.
	if !strings.HasPrefix(chunks[1], chunks[0][len(chunks[0])-3:]) {
		t.Errorf("chunk 1 should start with tail of chunk 0: %q / %q", chunks[0], chunks[1])
	}
}
