package textsplitters

import (
	"strings"
	"testing"
)

func TestJoinAtBoundaries(t *testing.T) {
	parts := []string{"a", "b", "c", "d"}
	got := joinAtBoundaries(parts, func(i int) bool { return i == 2 })
	if len(got) != 2 || got[0] != "a b" || got[1] != "c d" {
		t.Fatalf("got %v", got)
	}

	got = joinAtBoundaries(parts, func(int) bool { return false })
	if len(got) != 1 || got[0] != "a b c d" {
		t.Fatalf("no-boundary case: got %v", got)
	}
}

func TestSemanticSplitterBreaksOnTopicShift(t *testing.T) {
	s, err := newSemanticSplitter(SemanticConfig{Window: 1, Threshold: 0.2})
	if err != nil {
		t.Fatalf("newSemanticSplitter: %v", err)
	}
	text := "The database cluster stores vectors. The database cluster indexes vectors. " +
		"Penguins live in Antarctica. Penguins eat fish in Antarctica."
	segments := s.Split(text)
	if len(segments) < 2 {
		t.Fatalf("expected a boundary at the topic shift, got %v", segments)
	}
	if !strings.Contains(segments[0], "database") || strings.Contains(segments[0], "Penguins") {
		t.Fatalf("first segment mixes topics: %q", segments[0])
	}
}

func TestTextTilingSingleBlock(t *testing.T) {
	s, err := newTextTilingSplitter(TextTilingConfig{BlockSize: 10})
	if err != nil {
		t.Fatalf("newTextTilingSplitter: %v", err)
	}
	segments := s.Split("One sentence. Another sentence.")
	if len(segments) != 1 {
		t.Fatalf("a single block should yield a single segment, got %v", segments)
	}
}

func TestSemanticSplitterEmptyInput(t *testing.T) {
	s, _ := newSemanticSplitter(SemanticConfig{})
	if got := s.Split("   "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}
