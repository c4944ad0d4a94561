package metadata

import (
	"context"
	"strings"
	"testing"

	"ragcore/internal/config"
)

func TestGenerateFallsBackWhenNoCredentials(t *testing.T) {
	// With the OpenAI base URL pointed at a closed local port (and no API
	// key), the call fails fast, which exercises the LLM-failure fallback
	// path without a live endpoint.
	cfg := config.ModelsConfig{OpenAIBaseURL: "http://127.0.0.1:1"}
	preview := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 10)

	result := Generate(context.Background(), cfg, "gpt-4o-mini", "report.pdf", preview)

	if result.Title != "report.pdf" {
		t.Fatalf("expected fallback title to be the source filename, got %q", result.Title)
	}
	if result.Summary == "" {
		t.Fatal("expected fallback summary to be populated from the preview")
	}
}

func TestTruncateRespectsRuneBoundaries(t *testing.T) {
	s := "héllo wörld"
	got := truncate(s, 3)
	if len([]rune(got)) != 3 {
		t.Fatalf("expected 3 runes, got %q", got)
	}
}
