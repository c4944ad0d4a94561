// Package metadata implements the Metadata Generator: it prompts a chat
// model for a document's title/summary/language, with deterministic
// fallbacks whenever the model call or its JSON response can't be trusted.
package metadata

import (
	"context"
	"encoding/json"
	"strings"

	"ragcore/internal/config"
	"ragcore/internal/llmclient"
	"ragcore/internal/observability"
)

const systemPrompt = `You are a document summarization assistant. Given the opening pages of a document, respond with strict JSON only, no Markdown fences, matching exactly: {"title": string, "summary": string, "language": string}. "language" should be an ISO 639-1 code, or an empty string if uncertain.`

// Result is the generated header fields, always populated even when the
// underlying model call failed (via the fallback rules below).
type Result struct {
	Title    string
	Summary  string
	Language string
}

// Generate prompts model with a bounded preview of the document and parses
// its JSON response. previewText is expected to already be bounded by
// SUMMARY_INPUT_MAX_PAGES/SUMMARY_INPUT_MAX_CHARS by the caller.
//
// Fallback rules, applied independently at each point of failure: if the
// call itself errors, or its response isn't valid JSON, the result falls
// back to {title: sourceFilenameOrID, summary: first 2000 preview chars,
// language: ""}. If the parsed title or summary comes back empty, it is
// likewise substituted, rather than failing the whole generation.
func Generate(ctx context.Context, cfg config.ModelsConfig, model, sourceFilenameOrID, previewText string) Result {
	fallbackSummary := truncate(previewText, 2000)
	fallback := Result{Title: sourceFilenameOrID, Summary: fallbackSummary}

	raw, err := llmclient.ChatComplete(ctx, cfg, model, systemPrompt, previewText)
	if err != nil {
		observability.LoggerWithTrace(ctx).Warn().
			Err(err).
			Str("source", sourceFilenameOrID).
			Msg("metadata generation call failed, falling back to filename/preview")
		return fallback
	}

	var parsed struct {
		Title    string `json:"title"`
		Summary  string `json:"summary"`
		Language string `json:"language"`
	}
	if jerr := json.Unmarshal([]byte(llmclient.ExtractJSON(raw)), &parsed); jerr != nil {
		observability.LoggerWithTrace(ctx).Warn().
			Err(jerr).
			Str("source", sourceFilenameOrID).
			Msg("metadata generation response was not valid JSON, falling back to filename/preview")
		return fallback
	}

	result := Result{Title: parsed.Title, Summary: parsed.Summary, Language: parsed.Language}
	if strings.TrimSpace(result.Title) == "" {
		result.Title = sourceFilenameOrID
	}
	if strings.TrimSpace(result.Summary) == "" {
		result.Summary = fallbackSummary
	}
	return result
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
