package loaders

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"ragcore/internal/apperr"
	"ragcore/internal/ragtypes"
)

// loadPlainText reads a Markdown or plain-text file as UTF-8, normalises
// line endings, and trims surrounding whitespace. It always returns a
// single page unit.
func loadPlainText(path string) ([]ragtypes.PageUnit, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: %w: read file: %v", apperr.ErrInput, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("loaders: %w: file is not valid utf-8", apperr.ErrInput)
	}

	text := strings.TrimSpace(normalizeLineEndings(string(raw)))
	if text == "" {
		return nil, fmt.Errorf("loaders: %w: empty file", apperr.ErrInput)
	}

	return []ragtypes.PageUnit{{
		Text:       text,
		PageNumber: 1,
		TotalPages: 1,
		SourceRef:  path,
	}}, nil
}
