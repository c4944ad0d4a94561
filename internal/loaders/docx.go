package loaders

import (
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"ragcore/internal/apperr"
	"ragcore/internal/ragtypes"
)

// loadDOCX converts a DOCX file to raw text and returns it as a single
// page unit; the format carries no native page boundaries.
func loadDOCX(path string) ([]ragtypes.PageUnit, error) {
	doc, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: %w: open docx: %v", apperr.ErrInput, err)
	}
	defer doc.Close()

	text := normalizeLineEndings(strings.TrimSpace(doc.Editable().GetContent()))
	if text == "" {
		return nil, fmt.Errorf("loaders: %w: no text extracted from docx", apperr.ErrInput)
	}

	return []ragtypes.PageUnit{{
		Text:       text,
		PageNumber: 1,
		TotalPages: 1,
		SourceRef:  path,
	}}, nil
}
