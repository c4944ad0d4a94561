package loaders

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"ragcore/internal/apperr"
	"ragcore/internal/ragtypes"
)

// loadPDFTextOnly is the fallback path: it asks go-fitz for each page's
// text directly, which already gives true page boundaries, so no
// form-feed recovery is needed the way it would be for a whole-document
// text blob.
func loadPDFTextOnly(path string) ([]ragtypes.PageUnit, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("loaders: %w: open pdf: %v", apperr.ErrInput, err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("loaders: %w: pdf has no pages", apperr.ErrInput)
	}

	pages := make([]ragtypes.PageUnit, 0, numPages)
	for i := 0; i < numPages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			text = ""
		}
		pages = append(pages, ragtypes.PageUnit{
			Text:       normalizeLineEndings(text),
			PageNumber: i + 1,
			TotalPages: numPages,
			SourceRef:  path,
		})
	}

	if allPagesEmpty(pages) {
		return nil, fmt.Errorf("loaders: %w: no text extracted from pdf", apperr.ErrInput)
	}
	return pages, nil
}

func allPagesEmpty(pages []ragtypes.PageUnit) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return false
		}
	}
	return true
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}
