// Package loaders implements the format-specific Document Loaders: one
// loader per supported extension, each returning an ordered sequence of
// page-scoped text units. PDF loading has two paths — an image-extracting
// primary path (delegated to an injected ImageExtractor so this package
// does not import the vision/captioning stack) and a pure-text fallback
// used when no extractor is configured or the primary path fails.
package loaders

import (
	"context"
	"fmt"

	"ragcore/internal/apperr"
	"ragcore/internal/ragtypes"
)

// ImageExtractor is the primary PDF parsing path: it walks each page,
// recovers embedded images, captions them, and returns page text with
// captions interleaved alongside the images themselves. Implemented by
// internal/images; declared here as an interface so loaders has no
// dependency on the captioning/vision stack.
type ImageExtractor interface {
	ExtractPages(ctx context.Context, path, documentID string) ([]ragtypes.PageUnit, []ragtypes.Image, error)
}

// Dispatcher routes a file to the loader for its document type.
type Dispatcher struct {
	imageExtractor ImageExtractor
}

// NewDispatcher returns a Dispatcher. extractor may be nil, in which case
// PDFs are always loaded via the pure-text fallback path and no images are
// produced.
func NewDispatcher(extractor ImageExtractor) *Dispatcher {
	return &Dispatcher{imageExtractor: extractor}
}

// Load parses path according to docType and returns its page units plus any
// images recovered (only possible for PDFs with an extractor configured).
// A non-fatal failure of the image-extracting primary path degrades to the
// text-only fallback rather than failing the whole load.
func (d *Dispatcher) Load(ctx context.Context, path string, docType ragtypes.DocumentType, documentID string) ([]ragtypes.PageUnit, []ragtypes.Image, error) {
	switch docType {
	case ragtypes.DocumentTypePDF:
		if d.imageExtractor != nil {
			pages, images, err := d.imageExtractor.ExtractPages(ctx, path, documentID)
			if err == nil {
				return pages, images, nil
			}
		}
		pages, err := loadPDFTextOnly(path)
		return pages, nil, err
	case ragtypes.DocumentTypeDOCX:
		pages, err := loadDOCX(path)
		return pages, nil, err
	case ragtypes.DocumentTypeMarkdown, ragtypes.DocumentTypeText:
		pages, err := loadPlainText(path)
		return pages, nil, err
	default:
		return nil, nil, fmt.Errorf("loaders: %w: unsupported document type %q", apperr.ErrInput, docType)
	}
}
