// Package chunker wraps internal/textsplitters to produce the page-scoped
// chunk units the ingestion orchestrator inserts into the vector store. A
// single Split entry point dispatches across the named splitting
// strategies, delegating the actual splitting to textsplitters rather than
// reimplementing fixed/markdown/code splitting locally.
package chunker

import (
	"strings"

	"ragcore/internal/ragtypes"
	"ragcore/internal/textsplitters"
)

// kindNames maps the CHUNK_STRATEGY override string onto a textsplitters
// Kind, built from textsplitters.Kinds() so every strategy the library
// implements is reachable from configuration rather than only from
// chunker's own document-type default, and a new Kind added to the
// factory is picked up here automatically.
var kindNames = buildKindNames()

func buildKindNames() map[string]textsplitters.Kind {
	m := make(map[string]textsplitters.Kind, len(textsplitters.Kinds()))
	for _, k := range textsplitters.Kinds() {
		m[string(k)] = k
	}
	return m
}

// SelectKind picks the splitter strategy for a document. override, when it
// names a recognised textsplitters.Kind (case-insensitive), wins outright;
// otherwise the pick follows the document's own structure: Markdown gets
// heading-aware splitting, Text gets paragraph/sentence boundary grouping,
// and everything else (PDF, DOCX) gets the recursive markdown/paragraph/
// sentence/fixed cascade, since those formats rarely carry real Markdown
// headings of their own.
func SelectKind(docType ragtypes.DocumentType, override string) textsplitters.Kind {
	if k, ok := kindNames[strings.ToLower(strings.TrimSpace(override))]; ok {
		return k
	}
	switch docType {
	case ragtypes.DocumentTypeMarkdown:
		return textsplitters.KindMarkdown
	case ragtypes.DocumentTypeText:
		return textsplitters.KindHybrid
	default:
		return textsplitters.KindRecursive
	}
}

// Unit is one chunk of text scoped to a single source page, carrying enough
// page bookkeeping for the caller to build ragtypes.ChunkMetadata without
// re-deriving page attribution from chunk content.
type Unit struct {
	Content    string
	PageNumber int
	TotalPages int
}

// Config selects the splitting strategy and its size/overlap parameters.
// Kind mirrors textsplitters.Kind; callers typically pass the configured
// CHUNK_SIZE/CHUNK_OVERLAP through Size/Overlap.
type Config struct {
	Kind    textsplitters.Kind
	Size    int
	Overlap int
}

// Split splits each page independently and returns the concatenated list of
// chunk units in page order. Splitting per page, rather than joining every
// page into one document and splitting that, keeps the page attribution
// exact: textsplitters' boundary-based strategies rejoin grouped units with
// a single newline, which loses the original separator width and makes
// mapping an output chunk back to a source page position unreliable once
// pages are concatenated. A chunk therefore always belongs to exactly one
// page, by construction rather than by reattribution.
func Split(pages []ragtypes.PageUnit, cfg Config) ([]Unit, error) {
	splitter, err := textsplitters.NewFromConfig(toSplitterConfig(cfg))
	if err != nil {
		return nil, err
	}

	totalPages := 0
	for _, p := range pages {
		if p.TotalPages > totalPages {
			totalPages = p.TotalPages
		}
	}
	if totalPages == 0 {
		totalPages = len(pages)
	}

	var out []Unit
	for _, page := range pages {
		text := strings.TrimSpace(page.Text)
		if text == "" {
			continue
		}
		for _, piece := range splitter.Split(text) {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			out = append(out, Unit{
				Content:    piece,
				PageNumber: page.PageNumber,
				TotalPages: totalPages,
			})
		}
	}
	return out, nil
}

func toSplitterConfig(cfg Config) textsplitters.Config {
	kind := cfg.Kind
	if kind == "" {
		kind = textsplitters.KindRecursive
	}
	size := cfg.Size
	if size <= 0 {
		size = 2000
	}
	overlap := cfg.Overlap
	if overlap < 0 {
		overlap = 0
	}

	fixed := textsplitters.FixedConfig{Unit: textsplitters.UnitChars, Size: size, Overlap: overlap}
	boundary := textsplitters.BoundaryConfig{Unit: textsplitters.UnitChars, Size: size, Overlap: overlap}

	return textsplitters.Config{
		Kind:       kind,
		Fixed:      fixed,
		Boundary:   boundary,
		Markdown:   textsplitters.MarkdownConfig{Within: boundary},
		Code:       textsplitters.CodeConfig{Within: boundary},
		Semantic:   textsplitters.SemanticConfig{Within: boundary},
		TextTiling: textsplitters.TextTilingConfig{Within: boundary},
		Layout:     textsplitters.LayoutConfig{Within: boundary},
		Recursive: textsplitters.RecursiveConfig{
			Markdown:   textsplitters.MarkdownConfig{Within: boundary},
			Paragraphs: boundary,
			Sentences:  boundary,
			Fallback:   fixed,
		},
	}
}
