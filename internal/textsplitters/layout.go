package textsplitters

import (
	"regexp"
	"strings"
)

// LayoutConfig applies page-break heuristics before boundary grouping, so a
// chunk never spans what looks like a page boundary in the source text.
type LayoutConfig struct {
	// PageDelimiter is a regex marking a page break (e.g. "\f"); empty falls
	// back to a form-feed check, then a multi-blank-line heuristic.
	PageDelimiter string
	// Within groups each page's text toward a target size.
	Within BoundaryConfig
}

var pageBreakFallback = regexp.MustCompile(`\n\s*\n{2,}`)

type layoutSplitter struct{ cfg LayoutConfig }

func newLayoutSplitter(cfg LayoutConfig) (Splitter, error) {
	return &layoutSplitter{cfg: cfg}, nil
}

func (l *layoutSplitter) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var pages []string
	if l.cfg.PageDelimiter != "" {
		if re, err := regexp.Compile(l.cfg.PageDelimiter); err == nil {
			pages = re.Split(text, -1)
		}
	}
	if len(pages) == 0 {
		if strings.Contains(text, "\f") {
			pages = strings.Split(text, "\f")
		} else {
			pages = pageBreakFallback.Split(text, -1)
		}
	}

	bs := &boundarySplitter{mode: "hybrid", cfg: l.cfg.Within}
	var out []string
	for _, p := range pages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, bs.Split(p)...)
	}
	return out
}
