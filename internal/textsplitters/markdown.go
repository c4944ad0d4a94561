package textsplitters

import (
	"regexp"
	"strings"
)

// MarkdownConfig configures markdown-aware splitting: text is segmented at
// heading lines first, then each section's body is grouped toward a target
// size.
type MarkdownConfig struct {
	// Headers restricts which heading markers count as a section boundary
	// (e.g. ["#", "##"]); empty means any heading level starts one.
	Headers []string
	// Within groups each section's body toward a target size.
	Within BoundaryConfig
}

var markdownHeading = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+?)\s*$`)

type markdownSplitter struct{ cfg MarkdownConfig }

func newMarkdownSplitter(cfg MarkdownConfig) (Splitter, error) {
	return &markdownSplitter{cfg: cfg}, nil
}

func (m *markdownSplitter) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	type section struct {
		heading string
		body    string
	}

	idxs := markdownHeading.FindAllStringSubmatchIndex(text, -1)
	if len(m.cfg.Headers) > 0 {
		kept := idxs[:0]
		for _, idx := range idxs {
			for _, h := range m.cfg.Headers {
				if text[idx[2]:idx[3]] == h {
					kept = append(kept, idx)
					break
				}
			}
		}
		idxs = kept
	}
	if len(idxs) == 0 {
		return (&boundarySplitter{mode: "hybrid", cfg: m.cfg.Within}).Split(text)
	}

	var sections []section
	if pre := strings.TrimSpace(text[:idxs[0][0]]); pre != "" {
		sections = append(sections, section{body: pre})
	}
	for i, idx := range idxs {
		start := idx[0]
		end := len(text)
		if i+1 < len(idxs) {
			end = idxs[i+1][0]
		}
		sections = append(sections, section{
			heading: text[start:idx[1]],
			body:    strings.TrimSpace(text[idx[1]:end]),
		})
	}

	var chunks []string
	for _, sec := range sections {
		header := strings.TrimSpace(sec.heading)
		if header != "" {
			chunks = append(chunks, header)
		}
		chunks = append(chunks, (&boundarySplitter{mode: "hybrid", cfg: m.cfg.Within}).Split(sec.body)...)
	}
	return chunks
}
