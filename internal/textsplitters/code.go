package textsplitters

import (
	"regexp"
	"strings"
)

// CodeConfig configures code-aware splitting: chunks break at a
// function/class/type declaration rather than mid-definition.
type CodeConfig struct {
	// Language selects which declaration patterns to match ("go", "python",
	// "js"/"ts"); empty uses the function-declaration patterns of all three
	// (Go type and Python class declarations match only when named).
	Language string
	// Within re-splits any block that still exceeds its target size.
	Within BoundaryConfig
}

// Declaration-start patterns per language; deliberately simple line
// matchers rather than a real parser.
var (
	goFuncDecl  = regexp.MustCompile(`(?m)^func\s+\(?.*?\)?\s*[A-Za-z_][A-Za-z0-9_]*\s*\(.*\)`)
	goTypeDecl  = regexp.MustCompile(`(?m)^type\s+[A-Za-z_][A-Za-z0-9_]*\s+struct\s*{`)
	pyDefDecl   = regexp.MustCompile(`(?m)^def\s+[A-Za-z_][A-Za-z0-9_]*\s*\(.*\)\s*:`)
	pyClassDecl = regexp.MustCompile(`(?m)^class\s+[A-Za-z_][A-Za-z0-9_]*\s*(\(.*\))?\s*:`)
	jsFuncDecl  = regexp.MustCompile(`(?m)^(function\s+[A-Za-z_][A-Za-z0-9_]*\s*\(|[A-Za-z_][A-Za-z0-9_]*\s*=\s*\(.*\)\s*=>)`)
)

// declPatterns resolves a Language name to its declaration matchers, with
// the union of every language's function pattern as the default for
// unrecognized or empty names.
func declPatterns(language string) []*regexp.Regexp {
	switch strings.ToLower(language) {
	case "go":
		return []*regexp.Regexp{goTypeDecl, goFuncDecl}
	case "python", "py":
		return []*regexp.Regexp{pyClassDecl, pyDefDecl}
	case "javascript", "js", "ts", "typescript":
		return []*regexp.Regexp{jsFuncDecl}
	default:
		return []*regexp.Regexp{goFuncDecl, pyDefDecl, jsFuncDecl}
	}
}

// codeSplitter resolves its patterns and oversize re-splitter once at
// construction; Split itself only scans lines.
type codeSplitter struct {
	patterns []*regexp.Regexp
	within   *boundarySplitter
	cfg      CodeConfig
}

func newCodeSplitter(cfg CodeConfig) (Splitter, error) {
	s := &codeSplitter{patterns: declPatterns(cfg.Language), cfg: cfg}
	if cfg.Within.Size > 0 {
		s.within = &boundarySplitter{mode: "hybrid", cfg: cfg.Within}
	}
	return s, nil
}

func (s *codeSplitter) isDeclStart(line string) bool {
	for _, r := range s.patterns {
		if r.MatchString(line) {
			return true
		}
	}
	return false
}

func (s *codeSplitter) Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	var cur []string
	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(cur, "\n")); chunk != "" {
			chunks = append(chunks, chunk)
		}
		cur = cur[:0]
	}
	for _, ln := range strings.Split(text, "\n") {
		if s.isDeclStart(ln) && len(cur) > 0 {
			flush()
		}
		cur = append(cur, ln)
	}
	flush()

	if s.within == nil {
		return chunks
	}
	var adjusted []string
	for _, c := range chunks {
		if measure(c, s.cfg.Within.Unit, s.cfg.Within.Tokenizer) > s.cfg.Within.Size {
			adjusted = append(adjusted, s.within.Split(c)...)
		} else {
			adjusted = append(adjusted, c)
		}
	}
	return adjusted
}
