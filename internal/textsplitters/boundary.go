package textsplitters

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// BoundaryConfig controls the sentence/paragraph/hybrid/markdown/code/
// semantic/texttiling/layout splitters: every strategy built on top of
// groupByTarget shares this one sizing knob rather than each defining its
// own.
type BoundaryConfig struct {
	Unit      Unit      // chars or tokens for target size
	Size      int       // target size; <=0 defaults to 500
	Overlap   int       // best-effort overlap, in the same unit
	Tokenizer Tokenizer // used when Unit==tokens
}

// sentenceBoundary is a naive end-of-sentence finder: anything up to and
// including a run of .!? is one sentence, with a final unterminated
// fragment (if any) counted as its own sentence too.
var sentenceBoundary = regexp.MustCompile(`(?s)([^\.!?]+[\.!?]+|[^\.!?]+$)`)

// blankLine splits paragraphs apart on one or more fully blank lines.
var blankLine = regexp.MustCompile(`\n\s*\n+`)

func sentencesOf(text string) []string {
	parts := sentenceBoundary.FindAllString(strings.TrimSpace(text), -1)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func paragraphsOf(text string) []string {
	raw := blankLine.Split(strings.TrimSpace(text), -1)
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func measure(text string, unit Unit, tok Tokenizer) int {
	if unit == UnitTokens {
		if tok == nil {
			tok = WhitespaceTokenizer{}
		}
		return len(tok.Tokenize(text))
	}
	return utf8.RuneCountInString(text)
}

func clipOverlapTail(chunk string, want int, unit Unit, tok Tokenizer) string {
	if want <= 0 || chunk == "" {
		return ""
	}
	if unit == UnitTokens {
		if tok == nil {
			tok = WhitespaceTokenizer{}
		}
		toks := tok.Tokenize(chunk)
		if want >= len(toks) {
			return chunk
		}
		return tok.Detokenize(toks[len(toks)-want:])
	}
	// chars
	// walk runes from end
	n := utf8.RuneCountInString(chunk)
	if want >= n {
		return chunk
	}
	// get byte index where last want runes start
	// compute forward to reduce complexity
	var idxs []int
	idxs = make([]int, 0, n+1)
	idxs = append(idxs, 0)
	for i := 0; i < len(chunk); {
		_, w := utf8.DecodeRuneInString(chunk[i:])
		i += w
		idxs = append(idxs, i)
	}
	start := idxs[n-want]
	return chunk[start:]
}

func groupByTarget(units []string, cfg BoundaryConfig) []string {
	size := cfg.Size
	if size <= 0 {
		size = 500
	}
	if cfg.Overlap < 0 {
		cfg.Overlap = 0
	}
	var tok Tokenizer
	if cfg.Unit == UnitTokens {
		tok = cfg.Tokenizer
		if tok == nil {
			tok = WhitespaceTokenizer{}
		}
	}

	var chunks []string
	var cur strings.Builder
	for i, u := range units {
		if u == "" {
			continue
		}
		candidate := u
		if cur.Len() > 0 {
			candidate = cur.String() + "\n" + u
		}
		m := measure(candidate, cfg.Unit, tok)
		if m <= size || cur.Len() == 0 {
			if cur.Len() > 0 {
				cur.WriteString("\n")
			}
			cur.WriteString(u)
			if i == len(units)-1 {
				s := cur.String()
				if s != "" {
					chunks = append(chunks, s)
				}
			}
			continue
		}
		// Current chunk is full: close it, seed the next one with an
		// overlap tail carried from its end, then start u.
		s := cur.String()
		if s != "" {
			chunks = append(chunks, s)
		}
		tail := clipOverlapTail(s, cfg.Overlap, cfg.Unit, tok)
		cur.Reset()
		if tail != "" {
			cur.WriteString(tail)
			cur.WriteString("\n")
		}
		cur.WriteString(u)
		if i == len(units)-1 {
			s := cur.String()
			if s != "" {
				chunks = append(chunks, s)
			}
		}
	}
	if len(units) == 0 {
		return nil
	}
	return chunks
}

// boundarySplitter groups text along natural boundaries (sentences,
// paragraphs, or a hybrid of the two) up to BoundaryConfig's target size,
// via groupByTarget.
type boundarySplitter struct {
	mode string // "sent"|"para"|"hybrid"
	cfg  BoundaryConfig
}

func newSentenceSplitter(cfg BoundaryConfig) (Splitter, error) {
	return &boundarySplitter{mode: "sent", cfg: cfg}, nil
}
func newParagraphSplitter(cfg BoundaryConfig) (Splitter, error) {
	return &boundarySplitter{mode: "para", cfg: cfg}, nil
}
func newHybridSplitter(cfg BoundaryConfig) (Splitter, error) {
	return &boundarySplitter{mode: "hybrid", cfg: cfg}, nil
}

func (s *boundarySplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var units []string
	switch s.mode {
	case "para":
		units = paragraphsOf(text)
	case "hybrid":
		// First by paragraphs, then flatten to sentences for very large paragraphs
		paras := paragraphsOf(text)
		for _, p := range paras {
			if measure(p, s.cfg.Unit, s.cfg.Tokenizer) > s.cfg.Size*2 && s.cfg.Size > 0 {
				units = append(units, sentencesOf(p)...)
			} else {
				units = append(units, p)
			}
		}
	default:
		units = sentencesOf(text)
	}
	return groupByTarget(units, s.cfg)
}

// RollingConfig configures overlapping windows of Window sentences,
// advancing Step sentences per chunk — unlike boundarySplitter, chunks here
// overlap by construction rather than by a best-effort trailing clip.
type RollingConfig struct {
	Window int // number of sentences per chunk
	Step   int // advance by Step sentences (default 1)
}

type rollingSentenceSplitter struct{ cfg RollingConfig }

func newRollingSentenceSplitter(cfg RollingConfig) (Splitter, error) {
	return &rollingSentenceSplitter{cfg: cfg}, nil
}

func (s *rollingSentenceSplitter) Split(text string) []string {
	ss := sentencesOf(text)
	if len(ss) == 0 {
		return nil
	}
	n := s.cfg.Window
	if n <= 0 {
		n = 3
	}
	step := s.cfg.Step
	if step <= 0 {
		step = 1
	}
	var out []string
	for i := 0; i < len(ss); i += step {
		j := i + n
		if j > len(ss) {
			j = len(ss)
		}
		if i >= j {
			break
		}
		out = append(out, strings.Join(ss[i:j], " "))
		if j == len(ss) {
			break
		}
	}
	return out
}
