package textsplitters

import (
	"math"
	"strings"
)

// SemanticConfig configures the semantic splitter, which cuts text where
// adjacent content stops looking related, rather than at a fixed size or a
// punctuation boundary. The TextTiling splitter has its own TextTilingConfig.
type SemanticConfig struct {
	// Window is how many preceding sentences to average similarity against
	// (>=1).
	Window int
	// Threshold is the similarity below which a boundary is inserted, in
	// [0,1); lower means fewer, larger segments.
	Threshold float64
	// Within groups the resulting segments toward a target size once
	// boundaries are chosen.
	Within BoundaryConfig
}

// bagOfWords builds a lowercased word-count vector for a sentence; cosine
// similarity between two of these approximates topical overlap without
// needing a real embedding model.
func bagOfWords(s string) map[string]float64 {
	m := map[string]float64{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		m[w]++
	}
	return m
}

func cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, na, nb float64
	for k, va := range a {
		na += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// joinAtBoundaries concatenates parts into segments, starting a new segment
// before part i whenever boundaryBefore(i) reports one. Both similarity
// splitters reduce to this once their boundary decisions are made.
func joinAtBoundaries(parts []string, boundaryBefore func(i int) bool) []string {
	var segments []string
	var cur []string
	for i, p := range parts {
		if i > 0 && boundaryBefore(i) && len(cur) > 0 {
			segments = append(segments, strings.Join(cur, " "))
			cur = cur[:0]
		}
		cur = append(cur, p)
	}
	if len(cur) > 0 {
		segments = append(segments, strings.Join(cur, " "))
	}
	return segments
}

// semanticSplitter carries its window/threshold already defaulted, so Split
// never re-derives them.
type semanticSplitter struct {
	window    int
	threshold float64
	within    BoundaryConfig
}

func newSemanticSplitter(cfg SemanticConfig) (Splitter, error) {
	s := &semanticSplitter{window: cfg.Window, threshold: cfg.Threshold, within: cfg.Within}
	if s.window <= 0 {
		s.window = 1
	}
	if s.threshold <= 0 {
		s.threshold = 0.15
	}
	return s, nil
}

func (s *semanticSplitter) Split(text string) []string {
	sentences := sentencesOf(text)
	if len(sentences) == 0 {
		return nil
	}

	vecs := make([]map[string]float64, len(sentences))
	for i, sent := range sentences {
		vecs[i] = bagOfWords(sent)
	}

	segments := joinAtBoundaries(sentences, func(i int) bool {
		start := i - s.window
		if start < 0 {
			start = 0
		}
		var total float64
		for k := start; k < i; k++ {
			total += cosine(vecs[k], vecs[i])
		}
		return total/float64(i-start) < s.threshold
	})

	if s.within.Size > 0 {
		return groupByTarget(segments, s.within)
	}
	return segments
}

// TextTilingConfig configures block-level lexical segmentation: sentences
// are grouped into fixed-size blocks, and a boundary is inserted wherever
// adjacent blocks' similarity drops below Threshold.
type TextTilingConfig struct {
	BlockSize int // sentences per block
	Threshold float64
	Within    BoundaryConfig
}

type textTilingSplitter struct {
	blockSize int
	threshold float64
	within    BoundaryConfig
}

func newTextTilingSplitter(cfg TextTilingConfig) (Splitter, error) {
	t := &textTilingSplitter{blockSize: cfg.BlockSize, threshold: cfg.Threshold, within: cfg.Within}
	if t.blockSize <= 0 {
		t.blockSize = 3
	}
	if t.threshold <= 0 {
		t.threshold = 0.2
	}
	return t, nil
}

func (t *textTilingSplitter) Split(text string) []string {
	sentences := sentencesOf(text)
	if len(sentences) == 0 {
		return nil
	}

	var blocks []string
	var vecs []map[string]float64
	for i := 0; i < len(sentences); i += t.blockSize {
		j := i + t.blockSize
		if j > len(sentences) {
			j = len(sentences)
		}
		vec := map[string]float64{}
		for _, s := range sentences[i:j] {
			for k, v := range bagOfWords(s) {
				vec[k] += v
			}
		}
		blocks = append(blocks, strings.Join(sentences[i:j], " "))
		vecs = append(vecs, vec)
	}

	segments := joinAtBoundaries(blocks, func(i int) bool {
		return cosine(vecs[i-1], vecs[i]) < t.threshold
	})

	if t.within.Size > 0 {
		return groupByTarget(segments, t.within)
	}
	return segments
}
