package textsplitters

// RecursiveConfig layers Markdown, paragraph, and sentence splitting
// top-down, falling back to a fixed-size cut only where the previous stage
// still leaves a piece too large. It is the default Kind for document
// types with no Markdown structure of their own.
type RecursiveConfig struct {
	Markdown   MarkdownConfig
	Paragraphs BoundaryConfig
	Sentences  BoundaryConfig
	Fallback   FixedConfig
}

// recursiveSplitter holds its stage splitters, built once at construction.
// fallback is nil when no fixed-size backstop is configured.
type recursiveSplitter struct {
	markdown   Splitter
	paragraphs Splitter
	sentences  Splitter
	fallback   Splitter
}

func newRecursiveSplitter(cfg RecursiveConfig) (Splitter, error) {
	markdown, err := newMarkdownSplitter(cfg.Markdown)
	if err != nil {
		return nil, err
	}
	paragraphs, err := newParagraphSplitter(cfg.Paragraphs)
	if err != nil {
		return nil, err
	}
	sentences, err := newSentenceSplitter(cfg.Sentences)
	if err != nil {
		return nil, err
	}
	r := &recursiveSplitter{markdown: markdown, paragraphs: paragraphs, sentences: sentences}
	if cfg.Fallback.Size > 0 {
		fixed, err := newFixedSplitter(cfg.Fallback)
		if err != nil {
			return nil, err
		}
		r.fallback = fixed
	}
	return r, nil
}

// splitOr runs s over text, treating an empty result as "no boundary found
// at this level" and passing text through whole.
func splitOr(s Splitter, text string) []string {
	if pieces := s.Split(text); len(pieces) > 0 {
		return pieces
	}
	return []string{text}
}

func (r *recursiveSplitter) Split(text string) []string {
	var out []string
	for _, section := range splitOr(r.markdown, text) {
		if len(section) == 0 {
			continue
		}
		for _, para := range splitOr(r.paragraphs, section) {
			for _, sent := range splitOr(r.sentences, para) {
				if r.fallback == nil {
					out = append(out, sent)
					continue
				}
				out = append(out, r.fallback.Split(sent)...)
			}
		}
	}
	return out
}
