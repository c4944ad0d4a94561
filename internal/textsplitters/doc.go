// Package textsplitters is the strategy library behind the Chunker
// (internal/chunker): every Kind here is a distinct way of cutting page
// text into chunk-sized pieces, all reachable through the one
// NewFromConfig factory so chunker.SelectKind can pick a strategy per
// document type or honor a configured override without knowing any
// strategy's internals.
//
// Strategies
//   - Fixed-length (chars/tokens): simple, fast, predictable; cuts
//     mid-sentence and drifts semantically across formats.
//   - Sentence/paragraph/hybrid boundary grouping: natural boundaries,
//     variable chunk size around a target.
//   - Markdown-aware: splits at headings, then groups within sections.
//   - Code-aware: splits at function/class-shaped blocks where possible.
//   - Semantic breakpoints: segments where adjacent-sentence similarity
//     drops, then groups the segments.
//   - TextTiling-style lexical segmentation.
//   - Rolling n-sentence windows.
//   - Layout-aware: heuristic page/table boundaries.
//   - Recursive: headings, then paragraphs, then sentences, then a fixed
//     fallback — the default for formats with no Markdown structure of
//     their own.
package textsplitters
