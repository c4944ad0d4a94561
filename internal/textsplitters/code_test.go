package textsplitters

import (
	"strings"
	"testing"
)

func TestCodeSplitterBreaksAtGoDeclarations(t *testing.T) {
	s, err := newCodeSplitter(CodeConfig{Language: "go"})
	if err != nil {
		t.Fatalf("newCodeSplitter: %v", err)
	}
	src := "func a() {\n\treturn\n}\n\nfunc b() {\n\treturn\n}\n"
	chunks := s.Split(src)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want one per function: %v", len(chunks), chunks)
	}
	if !strings.HasPrefix(chunks[0], "func a()") || !strings.HasPrefix(chunks[1], "func b()") {
		t.Fatalf("chunks do not start at declarations: %v", chunks)
	}
}

func TestCodeSplitterUnknownLanguageUsesUnion(t *testing.T) {
	s, _ := newCodeSplitter(CodeConfig{Language: "rust"})
	src := "def handler(x):\n    pass\n\nfunc main() {\n}\n"
	chunks := s.Split(src)
	if len(chunks) != 2 {
		t.Fatalf("union patterns should split both declarations, got %v", chunks)
	}
}

func TestCodeSplitterResplitsOversizedBlocks(t *testing.T) {
	s, _ := newCodeSplitter(CodeConfig{
		Language: "go",
		Within:   BoundaryConfig{Size: 40, Unit: UnitChars},
	})
	body := "func big() {\n\t// step one prepares the inputs.\n\n" +
		"\t// step two runs the computation.\n\n" +
		"\t// step three writes the results.\n}"
	chunks := s.Split(body)
	if len(chunks) < 2 {
		t.Fatalf("oversized block was not re-split: %d chunks", len(chunks))
	}
}
