package chunker

import (
	"strings"
	"testing"

	"ragcore/internal/ragtypes"
)

func TestSplitKeepsChunksWithinOnePage(t *testing.T) {
	pages := []ragtypes.PageUnit{
		{Text: strings.Repeat("alpha beta gamma delta epsilon zeta. ", 40), PageNumber: 1, TotalPages: 2},
		{Text: strings.Repeat("omega psi chi phi upsilon tau. ", 40), PageNumber: 2, TotalPages: 2},
	}

	units, err := Split(pages, Config{Size: 200, Overlap: 20})
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	if len(units) == 0 {
		t.Fatal("expected at least one chunk unit")
	}

	sawPage1, sawPage2 := false, false
	for _, u := range units {
		if u.PageNumber != 1 && u.PageNumber != 2 {
			t.Fatalf("unexpected page number %d", u.PageNumber)
		}
		if u.TotalPages != 2 {
			t.Fatalf("expected total pages 2, got %d", u.TotalPages)
		}
		if strings.TrimSpace(u.Content) == "" {
			t.Fatal("chunk content must not be empty")
		}
		if u.PageNumber == 1 {
			sawPage1 = true
		}
		if u.PageNumber == 2 {
			sawPage2 = true
		}
	}
	if !sawPage1 || !sawPage2 {
		t.Fatal("expected chunks attributed to both pages")
	}
}

func TestSelectKindHonorsOverride(t *testing.T) {
	if got := SelectKind(ragtypes.DocumentTypePDF, "semantic"); got != "semantic" {
		t.Fatalf("expected override to win, got %q", got)
	}
	if got := SelectKind(ragtypes.DocumentTypePDF, "  ROLLING_SENTENCES "); got != "rolling_sentences" {
		t.Fatalf("expected case/space-insensitive override match, got %q", got)
	}
}

func TestSelectKindDefaultsByDocumentType(t *testing.T) {
	cases := map[ragtypes.DocumentType]string{
		ragtypes.DocumentTypeMarkdown: "markdown",
		ragtypes.DocumentTypeText:     "hybrid",
		ragtypes.DocumentTypePDF:      "recursive",
		ragtypes.DocumentTypeDOCX:     "recursive",
	}
	for docType, want := range cases {
		if got := SelectKind(docType, ""); string(got) != want {
			t.Fatalf("SelectKind(%s, \"\") = %q, want %q", docType, got, want)
		}
	}
}

func TestSelectKindIgnoresUnknownOverride(t *testing.T) {
	if got := SelectKind(ragtypes.DocumentTypeMarkdown, "not-a-real-kind"); got != "markdown" {
		t.Fatalf("expected fallback to document-type default, got %q", got)
	}
}

func TestSplitSkipsBlankPages(t *testing.T) {
	pages := []ragtypes.PageUnit{
		{Text: "   ", PageNumber: 1, TotalPages: 2},
		{Text: "some real content here that should be chunked.", PageNumber: 2, TotalPages: 2},
	}

	units, err := Split(pages, Config{Size: 500, Overlap: 0})
	if err != nil {
		t.Fatalf("Split returned error: %v", err)
	}
	for _, u := range units {
		if u.PageNumber == 1 {
			t.Fatal("blank page should not produce a chunk")
		}
	}
}
