package loaders

import (
	"context"
	"errors"
	"os"
	"testing"

	"ragcore/internal/ragtypes"
)

type fakeExtractor struct {
	pages []ragtypes.PageUnit
	imgs  []ragtypes.Image
	err   error
}

func (f fakeExtractor) ExtractPages(ctx context.Context, path, documentID string) ([]ragtypes.PageUnit, []ragtypes.Image, error) {
	return f.pages, f.imgs, f.err
}

func TestDispatchPDFUsesImageExtractorWhenConfigured(t *testing.T) {
	want := []ragtypes.PageUnit{{Text: "hello", PageNumber: 1, TotalPages: 1}}
	d := NewDispatcher(fakeExtractor{pages: want, imgs: []ragtypes.Image{{ImageID: "i1"}}})

	pages, images, err := d.Load(context.Background(), "doc.pdf", ragtypes.DocumentTypePDF, "doc1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pages) != 1 || pages[0].Text != "hello" {
		t.Fatalf("pages = %+v, want the extractor's pages", pages)
	}
	if len(images) != 1 || images[0].ImageID != "i1" {
		t.Fatalf("images = %+v, want the extractor's images", images)
	}
}

func TestDispatchPDFFallsBackOnExtractorError(t *testing.T) {
	d := NewDispatcher(fakeExtractor{err: errors.New("boom")})
	_, _, err := d.Load(context.Background(), "/nonexistent.pdf", ragtypes.DocumentTypePDF, "doc1")
	if err == nil {
		t.Fatal("expected fallback path to fail for a nonexistent file, got nil error")
	}
}

func TestDispatchUnsupportedType(t *testing.T) {
	d := NewDispatcher(nil)
	_, _, err := d.Load(context.Background(), "x.bin", ragtypes.DocumentTypeUnknown, "doc1")
	if err == nil {
		t.Fatal("expected unsupported document type to error")
	}
}

func TestLoadPlainTextNormalizesAndTrims(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/note.md"
	if err := os.WriteFile(path, []byte("  \r\nHello\r\nWorld\r\n  "), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	pages, err := loadPlainText(path)
	if err != nil {
		t.Fatalf("loadPlainText: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if pages[0].Text != "Hello\nWorld" {
		t.Fatalf("Text = %q, want %q", pages[0].Text, "Hello\nWorld")
	}
}

func TestLoadPlainTextRejectsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/empty.txt"
	if err := writeFile(path, "   \r\n  "); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if _, err := loadPlainText(path); err == nil {
		t.Fatal("expected empty file to error")
	}
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
