package embedding

import (
	"context"
	"testing"
)

func TestDeterministicEmbedder_StableAndDistinct(t *testing.T) {
	e := NewDeterministicEmbedder(64)

	a1, err := e.EmbedQuery(context.Background(), "Alpha Beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a2, err := e.EmbedQuery(context.Background(), "Alpha Beta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatalf("expected stable embedding, differed at index %d", i)
		}
	}

	b, err := e.EmbedQuery(context.Background(), "Completely different content")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectorsEqual(a1, b) {
		t.Fatal("expected distinct content to embed differently")
	}
}

func TestDeterministicEmbedder_EmbedDocumentsPreservesOrder(t *testing.T) {
	e := NewDeterministicEmbedder(32)
	texts := []string{"one", "two", "three"}
	var progress []int
	vecs, err := e.EmbedDocuments(context.Background(), texts, func(p int) { progress = append(progress, p) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vecs))
	}
	for i, text := range texts {
		want, _ := e.EmbedQuery(context.Background(), text)
		if !vectorsEqual(vecs[i], want) {
			t.Fatalf("result[%d] does not correspond to inputs[%d]", i, i)
		}
	}
	if len(progress) != len(texts) {
		t.Fatalf("expected a progress callback per document, got %v", progress)
	}
}

func vectorsEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
