package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragcore/internal/config"
)

func TestRawEmbed_BearerAuthorization(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected Authorization header Bearer secret, got %q", got)
		}
		resp := map[string]any{"data": []map[string]any{{"embedding": []float32{0.1, 0.2}}}}
		b, _ := json.Marshal(resp)
		w.Write(b)
	}))
	defer ts.Close()

	cfg := config.EmbeddingConfig{BaseURL: ts.URL, Path: "/", Model: "m", APIHeader: "Authorization", APIKey: "secret"}
	vecs, err := rawEmbed(context.Background(), cfg, []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 1 || len(vecs[0]) != 2 {
		t.Fatalf("unexpected vectors: %+v", vecs)
	}
}

func TestRawEmbed_CustomHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "abc" {
			t.Fatalf("expected x-api-key header abc, got %q", got)
		}
		resp := map[string]any{"data": []map[string]any{{"embedding": []float32{0.1}}}}
		b, _ := json.Marshal(resp)
		w.Write(b)
	}))
	defer ts.Close()

	cfg := config.EmbeddingConfig{BaseURL: ts.URL, Path: "/", Model: "m", APIHeader: "x-api-key", APIKey: "abc"}
	if _, err := rawEmbed(context.Background(), cfg, []string{"x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRawEmbed_CountMismatchIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"data": []map[string]any{{"embedding": []float32{0.1}}}}
		b, _ := json.Marshal(resp)
		w.Write(b)
	}))
	defer ts.Close()

	cfg := config.EmbeddingConfig{BaseURL: ts.URL, Path: "/", Model: "m"}
	_, err := rawEmbed(context.Background(), cfg, []string{"x", "y"})
	if err == nil {
		t.Fatal("expected error on count mismatch")
	}
}

func TestRawEmbed_NoInputsIsError(t *testing.T) {
	if _, err := rawEmbed(context.Background(), config.EmbeddingConfig{}, nil); err == nil {
		t.Fatal("expected error for empty inputs")
	}
}
