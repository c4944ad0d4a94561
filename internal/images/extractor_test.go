package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ragcore/internal/config"
	"ragcore/internal/ragtypes"
)

func TestBuildImageIDFormat(t *testing.T) {
	id := buildImageID("doc1", 3, 0, []byte("raster-bytes"))
	want := "doc1_p3_img0_"
	if len(id) <= len(want) || id[:len(want)] != want {
		t.Fatalf("buildImageID = %q, want prefix %q", id, want)
	}
	if len(id) != len(want)+8 {
		t.Fatalf("buildImageID = %q, want an 8-hex-char hash suffix", id)
	}
}

func TestBuildImageIDDeterministicPerContent(t *testing.T) {
	a := buildImageID("doc1", 1, 0, []byte("same"))
	b := buildImageID("doc1", 1, 0, []byte("same"))
	if a != b {
		t.Fatalf("buildImageID not deterministic: %q != %q", a, b)
	}
	c := buildImageID("doc1", 1, 0, []byte("different"))
	if a == c {
		t.Fatalf("buildImageID collided for different content: %q", a)
	}
}

func TestBuildPreviewTruncatesToPageAndCharLimits(t *testing.T) {
	texts := []string{"page one", "page two", "page three", "page four"}

	got := buildPreview(texts, 2, 4000)
	if got != "page one\npage two\n" {
		t.Fatalf("buildPreview page limit = %q", got)
	}

	got = buildPreview([]string{"abcdefghij"}, 1, 5)
	if got != "abcde" {
		t.Fatalf("buildPreview char limit = %q, want %q", got, "abcde")
	}
}

func TestBuildPreviewDefaultsWhenUnset(t *testing.T) {
	texts := make([]string, 5)
	for i := range texts {
		texts[i] = "x"
	}
	got := buildPreview(texts, 0, 0)
	if got != "x\nx\nx\n" {
		t.Fatalf("buildPreview with zero-valued bounds = %q, want first 3 pages", got)
	}
}

func TestCaptionSkipsStorageWhenVerdictSaysDoNotEmbed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"description\":\"body text only\",\"shouldEmbed\":false,\"reason\":\"no chart or diagram\"}"}}]}`))
	}))
	defer ts.Close()

	e := New(config.ModelsConfig{OpenAIBaseURL: ts.URL, OpenAIAPIKey: "test"}, "gpt-4o-mini", config.IngestConfig{})
	verdict, err := e.caption(context.Background(), rasterResult{Image: mustImage()}, "some preview text")
	if err != nil {
		t.Fatalf("caption: %v", err)
	}
	if verdict.ShouldEmbed {
		t.Fatal("expected shouldEmbed=false to be preserved so callers skip storing the image")
	}
}

func TestCaptionReturnsErrorOnUnreachableVisionEndpoint(t *testing.T) {
	e := New(config.ModelsConfig{OpenAIBaseURL: "http://127.0.0.1:1"}, "gpt-4o-mini", config.IngestConfig{})
	if _, err := e.caption(context.Background(), rasterResult{Image: mustImage()}, "preview"); err == nil {
		t.Fatal("expected an error when the vision endpoint is unreachable")
	}
}

func mustImage() ragtypes.Image {
	return ragtypes.Image{ImageID: "doc1_p1_img0_aaaaaaaa", MimeType: "image/png", ImageData: []byte{0x89, 'P', 'N', 'G'}}
}
