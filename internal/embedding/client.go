// Package embedding implements the batched embedding client:
// order-preserving batch requests against an OpenAI-compatible embeddings
// endpoint, with a deterministic in-memory double for tests and an
// optional query-embedding cache.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ragcore/internal/config"
	"ragcore/internal/observability"
)

var httpClient = observability.NewHTTPClient(nil)

type embedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResp struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// rawEmbed calls the configured embedding endpoint and returns one embedding
// per input string, in input order. Reached through the Embedder's
// EmbedDocuments / EmbedQuery and through CheckReachability rather than
// called directly by ingestion/search code.
func rawEmbed(ctx context.Context, cfg config.EmbeddingConfig, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("embedding: no inputs")
	}
	reqBody, err := json.Marshal(embedReq{Model: cfg.Model, Input: inputs})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := cfg.BaseURL + cfg.Path
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	if cfg.APIHeader == "Authorization" && cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	} else if cfg.APIHeader != "" && cfg.APIKey != "" {
		req.Header.Set(cfg.APIHeader, cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response body: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("embedding: endpoint error %s: %s", resp.Status, string(bodyBytes))
	}

	var er embedResp
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		return nil, fmt.Errorf("embedding: parse response (input count %d, body %q): %w",
			len(inputs), string(bodyBytes[:min(200, len(bodyBytes))]), err)
	}
	if len(er.Data) != len(inputs) {
		return nil, fmt.Errorf("embedding: unexpected embedding count: got %d, want %d", len(er.Data), len(inputs))
	}
	out := make([][]float32, len(er.Data))
	for i := range er.Data {
		out[i] = er.Data[i].Embedding
	}
	return out, nil
}

// CheckReachability verifies the embedding endpoint is reachable and
// responding correctly by sending a small test request.
func CheckReachability(ctx context.Context, cfg config.EmbeddingConfig) error {
	_, err := rawEmbed(ctx, cfg, []string{"ping"})
	if err != nil {
		return fmt.Errorf("embedding: reachability check failed: %w", err)
	}
	return nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
