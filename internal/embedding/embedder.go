package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"ragcore/internal/config"
)

// Embedder is the contract the rest of the ingestion/search pipeline
// depends on. EmbedDocuments must preserve order: result[i] corresponds to
// inputs[i].
type Embedder interface {
	// EmbedDocuments embeds texts in batches of at most the configured batch
	// size, calling onBatch after each batch completes with the number of
	// vectors produced so far, so the orchestrator can update job progress.
	EmbedDocuments(ctx context.Context, texts []string, onBatch func(processed int)) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// clientEmbedder is the production Embedder, backed by the HTTP embeddings
// endpoint, with an optional Redis-backed query-embedding cache layered on
// top of EmbedQuery (EmbedDocuments results are never cached, since chunk
// text is rarely repeated verbatim across calls).
type clientEmbedder struct {
	cfg   config.EmbeddingConfig
	dim   int
	cache *redis.Client
	ttl   time.Duration
}

// NewClientEmbedder constructs the production embedder. redisAddr may be
// empty, in which case query embeddings are never cached.
func NewClientEmbedder(cfg config.EmbeddingConfig, dimension int, redisAddr string) Embedder {
	e := &clientEmbedder{cfg: cfg, dim: dimension, ttl: 10 * time.Minute}
	if redisAddr != "" {
		e.cache = redis.NewClient(&redis.Options{Addr: redisAddr})
	}
	return e
}

func (e *clientEmbedder) Dimension() int { return e.dim }

func (e *clientEmbedder) EmbedDocuments(ctx context.Context, texts []string, onBatch func(processed int)) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	batchSize := e.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}
	out := make([][]float32, len(texts))
	processed := 0
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := rawEmbed(ctx, e.cfg, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embedding: batch [%d:%d]: %w", start, end, err)
		}
		for i, v := range vecs {
			out[start+i] = v
		}
		processed += end - start
		if onBatch != nil {
			onBatch(processed)
		}
	}
	return out, nil
}

func (e *clientEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	key := ""
	if e.cache != nil {
		key = "embq:" + e.cfg.Model + ":" + hashText(text)
		if cached, err := e.cache.Get(ctx, key).Bytes(); err == nil {
			if v, err := decodeFloat32s(cached); err == nil {
				return v, nil
			}
		}
	}
	vecs, err := rawEmbed(ctx, e.cfg, []string{text})
	if err != nil {
		return nil, err
	}
	v := vecs[0]
	if e.cache != nil && key != "" {
		// best-effort; cache misses never fail the query path.
		_ = e.cache.Set(ctx, key, encodeFloat32s(v), e.ttl).Err()
	}
	return v, nil
}

func hashText(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

func encodeFloat32s(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

func decodeFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding: corrupt cache entry")
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

// deterministicEmbedder is a test double producing stable, content-derived
// vectors without any network dependency: an FNV hash over character
// trigrams, scattered across the configured dimension and L2-normalised.
type deterministicEmbedder struct {
	dim int
}

// NewDeterministicEmbedder returns an Embedder suitable for tests: same
// input always yields the same vector, and distinct inputs are (with very
// high probability) distinguishable under cosine similarity.
func NewDeterministicEmbedder(dimension int) Embedder {
	if dimension <= 0 {
		dimension = 1536
	}
	return &deterministicEmbedder{dim: dimension}
}

func (d *deterministicEmbedder) Dimension() int { return d.dim }

func (d *deterministicEmbedder) EmbedDocuments(ctx context.Context, texts []string, onBatch func(processed int)) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.vectorFor(t)
		if onBatch != nil {
			onBatch(i + 1)
		}
	}
	return out, nil
}

func (d *deterministicEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return d.vectorFor(text), nil
}

func (d *deterministicEmbedder) vectorFor(text string) []float32 {
	v := make([]float32, d.dim)
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return v
	}
	trigrams := trigramsOf(text)
	for _, tg := range trigrams {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tg))
		idx := int(h.Sum32()) % d.dim
		if idx < 0 {
			idx += d.dim
		}
		v[idx] += 1
	}
	var norm float64
	for _, f := range v {
		norm += float64(f) * float64(f)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

func trigramsOf(s string) []string {
	r := []rune(s)
	if len(r) < 3 {
		return []string{s}
	}
	out := make([]string, 0, len(r)-2)
	for i := 0; i+3 <= len(r); i++ {
		out = append(out, string(r[i:i+3]))
	}
	return out
}
