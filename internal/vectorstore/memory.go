package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ragcore/internal/apperr"
	"ragcore/internal/ragtypes"
)

// memoryStore is a fully in-process Store, the in-memory counterpart of
// the ClickHouse adapter in the same way the embedding client pairs a live
// client with a deterministic double. It implements the same
// cosine-similarity ranking the ClickHouse adapter delegates to the engine,
// computed in Go instead.
type memoryStore struct {
	mu     sync.Mutex
	chunks map[string]ragtypes.Chunk
	hdrs   map[string]ragtypes.Document // key: tenantID + "/" + documentID
	images map[string]ragtypes.Image
}

// NewMemoryStore returns a Store backed by in-process maps, useful for
// tests that exercise ingestion and search without a live database.
func NewMemoryStore() Store {
	return &memoryStore{
		chunks: make(map[string]ragtypes.Chunk),
		hdrs:   make(map[string]ragtypes.Document),
		images: make(map[string]ragtypes.Image),
	}
}

func (m *memoryStore) Connect(ctx context.Context) error { return nil }
func (m *memoryStore) Close() error                      { return nil }

func (m *memoryStore) ExecuteSimple(ctx context.Context, sqlText string, args ...any) ([]Row, error) {
	return nil, nil
}

func (m *memoryStore) EnsureChunkTable(ctx context.Context) error  { return nil }
func (m *memoryStore) EnsureHeaderTable(ctx context.Context) error { return nil }
func (m *memoryStore) EnsureImageTable(ctx context.Context) error  { return nil }

func (m *memoryStore) UpsertChunk(ctx context.Context, c ragtypes.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[c.ChunkID] = c
	return nil
}

func headerKey(tenantID, documentID string) string { return tenantID + "/" + documentID }

func (m *memoryStore) UpsertHeader(ctx context.Context, d ragtypes.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hdrs[headerKey(d.TenantID, d.DocumentID)] = d
	return nil
}

func (m *memoryStore) UpsertImage(ctx context.Context, img ragtypes.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.ImageID] = img
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (m *memoryStore) QueryChunks(ctx context.Context, p ChunkQuery) ([]ragtypes.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.K <= 0 {
		return nil, nil
	}
	var allowed map[string]bool
	if len(p.DocumentIDs) > 0 {
		allowed = make(map[string]bool, len(p.DocumentIDs))
		for _, id := range p.DocumentIDs {
			allowed[id] = true
		}
	}
	type scored struct {
		c ragtypes.Chunk
		s float64
	}
	var cand []scored
	for _, c := range m.chunks {
		if c.Metadata.TenantID != p.TenantID {
			continue
		}
		if allowed != nil && !allowed[c.Metadata.DocumentID] {
			continue
		}
		cand = append(cand, scored{c, cosine(c.Embedding, p.QueryVector)})
	}
	sort.Slice(cand, func(i, j int) bool { return cand[i].s > cand[j].s })
	if len(cand) > p.K {
		cand = cand[:p.K]
	}
	out := make([]ragtypes.Chunk, len(cand))
	for i, s := range cand {
		s.c.Score = float32(s.s)
		out[i] = s.c
	}
	return out, nil
}

func (m *memoryStore) QueryHeaders(ctx context.Context, p HeaderQuery) ([]ragtypes.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.K <= 0 {
		return nil, nil
	}
	type scored struct {
		d ragtypes.Document
		s float64
	}
	var cand []scored
	for _, d := range m.hdrs {
		if d.TenantID != p.TenantID {
			continue
		}
		cand = append(cand, scored{d, cosine(d.SummaryEmbedding, p.QueryVector)})
	}
	sort.Slice(cand, func(i, j int) bool { return cand[i].s > cand[j].s })
	if len(cand) > p.K {
		cand = cand[:p.K]
	}
	out := make([]ragtypes.Document, len(cand))
	for i, s := range cand {
		out[i] = s.d
	}
	return out, nil
}

func (m *memoryStore) QueryImages(ctx context.Context, p ImageQuery) ([]ragtypes.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.K <= 0 {
		return nil, nil
	}
	var allowedDocs map[string]bool
	if len(p.DocumentIDs) > 0 {
		allowedDocs = make(map[string]bool, len(p.DocumentIDs))
		for _, id := range p.DocumentIDs {
			allowedDocs[id] = true
		}
	}
	pageSet := make(map[int]bool, len(p.PageNumbers))
	for _, pn := range p.PageNumbers {
		pageSet[pn] = true
	}
	type scored struct {
		img ragtypes.Image
		s   float64
	}
	var cand []scored
	for _, img := range m.images {
		if len(img.DescriptionEmbedding) == 0 {
			continue
		}
		if allowedDocs != nil && !allowedDocs[img.DocumentID] {
			continue
		}
		if len(pageSet) > 0 && !pageSet[img.PageNumber] {
			continue
		}
		cand = append(cand, scored{img, cosine(img.DescriptionEmbedding, p.QueryVector)})
	}
	sort.Slice(cand, func(i, j int) bool { return cand[i].s > cand[j].s })
	if len(cand) > p.K {
		cand = cand[:p.K]
	}
	out := make([]ragtypes.Image, len(cand))
	for i, s := range cand {
		s.img.Score = float32(s.s)
		out[i] = s.img
	}
	return out, nil
}

func (m *memoryStore) GetChunkByIndex(ctx context.Context, tenantID, documentID string, chunkIndex int) (ragtypes.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chunks {
		if c.Metadata.TenantID == tenantID && c.Metadata.DocumentID == documentID && c.Metadata.ChunkIndex == chunkIndex {
			return c, nil
		}
	}
	return ragtypes.Chunk{}, apperr.ErrNotFound
}

func (m *memoryStore) GetChunkByPage(ctx context.Context, tenantID, documentID string, pageNumber int) (ragtypes.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.chunks {
		if c.Metadata.TenantID == tenantID && c.Metadata.DocumentID == documentID && c.Metadata.PageNumber == pageNumber {
			return c, nil
		}
	}
	return ragtypes.Chunk{}, apperr.ErrNotFound
}

func (m *memoryStore) ListHeaders(ctx context.Context, tenantID string) ([]ragtypes.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ragtypes.Document
	for _, d := range m.hdrs {
		if tenantID == "" || d.TenantID == tenantID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) GetHeader(ctx context.Context, tenantID, documentID string) (ragtypes.Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.hdrs[headerKey(tenantID, documentID)]
	return d, ok, nil
}

func (m *memoryStore) GetImage(ctx context.Context, imageID string) (ragtypes.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, ok := m.images[imageID]
	if !ok {
		return ragtypes.Image{}, fmt.Errorf("vectorstore: image %q: %w", imageID, apperr.ErrNotFound)
	}
	return img, nil
}

func (m *memoryStore) GetImageMetadata(ctx context.Context, imageID string) (ragtypes.Image, error) {
	img, err := m.GetImage(ctx, imageID)
	if err != nil {
		return ragtypes.Image{}, err
	}
	img.ImageData = nil
	return img, nil
}

func (m *memoryStore) ListImagesForDocument(ctx context.Context, documentID string) ([]ragtypes.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ragtypes.Image
	for _, img := range m.images {
		if img.DocumentID != documentID {
			continue
		}
		img.ImageData = nil
		out = append(out, img)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PageNumber != out[j].PageNumber {
			return out[i].PageNumber < out[j].PageNumber
		}
		return out[i].ImageID < out[j].ImageID
	})
	return out, nil
}

func (m *memoryStore) DeleteChunksBySourceFilename(ctx context.Context, tenantID, sourceFilename string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, c := range m.chunks {
		if c.Metadata.TenantID == tenantID && c.Metadata.SourceFilename == sourceFilename {
			delete(m.chunks, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) DeleteChunksByDocumentID(ctx context.Context, tenantID, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, c := range m.chunks {
		if c.Metadata.TenantID == tenantID && c.Metadata.DocumentID == documentID {
			delete(m.chunks, id)
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) DeleteHeader(ctx context.Context, tenantID, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.hdrs, headerKey(tenantID, documentID))
	return nil
}

func (m *memoryStore) DeleteImagesByDocumentID(ctx context.Context, tenantID, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, img := range m.images {
		if img.TenantID == tenantID && img.DocumentID == documentID {
			delete(m.images, id)
			n++
		}
	}
	return n, nil
}
