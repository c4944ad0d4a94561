package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragcore/internal/embedding"
	"ragcore/internal/ragtypes"
	"ragcore/internal/vectorstore"
)

func newTestService(t *testing.T) (*Service, vectorstore.Store) {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	emb := embedding.NewDeterministicEmbedder(32)
	return New(store, emb, nil), store
}

func upsertChunk(t *testing.T, store vectorstore.Store, emb embedding.Embedder, tenantID, documentID, filename, content string, idx, total, page, pages int) {
	t.Helper()
	vec, err := emb.EmbedQuery(context.Background(), content)
	require.NoError(t, err, "embed")
	err = store.UpsertChunk(context.Background(), ragtypes.Chunk{
		ChunkID:   fmt.Sprintf("%s#chunk_%03d", documentID, idx),
		Content:   content,
		Embedding: vec,
		Metadata: ragtypes.ChunkMetadata{
			DocumentID:     documentID,
			SourceFilename: filename,
			TenantID:       tenantID,
			ChunkIndex:     idx,
			TotalChunks:    total,
			PageNumber:     page,
			TotalPages:     pages,
		},
	})
	require.NoError(t, err, "UpsertChunk")
}

func TestChunkSearchScopesByTenant(t *testing.T) {
	svc, store := newTestService(t)
	emb := embedding.NewDeterministicEmbedder(32)

	upsertChunk(t, store, emb, "t1", "doc1", "doc1.pdf", "quarterly earnings report", 0, 1, 1, 1)
	upsertChunk(t, store, emb, "t2", "doc2", "doc2.pdf", "quarterly earnings report", 0, 1, 1, 1)

	results, err := svc.ChunkSearch(context.Background(), "quarterly earnings report", "t1", 10, nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1, "expected only tenant t1's chunk")
	assert.Equal(t, "doc1", results[0].Metadata.DocumentID)
}

func TestGetSegmentRequiresExactlyOneSelector(t *testing.T) {
	svc, store := newTestService(t)
	emb := embedding.NewDeterministicEmbedder(32)
	upsertChunk(t, store, emb, "t1", "doc1", "doc1.pdf", "content", 0, 1, 1, 1)

	idx := 0
	_, err := svc.GetSegment(context.Background(), "t1", "doc1", &idx, nil)
	assert.NoError(t, err, "chunk index lookup")

	_, err = svc.GetSegment(context.Background(), "t1", "doc1", nil, nil)
	assert.Error(t, err, "neither selector provided")

	page := 1
	_, err = svc.GetSegment(context.Background(), "t1", "doc1", &idx, &page)
	assert.Error(t, err, "both selectors provided")
}

func TestDeleteHeaderDrivenPath(t *testing.T) {
	svc, store := newTestService(t)
	emb := embedding.NewDeterministicEmbedder(32)

	require.NoError(t, store.UpsertHeader(context.Background(), ragtypes.Document{
		DocumentID: "doc1", TenantID: "t1", SourceFilename: "doc1.pdf",
	}))
	upsertChunk(t, store, emb, "t1", "doc1", "doc1.pdf", "content", 0, 1, 1, 1)

	result, err := svc.Delete(context.Background(), "t1", "doc1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.ChunksDeleted)

	_, err = svc.Delete(context.Background(), "t1", "doc1")
	assert.Error(t, err, "repeated delete should report not-found")
}

func TestHybridSearchFallsBackToFlatSearch(t *testing.T) {
	svc, store := newTestService(t)
	emb := embedding.NewDeterministicEmbedder(32)
	upsertChunk(t, store, emb, "t1", "doc1", "doc1.pdf", "annual budget overview", 0, 1, 1, 1)

	results, err := svc.HybridSearch(context.Background(), "annual budget overview", "t1", 5, 5)
	require.NoError(t, err)
	require.Len(t, results, 1, "expected one synthetic document grouping")
	assert.Equal(t, "doc1", results[0].Document.DocumentID, "synthetic document id")
}

func TestImageRetrievalOps(t *testing.T) {
	svc, store := newTestService(t)
	blob := []byte{0x89, 'P', 'N', 'G'}
	for page := 1; page <= 2; page++ {
		err := store.UpsertImage(context.Background(), ragtypes.Image{
			ImageID:    fmt.Sprintf("doc1_p%d_img0_deadbeef", page),
			DocumentID: "doc1",
			TenantID:   "t1",
			PageNumber: page,
			MimeType:   "image/png",
			Width:      100,
			Height:     80,
			ImageData:  blob,
		})
		require.NoError(t, err, "UpsertImage")
	}

	img, err := svc.GetImage(context.Background(), "doc1_p1_img0_deadbeef")
	require.NoError(t, err)
	assert.NotEmpty(t, img.ImageData, "GetImage should return the blob")

	meta, err := svc.GetImageMetadata(context.Background(), "doc1_p1_img0_deadbeef")
	require.NoError(t, err)
	assert.Nil(t, meta.ImageData, "GetImageMetadata must not return the blob")
	assert.Equal(t, 100, meta.Width)
	assert.Equal(t, "image/png", meta.MimeType)

	list, err := svc.ListImagesForDocument(context.Background(), "doc1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].PageNumber, "images ordered by page")
	assert.Equal(t, 2, list[1].PageNumber, "images ordered by page")

	_, err = svc.GetImage(context.Background(), "missing")
	assert.Error(t, err, "unknown image id")
}
