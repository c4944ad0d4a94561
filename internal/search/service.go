// Package search implements the Search Service: chunk, header, hybrid, and
// image search, segment lookup, listing, and the two-path deletion
// strategy, all composed from the embedding client and the vector store
// adapter.
package search

import (
	"context"
	"fmt"
	"time"

	"ragcore/internal/apperr"
	"ragcore/internal/embedding"
	"ragcore/internal/metrics"
	"ragcore/internal/ragtypes"
	"ragcore/internal/resolve"
	"ragcore/internal/vectorstore"
)

// Service composes the embedding client, the store, and the handle
// resolver into the read/delete surface the host adapters call.
type Service struct {
	store    vectorstore.Store
	embedder embedding.Embedder
	resolver *resolve.Resolver
	metrics  metrics.Metrics
}

// New returns a Service backed by store and embedder. m may be nil, in
// which case metrics reporting is a no-op.
func New(store vectorstore.Store, embedder embedding.Embedder, m metrics.Metrics) *Service {
	if m == nil {
		m = metrics.Noop{}
	}
	return &Service{store: store, embedder: embedder, resolver: resolve.New(store), metrics: m}
}

// reportQuery records a search_queries_total count and a
// search_query_duration_ms histogram observation for kind, labeled by
// whether it errored.
func (s *Service) reportQuery(kind string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.IncCounter("search_queries_total", map[string]string{"kind": kind, "status": status})
	s.metrics.ObserveHistogram("search_query_duration_ms", float64(time.Since(started).Milliseconds()), map[string]string{"kind": kind})
}

// ChunkSearch embeds query and runs cosine similarity over the chunk table,
// scoped to tenant and, if provided, to a document id/name allow-list.
// docNames, when supplied, is resolved to document ids via the Handle
// Resolver and unioned with docIDs before filtering.
func (s *Service) ChunkSearch(ctx context.Context, query, tenantID string, k int, docIDs, docNames []string) (out []ragtypes.Chunk, err error) {
	started := time.Now()
	defer func() { s.reportQuery("chunk", started, err) }()

	allowed, err := s.resolveDocIDs(ctx, tenantID, docIDs, docNames)
	if err != nil {
		return nil, err
	}

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	out, err = s.store.QueryChunks(ctx, vectorstore.ChunkQuery{
		TenantID:    tenantID,
		QueryVector: vec,
		K:           k,
		DocumentIDs: allowed,
	})
	return out, err
}

// HeaderSearch embeds query and runs cosine similarity over the header
// table's summary embeddings, scoped to tenant.
func (s *Service) HeaderSearch(ctx context.Context, query, tenantID string, k int) (out []ragtypes.Document, err error) {
	started := time.Now()
	defer func() { s.reportQuery("header", started, err) }()

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	out, err = s.store.QueryHeaders(ctx, vectorstore.HeaderQuery{TenantID: tenantID, QueryVector: vec, K: k})
	return out, err
}

// HybridResult pairs a matched document with the top chunks found inside
// it. When header search returns nothing, Document is a synthetic record
// built from a chunk's own metadata rather than a real header row.
type HybridResult struct {
	Document ragtypes.Document
	Chunks   []ragtypes.Chunk
}

// HybridSearch runs header search, then a scoped chunk search within each
// matched document. If header search comes back empty, it falls back to a
// flat chunk search of size headerK*chunkKPerDoc and groups the results by
// document id into synthetic document records, so callers never have to
// special-case the no-header-hit path.
func (s *Service) HybridSearch(ctx context.Context, query, tenantID string, headerK, chunkKPerDoc int) ([]HybridResult, error) {
	docs, err := s.HeaderSearch(ctx, query, tenantID, headerK)
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return s.flatFallback(ctx, query, tenantID, headerK*chunkKPerDoc)
	}

	results := make([]HybridResult, 0, len(docs))
	for _, d := range docs {
		chunks, err := s.ChunkSearch(ctx, query, tenantID, chunkKPerDoc, []string{d.DocumentID}, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, HybridResult{Document: d, Chunks: chunks})
	}
	return results, nil
}

func (s *Service) flatFallback(ctx context.Context, query, tenantID string, k int) ([]HybridResult, error) {
	chunks, err := s.ChunkSearch(ctx, query, tenantID, k, nil, nil)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	byDoc := make(map[string][]ragtypes.Chunk)
	for _, c := range chunks {
		id := c.Metadata.DocumentID
		if _, ok := byDoc[id]; !ok {
			order = append(order, id)
		}
		byDoc[id] = append(byDoc[id], c)
	}

	results := make([]HybridResult, 0, len(order))
	for _, id := range order {
		group := byDoc[id]
		synthetic := ragtypes.Document{
			DocumentID:     id,
			TenantID:       tenantID,
			SourceFilename: group[0].Metadata.SourceFilename,
			Title:          group[0].Metadata.Title,
			TotalPages:     group[0].Metadata.TotalPages,
		}
		results = append(results, HybridResult{Document: synthetic, Chunks: group})
	}
	return results, nil
}

// ImageSearch runs cosine similarity over image description embeddings.
// When pageRange > 0, the pageNumbers filter is expanded to
// [page-pageRange, page+pageRange] for every listed page. Images with no
// description embedding are excluded by the store layer.
func (s *Service) ImageSearch(ctx context.Context, query string, k int, docIDs []string, pageNumbers []int, pageRange int) (out []ragtypes.Image, err error) {
	started := time.Now()
	defer func() { s.reportQuery("image", started, err) }()

	vec, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	pages := pageNumbers
	if pageRange > 0 && len(pageNumbers) > 0 {
		expanded := make(map[int]bool)
		for _, p := range pageNumbers {
			for d := -pageRange; d <= pageRange; d++ {
				if p+d > 0 {
					expanded[p+d] = true
				}
			}
		}
		pages = pages[:0]
		for p := range expanded {
			pages = append(pages, p)
		}
	}

	return s.store.QueryImages(ctx, vectorstore.ImageQuery{
		QueryVector: vec,
		K:           k,
		DocumentIDs: docIDs,
		PageNumbers: pages,
	})
}

// GetImage returns one stored image including its binary blob, wrapping a
// not-found error for an unknown id. Callers rendering the blob should check
// Degraded first: a degraded image carries raw pixel bytes rather than an
// encoded PNG.
func (s *Service) GetImage(ctx context.Context, imageID string) (ragtypes.Image, error) {
	return s.store.GetImage(ctx, imageID)
}

// GetImageMetadata returns one stored image without its binary blob.
func (s *Service) GetImageMetadata(ctx context.Context, imageID string) (ragtypes.Image, error) {
	return s.store.GetImageMetadata(ctx, imageID)
}

// ListImagesForDocument returns every image stored for a document, blob-free,
// ordered by page number.
func (s *Service) ListImagesForDocument(ctx context.Context, documentID string) ([]ragtypes.Image, error) {
	return s.store.ListImagesForDocument(ctx, documentID)
}

// GetSegment performs an exact-match chunk lookup by chunk index or page
// number. Exactly one of chunkIndex/pageNumber must be non-nil.
func (s *Service) GetSegment(ctx context.Context, tenantID, documentID string, chunkIndex, pageNumber *int) (ragtypes.Chunk, error) {
	switch {
	case chunkIndex != nil && pageNumber == nil:
		return s.store.GetChunkByIndex(ctx, tenantID, documentID, *chunkIndex)
	case pageNumber != nil && chunkIndex == nil:
		return s.store.GetChunkByPage(ctx, tenantID, documentID, *pageNumber)
	default:
		return ragtypes.Chunk{}, fmt.Errorf("search: %w: exactly one of chunkIndex or pageNumber is required", apperr.ErrInput)
	}
}

// List returns every header for tenant, ordered by created_at descending.
func (s *Service) List(ctx context.Context, tenantID string) ([]ragtypes.Document, error) {
	return s.store.ListHeaders(ctx, tenantID)
}

// DeleteResult reports how much was actually removed.
type DeleteResult struct {
	ChunksDeleted int
	ImagesDeleted int
}

// Delete removes a document's chunks, header, and images. It first tries
// the header-driven path: look up the header's source_filename, delete
// chunks keyed by (source_filename, tenant_id), then delete the header row.
// If the header lookup fails or deletes zero chunks, it falls back to
// deleting chunks keyed by document_id directly. Images are always deleted
// by document_id regardless of which chunk path ran. A not-found error is
// returned only if neither path removed any chunks; in that case a header
// row with no chunks behind it is deliberately left in place rather than
// reaped as a side effect of a failed delete — re-ingesting the document
// replaces it.
func (s *Service) Delete(ctx context.Context, tenantID, documentID string) (DeleteResult, error) {
	var chunksDeleted int

	if header, ok, err := s.store.GetHeader(ctx, tenantID, documentID); err == nil && ok {
		n, derr := s.store.DeleteChunksBySourceFilename(ctx, tenantID, header.SourceFilename)
		if derr == nil {
			chunksDeleted = n
		}
		if chunksDeleted > 0 {
			_ = s.store.DeleteHeader(ctx, tenantID, documentID)
		}
	}

	if chunksDeleted == 0 {
		n, err := s.store.DeleteChunksByDocumentID(ctx, tenantID, documentID)
		if err != nil {
			return DeleteResult{}, err
		}
		chunksDeleted = n
		if chunksDeleted > 0 {
			_ = s.store.DeleteHeader(ctx, tenantID, documentID)
		}
	}

	imagesDeleted, err := s.store.DeleteImagesByDocumentID(ctx, tenantID, documentID)
	if err != nil {
		return DeleteResult{}, err
	}

	if chunksDeleted == 0 {
		return DeleteResult{ImagesDeleted: imagesDeleted}, fmt.Errorf("search: %w: document %q has no chunks to delete", apperr.ErrNotFound, documentID)
	}

	return DeleteResult{ChunksDeleted: chunksDeleted, ImagesDeleted: imagesDeleted}, nil
}

func (s *Service) resolveDocIDs(ctx context.Context, tenantID string, docIDs, docNames []string) ([]string, error) {
	if len(docNames) == 0 {
		return docIDs, nil
	}
	resolved, err := s.resolver.Resolve(ctx, docNames, tenantID)
	if err != nil {
		return nil, err
	}
	if len(docIDs) == 0 {
		return resolved, nil
	}
	seen := make(map[string]bool, len(docIDs)+len(resolved))
	out := make([]string, 0, len(docIDs)+len(resolved))
	for _, id := range append(append([]string{}, docIDs...), resolved...) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}
