// Package vectorstore implements the Vector Store Adapter: connection
// lifecycle, schema bootstrap, and parameterised execution against a
// columnar engine exposing array-valued columns and a cosine-distance
// function, with automatic reconnect on transient failure.
package vectorstore

import (
	"context"

	"ragcore/internal/ragtypes"
)

// Store is the adapter's public contract. It is deliberately small: the
// generic ExecuteSimple primitive plus the concrete upsert/query/delete
// operations the ingestion and search packages need, all built atop it.
type Store interface {
	// Connect establishes (or re-establishes) the underlying connection. It
	// is idempotent and safe to call from multiple goroutines: a connect
	// already in flight is awaited rather than duplicated.
	Connect(ctx context.Context) error
	Close() error

	// ExecuteSimple is the prepared-statement primitive described in the
	// adapter's contract: it re-prepares for every call, leaks no statement
	// handle, and recovers once from a transient connection failure.
	ExecuteSimple(ctx context.Context, sql string, args ...any) ([]Row, error)

	EnsureChunkTable(ctx context.Context) error
	EnsureHeaderTable(ctx context.Context) error
	EnsureImageTable(ctx context.Context) error

	UpsertChunk(ctx context.Context, c ragtypes.Chunk) error
	UpsertHeader(ctx context.Context, d ragtypes.Document) error
	UpsertImage(ctx context.Context, img ragtypes.Image) error

	QueryChunks(ctx context.Context, p ChunkQuery) ([]ragtypes.Chunk, error)
	QueryHeaders(ctx context.Context, p HeaderQuery) ([]ragtypes.Document, error)
	QueryImages(ctx context.Context, p ImageQuery) ([]ragtypes.Image, error)

	GetChunkByIndex(ctx context.Context, tenantID, documentID string, chunkIndex int) (ragtypes.Chunk, error)
	GetChunkByPage(ctx context.Context, tenantID, documentID string, pageNumber int) (ragtypes.Chunk, error)

	ListHeaders(ctx context.Context, tenantID string) ([]ragtypes.Document, error)
	GetHeader(ctx context.Context, tenantID, documentID string) (ragtypes.Document, bool, error)

	// GetImage returns one image including its binary blob; GetImageMetadata
	// returns the same record without the blob. Both wrap apperr.ErrNotFound
	// for an unknown id. ListImagesForDocument returns metadata-only records
	// ordered by page number then image id.
	GetImage(ctx context.Context, imageID string) (ragtypes.Image, error)
	GetImageMetadata(ctx context.Context, imageID string) (ragtypes.Image, error)
	ListImagesForDocument(ctx context.Context, documentID string) ([]ragtypes.Image, error)

	DeleteChunksBySourceFilename(ctx context.Context, tenantID, sourceFilename string) (int, error)
	DeleteChunksByDocumentID(ctx context.Context, tenantID, documentID string) (int, error)
	DeleteHeader(ctx context.Context, tenantID, documentID string) error
	DeleteImagesByDocumentID(ctx context.Context, tenantID, documentID string) (int, error)
}

// ChunkQuery parameterises chunk search and segment lookup.
type ChunkQuery struct {
	TenantID    string
	QueryVector []float32
	K           int
	DocumentIDs []string
}

// HeaderQuery parameterises header (document) search.
type HeaderQuery struct {
	TenantID    string
	QueryVector []float32
	K           int
}

// ImageQuery parameterises image search.
type ImageQuery struct {
	QueryVector []float32
	K           int
	DocumentIDs []string
	PageNumbers []int
}

// Row is the row-reader abstraction the adapter's Design Notes call for: a
// per-row accessor tolerant of upper- and lower-case column names, so the
// store can return results without callers depending on a particular
// driver's case conventions.
type Row map[string]any
