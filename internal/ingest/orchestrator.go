// Package ingest implements the Ingestion Orchestrator: it composes the
// loaders, image extractor, metadata generator, chunker, embedding client,
// and vector store into the parsing -> chunking -> embedding -> storing
// pipeline, publishing job snapshots at every transition.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"ragcore/internal/apperr"
	"ragcore/internal/chunker"
	"ragcore/internal/config"
	"ragcore/internal/jobs"
	"ragcore/internal/loaders"
	"ragcore/internal/metadata"
	"ragcore/internal/metrics"
	"ragcore/internal/observability"
	"ragcore/internal/ragtypes"
	"ragcore/internal/vectorstore"
)

// Embedder is the narrow slice of embedding.Embedder the orchestrator
// depends on, declared locally so this package does not import the
// embedding package's provider-selection concerns.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string, onBatch func(processed int)) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Orchestrator runs the ingestion pipeline for accepted files.
type Orchestrator struct {
	store    vectorstore.Store
	embedder Embedder
	loader   *loaders.Dispatcher
	jobs     *jobs.Manager
	models   config.ModelsConfig
	chunker  config.ChunkerConfig
	ingest   config.IngestConfig
	metrics  metrics.Metrics
}

// New returns an Orchestrator wired to its collaborators. m may be nil, in
// which case metrics reporting is a no-op.
func New(store vectorstore.Store, embedder Embedder, loader *loaders.Dispatcher, jobMgr *jobs.Manager, models config.ModelsConfig, chunkerCfg config.ChunkerConfig, ingestCfg config.IngestConfig, m metrics.Metrics) *Orchestrator {
	if m == nil {
		m = metrics.Noop{}
	}
	return &Orchestrator{
		store:    store,
		embedder: embedder,
		loader:   loader,
		jobs:     jobMgr,
		models:   models,
		chunker:  chunkerCfg,
		ingest:   ingestCfg,
		metrics:  m,
	}
}

// Accept registers a new job for filename and returns its initial snapshot.
// The caller is expected to run Process asynchronously afterward; Accept
// itself never touches the filesystem or the store.
func (o *Orchestrator) Accept(filename, tenantID string) ragtypes.JobState {
	if tenantID == "" {
		tenantID = o.ingest.DefaultTenantID
	}
	return o.jobs.Create(filename, tenantID)
}

// UploadFile describes one already-received file handed to Upload: its
// on-disk location, the filename the caller uploaded it under, and its size
// in bytes.
type UploadFile struct {
	Path     string
	Filename string
	Size     int64
}

// maxFilesPerUpload bounds a single upload request; the host spawns one job
// per file within it.
const maxFilesPerUpload = 10

var acceptedExtensions = map[string]bool{".pdf": true, ".docx": true, ".md": true, ".txt": true}

// Upload validates a batch of received files, registers one job per file,
// and starts processing each asynchronously. The whole batch is rejected on
// the first unsupported extension or oversized file, before any job is
// created. extra carries caller-supplied metadata keys copied into every
// chunk of every file in the batch. Processing outlives the caller's
// request context; callers observe progress through GetJob/Stream.
func (o *Orchestrator) Upload(ctx context.Context, files []UploadFile, tenantID string, extra map[string]any) ([]ragtypes.JobState, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("ingest: %w: no files supplied", apperr.ErrInput)
	}
	if len(files) > maxFilesPerUpload {
		return nil, fmt.Errorf("ingest: %w: %d files exceeds the per-request limit of %d", apperr.ErrInput, len(files), maxFilesPerUpload)
	}
	maxSize := o.ingest.MaxFileSizeBytes
	if maxSize <= 0 {
		maxSize = 50 << 20
	}
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !acceptedExtensions[ext] {
			return nil, fmt.Errorf("ingest: %w: unsupported extension %q for %q", apperr.ErrInput, ext, f.Filename)
		}
		if f.Size > maxSize {
			return nil, fmt.Errorf("ingest: %w: %q is %d bytes, exceeding the %d-byte limit", apperr.ErrInput, f.Filename, f.Size, maxSize)
		}
	}

	states := make([]ragtypes.JobState, 0, len(files))
	for _, f := range files {
		state := o.Accept(f.Filename, tenantID)
		states = append(states, state)
		go o.Process(context.WithoutCancel(ctx), state.JobID, f.Path, f.Filename, state.TenantID, extra)
	}
	return states, nil
}

// Process runs the full pipeline for a previously accepted job. path is the
// on-disk location of the uploaded file; extra, when non-nil, is copied
// into every produced chunk's metadata. A cancelled context transitions
// the job to failed with error "cancelled" rather than propagating the
// raw context error.
func (o *Orchestrator) Process(ctx context.Context, jobID, path, filename, tenantID string, extra map[string]any) {
	if _, ok := o.jobs.Get(jobID); !ok {
		return
	}

	documentID := deriveDocumentID(filename)
	docType := classifyExtension(filename)
	started := time.Now()

	if err := o.run(ctx, jobID, documentID, tenantID, path, filename, docType, extra); err != nil {
		message := err.Error()
		if ctx.Err() != nil {
			message = "cancelled"
		}
		observability.LoggerWithTrace(ctx).Error().
			Err(err).
			Str("job_id", jobID).
			Str("document_id", documentID).
			Str("tenant_id", tenantID).
			Str("filename", filename).
			Msg("ingestion job failed")
		o.metrics.IncCounter("ingest_jobs_total", map[string]string{"status": "failed"})
		o.jobs.Update(jobID, jobs.Update{
			Status:  ragtypes.JobStatusFailed,
			Stage:   ragtypes.JobStageFailed,
			Error:   strPtr(message),
			Message: strPtr("Ingestion failed"),
		})
		return
	}
	o.metrics.IncCounter("ingest_jobs_total", map[string]string{"status": "completed"})
	o.metrics.ObserveHistogram("ingest_job_duration_ms", float64(time.Since(started).Milliseconds()), map[string]string{"document_type": string(docType)})
}

func (o *Orchestrator) run(ctx context.Context, jobID, documentID, tenantID, path, filename string, docType ragtypes.DocumentType, extra map[string]any) error {
	o.jobs.Update(jobID, jobs.Update{Status: ragtypes.JobStatusRunning, Stage: ragtypes.JobStageParsing})

	pages, images, err := o.loader.Load(ctx, path, docType, documentID)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("ingest: %w: no pages produced for %q", apperr.ErrInput, filename)
	}
	totalPages := reconcileTotalPages(pages)

	header, err := o.buildHeader(ctx, documentID, tenantID, filename, docType, pages, totalPages)
	if err != nil {
		return err
	}

	o.jobs.Update(jobID, jobs.Update{Stage: ragtypes.JobStageChunking})
	units, err := chunker.Split(pages, chunker.Config{
		Kind:    chunker.SelectKind(docType, o.chunker.Kind),
		Size:    o.chunker.ChunkSize,
		Overlap: o.chunker.ChunkOverlap,
	})
	if err != nil {
		return err
	}
	if len(units) == 0 {
		return fmt.Errorf("ingest: %w: chunking produced no chunks for %q", apperr.ErrInput, filename)
	}

	totalChunks := len(units)
	o.jobs.Update(jobID, jobs.Update{Stage: ragtypes.JobStageEmbedding, TotalChunks: &totalChunks})

	texts := make([]string, len(units))
	for i, u := range units {
		content := u.Content
		if header.Title != "" {
			content = "Title: " + header.Title + "\n\n" + content
		}
		texts[i] = content
	}

	processed := 0
	vectors, err := o.embedder.EmbedDocuments(ctx, texts, func(n int) {
		processed = n
		o.jobs.Update(jobID, jobs.Update{ProcessedChunks: &processed})
	})
	if err != nil {
		return fmt.Errorf("ingest: %w: embedding chunks: %v", apperr.ErrInference, err)
	}

	o.jobs.Update(jobID, jobs.Update{Stage: ragtypes.JobStageStoring})

	if len(images) > 0 {
		if err := o.storeImages(ctx, tenantID, documentID, images); err != nil {
			return err
		}
	}

	chunks := make([]ragtypes.Chunk, len(units))
	for i, u := range units {
		chunks[i] = ragtypes.Chunk{
			ChunkID:   fmt.Sprintf("%s#chunk_%03d", documentID, i),
			Content:   texts[i],
			Embedding: vectors[i],
			Metadata: ragtypes.ChunkMetadata{
				DocumentID:     documentID,
				SourceFilename: filename,
				TenantID:       tenantID,
				ChunkIndex:     i,
				TotalChunks:    totalChunks,
				PageNumber:     u.PageNumber,
				TotalPages:     u.TotalPages,
				Title:          header.Title,
				Extra:          extra,
			},
		}
	}
	for _, c := range chunks {
		if err := o.store.UpsertChunk(ctx, c); err != nil {
			return fmt.Errorf("ingest: %w: inserting chunk %s: %v", apperr.ErrPersistentStore, c.ChunkID, err)
		}
	}

	header.ChunkCount = len(chunks)
	header.TotalPages = totalPages
	if err := o.store.UpsertHeader(ctx, header); err != nil {
		return fmt.Errorf("ingest: %w: upserting header for %q: %v", apperr.ErrPersistentStore, documentID, err)
	}

	final := len(chunks)
	o.jobs.Update(jobID, jobs.Update{
		Status:          ragtypes.JobStatusCompleted,
		Stage:           ragtypes.JobStageCompleted,
		ProcessedChunks: &final,
		DocumentID:      strPtr(documentID),
		Message:         strPtr("Ingestion completed"),
	})
	return nil
}

func (o *Orchestrator) buildHeader(ctx context.Context, documentID, tenantID, filename string, docType ragtypes.DocumentType, pages []ragtypes.PageUnit, totalPages int) (ragtypes.Document, error) {
	preview := buildPreview(pages, o.ingest.SummaryInputMaxPages, o.ingest.SummaryInputMaxChars)
	result := metadata.Generate(ctx, o.models, o.models.MetadataModel, fallbackTitle(filename, documentID), preview)

	summaryForEmbedding := truncate(result.Summary, 8000)
	var summaryEmbedding []float32
	if strings.TrimSpace(summaryForEmbedding) != "" {
		vec, err := o.embedder.EmbedQuery(ctx, summaryForEmbedding)
		if err == nil {
			summaryEmbedding = vec
		}
	}

	return ragtypes.Document{
		DocumentID:       documentID,
		TenantID:         tenantID,
		SourceFilename:   filename,
		DocumentType:     docType,
		Language:         result.Language,
		Title:            result.Title,
		Summary:          result.Summary,
		TotalPages:       totalPages,
		CreatedAt:        time.Now().UTC(),
		SummaryEmbedding: summaryEmbedding,
	}, nil
}

// storeImages writes images under a bounded-concurrency fan-out (default
// concurrency from IMAGE_STORAGE_CONCURRENCY), retrying each write on a
// recognised rate-limit error with exponential backoff. Any image that
// exhausts its retries fails the whole ingestion: image write failure
// after retries is fatal.
func (o *Orchestrator) storeImages(ctx context.Context, tenantID, documentID string, images []ragtypes.Image) error {
	concurrency := o.ingest.ImageStorageConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))
	group, gctx := errgroup.WithContext(ctx)

	for i := range images {
		img := images[i]
		img.TenantID = tenantID
		img.DocumentID = documentID
		img.CreatedAt = time.Now().UTC()
		if strings.TrimSpace(img.Description) != "" && !img.Degraded {
			if vec, err := o.embedder.EmbedQuery(gctx, img.Description); err == nil {
				img.DescriptionEmbedding = vec
			}
		}

		group.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			return o.storeImageWithRetry(gctx, img)
		})
	}

	return group.Wait()
}

func (o *Orchestrator) storeImageWithRetry(ctx context.Context, img ragtypes.Image) error {
	retries := o.ingest.ImageStorageRetries
	if retries <= 0 {
		retries = 1
	}
	delay := o.ingest.ImageStorageRetryDelay
	if delay <= 0 {
		delay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		err := o.store.UpsertImage(ctx, img)
		if err == nil {
			return nil
		}
		lastErr = err
		if !apperr.IsRateLimited(err) {
			return fmt.Errorf("ingest: %w: storing image %s: %v", apperr.ErrPersistentStore, img.ImageID, err)
		}
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("ingest: %w: storing image %s after %d retries: %v", apperr.ErrPersistentStore, img.ImageID, retries, lastErr)
}

func deriveDocumentID(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	sum := sha256.Sum256([]byte(filename))
	return sanitizeID(base) + "_" + hex.EncodeToString(sum[:4])
}

func sanitizeID(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func classifyExtension(filename string) ragtypes.DocumentType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return ragtypes.DocumentTypePDF
	case ".docx":
		return ragtypes.DocumentTypeDOCX
	case ".md":
		return ragtypes.DocumentTypeMarkdown
	case ".txt":
		return ragtypes.DocumentTypeText
	default:
		return ragtypes.DocumentTypeUnknown
	}
}

// reconcileTotalPages is the maximum total_pages observed across returned
// page units, falling back to the unit count when pages don't carry one.
func reconcileTotalPages(pages []ragtypes.PageUnit) int {
	max := 0
	for _, p := range pages {
		if p.TotalPages > max {
			max = p.TotalPages
		}
	}
	if max == 0 {
		max = len(pages)
	}
	return max
}

func buildPreview(pages []ragtypes.PageUnit, maxPages, maxChars int) string {
	if maxPages <= 0 {
		maxPages = 3
	}
	if maxChars <= 0 {
		maxChars = 4000
	}
	var sb strings.Builder
	for i, p := range pages {
		if i >= maxPages {
			break
		}
		sb.WriteString(p.Text)
		sb.WriteString("\n")
	}
	return truncate(sb.String(), maxChars)
}

func fallbackTitle(filename, documentID string) string {
	if filename != "" {
		return strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return documentID
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func strPtr(s string) *string { return &s }
