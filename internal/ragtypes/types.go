// Package ragtypes holds the shared entity types that flow between the
// ingestion and retrieval packages: documents, chunks, images, and job
// snapshots.
package ragtypes

import (
	"encoding/json"
	"time"
)

// DocumentType enumerates the supported source formats.
type DocumentType string

const (
	DocumentTypePDF      DocumentType = "pdf"
	DocumentTypeDOCX     DocumentType = "docx"
	DocumentTypeMarkdown DocumentType = "markdown"
	DocumentTypeText     DocumentType = "text"
	DocumentTypeUnknown  DocumentType = "unknown"
)

// Document is the header record describing one ingested file for one tenant.
type Document struct {
	DocumentID       string       `json:"document_id"`
	TenantID         string       `json:"tenant_id"`
	SourceFilename   string       `json:"source_filename"`
	DocumentType     DocumentType `json:"document_type"`
	Language         string       `json:"language,omitempty"`
	Title            string       `json:"title"`
	Summary          string       `json:"summary"`
	TotalPages       int          `json:"total_pages"`
	ChunkCount       int          `json:"chunk_count"`
	CreatedAt        time.Time    `json:"created_at"`
	SummaryEmbedding []float32    `json:"summary_embedding,omitempty"`
}

// ChunkMetadata is the JSON payload stored alongside a chunk's content and
// embedding; it is also what search results echo back inline. Extra holds
// caller-supplied keys passed through Upload; they serialize flat alongside
// the well-known fields, which always win on a key collision.
type ChunkMetadata struct {
	DocumentID     string         `json:"document_id"`
	SourceFilename string         `json:"source_filename"`
	TenantID       string         `json:"tenant_id"`
	ChunkIndex     int            `json:"chunk_index"`
	TotalChunks    int            `json:"total_chunks"`
	PageNumber     int            `json:"page_number"`
	TotalPages     int            `json:"total_pages"`
	Title          string         `json:"title,omitempty"`
	Extra          map[string]any `json:"-"`
}

// chunkMetadataFields mirrors ChunkMetadata without the custom JSON methods,
// so marshalling the known fields doesn't recurse.
type chunkMetadataFields struct {
	DocumentID     string `json:"document_id"`
	SourceFilename string `json:"source_filename"`
	TenantID       string `json:"tenant_id"`
	ChunkIndex     int    `json:"chunk_index"`
	TotalChunks    int    `json:"total_chunks"`
	PageNumber     int    `json:"page_number"`
	TotalPages     int    `json:"total_pages"`
	Title          string `json:"title,omitempty"`
}

var knownMetadataKeys = map[string]bool{
	"document_id": true, "source_filename": true, "tenant_id": true,
	"chunk_index": true, "total_chunks": true, "page_number": true,
	"total_pages": true, "title": true,
}

// MarshalJSON flattens Extra into the same object as the well-known fields.
func (m ChunkMetadata) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(chunkMetadataFields{
		DocumentID:     m.DocumentID,
		SourceFilename: m.SourceFilename,
		TenantID:       m.TenantID,
		ChunkIndex:     m.ChunkIndex,
		TotalChunks:    m.TotalChunks,
		PageNumber:     m.PageNumber,
		TotalPages:     m.TotalPages,
		Title:          m.Title,
	})
	if err != nil || len(m.Extra) == 0 {
		return known, err
	}
	merged := make(map[string]any, len(m.Extra)+8)
	for k, v := range m.Extra {
		if !knownMetadataKeys[k] {
			merged[k] = v
		}
	}
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	return json.Marshal(merged)
}

// UnmarshalJSON captures any key that is not a well-known field into Extra.
func (m *ChunkMetadata) UnmarshalJSON(data []byte) error {
	var fields chunkMetadataFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = ChunkMetadata{
		DocumentID:     fields.DocumentID,
		SourceFilename: fields.SourceFilename,
		TenantID:       fields.TenantID,
		ChunkIndex:     fields.ChunkIndex,
		TotalChunks:    fields.TotalChunks,
		PageNumber:     fields.PageNumber,
		TotalPages:     fields.TotalPages,
		Title:          fields.Title,
	}
	for k := range knownMetadataKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		m.Extra = raw
	}
	return nil
}

// Chunk is one text segment produced by the splitter.
type Chunk struct {
	ChunkID   string        `json:"chunk_id"`
	Content   string        `json:"content"`
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
	Score     float32       `json:"score,omitempty"`
}

// Image is a captioned raster recovered from a page during ingestion.
type Image struct {
	ImageID              string    `json:"image_id"`
	DocumentID           string    `json:"document_id"`
	TenantID             string    `json:"tenant_id"`
	PageNumber           int       `json:"page_number"`
	MimeType             string    `json:"mime_type"`
	Width                int       `json:"width"`
	Height               int       `json:"height"`
	Description          string    `json:"description"`
	DescriptionEmbedding []float32 `json:"description_embedding,omitempty"`
	ImageData            []byte    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	Degraded             bool      `json:"degraded,omitempty"`
	Score                float32   `json:"score,omitempty"`
}

// JobStatus is the coarse lifecycle state of an ingestion job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobStage is the fine-grained pipeline stage of an ingestion job.
type JobStage string

const (
	JobStageQueued    JobStage = "queued"
	JobStageParsing   JobStage = "parsing"
	JobStageChunking  JobStage = "chunking"
	JobStageEmbedding JobStage = "embedding"
	JobStageStoring   JobStage = "storing"
	JobStageCompleted JobStage = "completed"
	JobStageFailed    JobStage = "failed"
)

// JobState is an immutable snapshot of an ingestion job at one point in time.
// The Job Manager hands out copies; callers must not mutate a received
// JobState and expect it to affect the registry.
type JobState struct {
	JobID           string     `json:"job_id"`
	Filename        string     `json:"filename"`
	TenantID        string     `json:"tenant_id"`
	Status          JobStatus  `json:"status"`
	Stage           JobStage   `json:"stage"`
	TotalChunks     int        `json:"total_chunks"`
	ProcessedChunks int        `json:"processed_chunks"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	Error           string     `json:"error,omitempty"`
	DocumentID      string     `json:"document_id,omitempty"`
	Message         string     `json:"message,omitempty"`
}

// Terminal reports whether the job has reached a terminal status.
func (j JobState) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// PageUnit is a loader's intermediate representation of one page's text,
// possibly augmented with interleaved [IMAGE:...] blocks.
type PageUnit struct {
	Text       string
	PageNumber int
	TotalPages int
	SourceRef  string
}
