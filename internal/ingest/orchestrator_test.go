package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragcore/internal/config"
	"ragcore/internal/embedding"
	"ragcore/internal/jobs"
	"ragcore/internal/loaders"
	"ragcore/internal/metrics"
	"ragcore/internal/ragtypes"
	"ragcore/internal/vectorstore"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, vectorstore.Store, *jobs.Manager) {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	jobMgr := jobs.New()
	loader := loaders.NewDispatcher(nil)
	emb := embedding.NewDeterministicEmbedder(32)

	orch := New(store, emb, loader, jobMgr,
		config.ModelsConfig{OpenAIBaseURL: "http://127.0.0.1:1"},
		config.ChunkerConfig{ChunkSize: 200, ChunkOverlap: 20},
		config.IngestConfig{
			DefaultTenantID:         "default",
			SummaryInputMaxPages:    3,
			SummaryInputMaxChars:    4000,
			ImageStorageConcurrency: 2,
			ImageStorageRetries:     1,
			ImageStorageRetryDelay:  time.Millisecond,
		},
		metrics.NewMock(),
	)
	return orch, store, jobMgr
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "write temp file")
	return path
}

func TestProcessCompletesIngestion(t *testing.T) {
	orch, store, jobMgr := newTestOrchestrator(t)
	text := strings.Repeat("the committee reviewed quarterly progress and budget allocations. ", 30)
	path := writeTempFile(t, text)

	state := orch.Accept("notes.txt", "t1")
	orch.Process(context.Background(), state.JobID, path, "notes.txt", "t1", nil)

	final, ok := jobMgr.Get(state.JobID)
	require.True(t, ok, "job disappeared")
	require.Equal(t, ragtypes.JobStatusCompleted, final.Status, "job error: %s", final.Error)
	assert.Equal(t, ragtypes.JobStageCompleted, final.Stage)
	assert.NotZero(t, final.TotalChunks)
	assert.Equal(t, final.TotalChunks, final.ProcessedChunks)
	require.NotEmpty(t, final.DocumentID)

	header, ok, err := store.GetHeader(context.Background(), "t1", final.DocumentID)
	require.NoError(t, err)
	require.True(t, ok, "expected header to be stored")
	assert.Equal(t, final.TotalChunks, header.ChunkCount, "header chunk_count matches job total_chunks")
}

func waitTerminal(t *testing.T, jobMgr *jobs.Manager, jobID string) ragtypes.JobState {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if s, ok := jobMgr.Get(jobID); ok && s.Terminal() {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	s, _ := jobMgr.Get(jobID)
	t.Fatalf("job %s never reached a terminal state: %+v", jobID, s)
	return ragtypes.JobState{}
}

func TestUploadSpawnsOneJobPerFileAndThreadsMetadata(t *testing.T) {
	orch, store, jobMgr := newTestOrchestrator(t)
	dir := t.TempDir()
	files := make([]UploadFile, 0, 2)
	for _, name := range []string{"alpha.txt", "beta.md"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("shared corpus content about "+name), 0o644))
		files = append(files, UploadFile{Path: path, Filename: name, Size: 40})
	}

	states, err := orch.Upload(context.Background(), files, "t1", map[string]any{"project": "apollo"})
	require.NoError(t, err)
	require.Len(t, states, 2, "one job per file")
	for _, s := range states {
		assert.Equal(t, ragtypes.JobStatusQueued, s.Status, "initial snapshot")
	}

	for _, s := range states {
		final := waitTerminal(t, jobMgr, s.JobID)
		require.Equal(t, ragtypes.JobStatusCompleted, final.Status, "job for %s: %s", final.Filename, final.Error)
		ck, err := store.GetChunkByIndex(context.Background(), "t1", final.DocumentID, 0)
		require.NoError(t, err, "chunk lookup for %s", final.DocumentID)
		assert.Equal(t, "apollo", ck.Metadata.Extra["project"], "user metadata on chunk")
	}
}

func TestUploadRejectsInvalidBatches(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t)
	cases := []struct {
		name  string
		files []UploadFile
	}{
		{"empty", nil},
		{"bad extension", []UploadFile{{Path: "x", Filename: "notes.exe", Size: 1}}},
		{"oversized", []UploadFile{{Path: "x", Filename: "big.pdf", Size: 51 << 20}}},
		{"too many files", func() []UploadFile {
			fs := make([]UploadFile, 11)
			for i := range fs {
				fs[i] = UploadFile{Path: "x", Filename: "a.txt", Size: 1}
			}
			return fs
		}()},
	}
	for _, tc := range cases {
		_, err := orch.Upload(context.Background(), tc.files, "t1", nil)
		assert.Error(t, err, tc.name)
	}
}

func TestProcessFailsOnUnsupportedExtension(t *testing.T) {
	orch, _, jobMgr := newTestOrchestrator(t)
	path := writeTempFile(t, "irrelevant")
	renamed := strings.TrimSuffix(path, ".txt") + ".xyz"
	require.NoError(t, os.Rename(path, renamed))

	state := orch.Accept("notes.xyz", "t1")
	orch.Process(context.Background(), state.JobID, renamed, "notes.xyz", "t1", nil)

	final, ok := jobMgr.Get(state.JobID)
	require.True(t, ok, "job disappeared")
	assert.Equal(t, ragtypes.JobStatusFailed, final.Status)
	assert.NotEmpty(t, final.Error)
}
