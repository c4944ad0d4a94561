// Package ragcore wires the ingestion and retrieval components into a
// ready-to-use Runtime. The module carries no HTTP or CLI surface of its
// own, so this composition root is where config.Load,
// observability.InitLogger/InitOTel, and the OTel-backed metrics facade
// come together for embedding hosts.
package ragcore

import (
	"context"
	"fmt"

	"ragcore/internal/config"
	"ragcore/internal/embedding"
	"ragcore/internal/images"
	"ragcore/internal/ingest"
	"ragcore/internal/jobs"
	"ragcore/internal/loaders"
	"ragcore/internal/metrics"
	"ragcore/internal/observability"
	"ragcore/internal/search"
	"ragcore/internal/vectorstore"
)

// Runtime is the fully wired pipeline: the Ingestion Orchestrator and
// Search Service share one vector store connection and one Job Manager.
type Runtime struct {
	Ingest *ingest.Orchestrator
	Search *search.Service
	Jobs   *jobs.Manager

	store    vectorstore.Store
	shutdown func(context.Context) error
}

// Start loads configuration, initializes logging and, when OTLP_ENDPOINT
// is set, tracing/metrics, connects the vector store, ensures its tables
// exist, and returns a Runtime ready to accept ingestion jobs and serve
// search queries. Callers must call Close when done.
func Start(ctx context.Context) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("ragcore: %w", err)
	}

	observability.InitLogger(cfg.Obs)

	shutdown := func(context.Context) error { return nil }
	var m metrics.Metrics = metrics.Noop{}
	if cfg.Obs.OTLP != "" {
		sd, err := observability.InitOTel(ctx, cfg.Obs)
		if err != nil {
			return nil, fmt.Errorf("ragcore: init otel: %w", err)
		}
		shutdown = sd
		m = metrics.NewOtelMetrics(cfg.Obs.ServiceName)
	}

	store := vectorstore.New(cfg.Store)
	if err := store.Connect(ctx); err != nil {
		return nil, fmt.Errorf("ragcore: %w", err)
	}
	if err := store.EnsureChunkTable(ctx); err != nil {
		return nil, fmt.Errorf("ragcore: %w", err)
	}
	if err := store.EnsureHeaderTable(ctx); err != nil {
		return nil, fmt.Errorf("ragcore: %w", err)
	}
	if err := store.EnsureImageTable(ctx); err != nil {
		return nil, fmt.Errorf("ragcore: %w", err)
	}

	embedder := embedding.NewClientEmbedder(cfg.Embedding, cfg.Store.Dimension, cfg.RedisAddr)

	var extractor loaders.ImageExtractor
	if cfg.Ingest.EnableImageExtraction {
		extractor = images.New(cfg.Models, cfg.Models.VisionModel, cfg.Ingest)
	}
	dispatcher := loaders.NewDispatcher(extractor)

	jobMgr := jobs.New()
	orchestrator := ingest.New(store, embedder, dispatcher, jobMgr, cfg.Models, cfg.Chunker, cfg.Ingest, m)
	searchSvc := search.New(store, embedder, m)

	return &Runtime{
		Ingest:   orchestrator,
		Search:   searchSvc,
		Jobs:     jobMgr,
		store:    store,
		shutdown: shutdown,
	}, nil
}

// Close releases the store connection and flushes/stops any OTel providers
// Start initialized.
func (r *Runtime) Close(ctx context.Context) error {
	err := r.store.Close()
	if serr := r.shutdown(ctx); serr != nil && err == nil {
		err = serr
	}
	return err
}
