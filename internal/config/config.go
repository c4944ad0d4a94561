// Package config loads the environment-variable surface of the ingestion
// and retrieval pipeline. It intentionally models nothing beyond that: no
// YAML, no flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// StoreConfig is the vector-store endpoint and table-naming configuration.
type StoreConfig struct {
	Host     string
	Port     int
	User     string
	Password string

	ChunkTable  string
	HeaderTable string
	ImageTable  string

	Dimension int

	ConnectTimeout    time.Duration
	ConnectRetries    int
	ConnectRetryDelay time.Duration
}

// ChunkerConfig controls the splitter. Kind is an optional override of the
// strategy the chunker otherwise picks per document type (see
// chunker.SelectKind); it must name one of textsplitters' Kind values
// ("fixed", "sentences", "paragraphs", "markdown", "code", "semantic",
// "texttiling", "rolling_sentences", "hybrid", "layout", "recursive") and is
// ignored if it names none of them.
type ChunkerConfig struct {
	ChunkSize    int
	ChunkOverlap int
	Kind         string
}

// EmbeddingConfig controls the batched embedding client.
type EmbeddingConfig struct {
	BaseURL   string
	APIKey    string
	APIHeader string
	Model     string
	Path      string
	BatchSize int
	Timeout   time.Duration
}

// ModelsConfig names the inference-gateway model identifiers and the
// optional tenant scope passed through to it, plus the provider credentials
// needed to actually reach the providers those identifiers select between.
type ModelsConfig struct {
	MetadataModel string
	VisionModel   string
	ResourceGroup string

	OpenAIAPIKey     string
	OpenAIBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	GoogleAPIKey     string
}

// IngestConfig controls document-ingestion behaviour.
type IngestConfig struct {
	DefaultTenantID       string
	SummaryInputMaxPages  int
	SummaryInputMaxChars  int
	EnableImageExtraction bool
	MaxImagePages         int
	MaxFileSizeBytes      int64

	ImageStorageConcurrency int
	ImageStorageRetries     int
	ImageStorageRetryDelay  time.Duration
}

// ObsConfig configures logging/tracing per the ambient stack.
type ObsConfig struct {
	LogLevel       string
	LogPath        string
	OTLP           string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// Config aggregates every recognised environment option.
type Config struct {
	Store     StoreConfig
	Chunker   ChunkerConfig
	Embedding EmbeddingConfig
	Models    ModelsConfig
	Ingest    IngestConfig
	Obs       ObsConfig
	RedisAddr string
}

// Load reads a .env file if present (ignored if absent) and then populates
// Config from the environment, applying defaults for anything unset.
func Load() (Config, error) {
	_ = godotenv.Overload()

	cfg := Config{
		Store: StoreConfig{
			Host:              getenv("DB_HOST", "localhost"),
			Port:              getenvInt("DB_PORT", 9000),
			User:              getenv("DB_USER", "default"),
			Password:          getenv("DB_PASSWORD", ""),
			ChunkTable:        getenv("CHUNK_TABLE", "chunks"),
			HeaderTable:       getenv("HEADER_TABLE", "headers"),
			ImageTable:        getenv("IMAGE_TABLE", "images"),
			Dimension:         getenvInt("EMBEDDING_DIMENSION", 1536),
			ConnectTimeout:    getenvMillis("CONNECT_TIMEOUT_MS", 30*time.Second),
			ConnectRetries:    getenvInt("CONNECT_RETRIES", 6),
			ConnectRetryDelay: getenvMillis("CONNECT_RETRY_DELAY_MS", 1*time.Second),
		},
		Chunker: ChunkerConfig{
			ChunkSize:    getenvInt("CHUNK_SIZE", 2000),
			ChunkOverlap: getenvInt("CHUNK_OVERLAP", 200),
			Kind:         getenv("CHUNK_STRATEGY", ""),
		},
		Embedding: EmbeddingConfig{
			BaseURL:   getenv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			APIKey:    getenv("EMBEDDING_API_KEY", ""),
			APIHeader: getenv("EMBEDDING_API_HEADER", "Authorization"),
			Model:     getenv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Path:      getenv("EMBEDDING_PATH", "/v1/embeddings"),
			BatchSize: getenvInt("EMBEDDING_BATCH_SIZE", 16),
			Timeout:   30 * time.Second,
		},
		Models: ModelsConfig{
			MetadataModel:    getenv("METADATA_MODEL", "gpt-4o-mini"),
			VisionModel:      getenv("VISION_MODEL", "gpt-4o-mini"),
			ResourceGroup:    getenv("RESOURCE_GROUP", ""),
			OpenAIAPIKey:     getenv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:    getenv("OPENAI_BASE_URL", ""),
			AnthropicAPIKey:  getenv("ANTHROPIC_API_KEY", ""),
			AnthropicBaseURL: getenv("ANTHROPIC_BASE_URL", ""),
			GoogleAPIKey:     getenv("GOOGLE_API_KEY", ""),
		},
		Ingest: IngestConfig{
			DefaultTenantID:         getenv("DEFAULT_TENANT_ID", "default"),
			SummaryInputMaxPages:    getenvInt("SUMMARY_INPUT_MAX_PAGES", 3),
			SummaryInputMaxChars:    getenvInt("SUMMARY_INPUT_MAX_CHARS", 4000),
			EnableImageExtraction:   getenvBool("ENABLE_IMAGE_EXTRACTION", true),
			MaxImagePages:           getenvInt("MAX_IMAGE_PAGES", 0),
			MaxFileSizeBytes:        int64(getenvInt("MAX_FILE_SIZE_BYTES", 50<<20)),
			ImageStorageConcurrency: getenvInt("IMAGE_STORAGE_CONCURRENCY", 5),
			ImageStorageRetries:     getenvInt("IMAGE_STORAGE_RETRIES", 3),
			ImageStorageRetryDelay:  getenvMillis("IMAGE_STORAGE_RETRY_DELAY_MS", 1*time.Second),
		},
		Obs: ObsConfig{
			LogLevel:       getenv("LOG_LEVEL", "info"),
			LogPath:        getenv("LOG_PATH", ""),
			OTLP:           getenv("OTLP_ENDPOINT", ""),
			ServiceName:    getenv("SERVICE_NAME", "ragcore"),
			ServiceVersion: getenv("SERVICE_VERSION", "dev"),
			Environment:    getenv("ENVIRONMENT", "development"),
		},
		RedisAddr: getenv("REDIS_ADDR", ""),
	}

	if cfg.Store.Host == "" {
		return cfg, fmt.Errorf("config: DB_HOST is required")
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

func getenvMillis(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return time.Duration(n) * time.Millisecond
}
