package observability

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ragcore/internal/config"
)

// InitLogger configures the global zerolog logger for the process: RFC3339
// nano timestamps, the configured level (default info), and output to
// cfg.LogPath in append mode when set. When an OTLP endpoint is configured,
// every line is additionally mirrored through an OTelWriter so logs land in
// the same backend as traces and metrics. ragcore.Start calls this once
// before wiring any component.
func InitLogger(cfg config.ObsConfig) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	sink := primarySink(cfg.LogPath)
	if cfg.OTLP != "" {
		sink = io.MultiWriter(sink, NewOTelWriter(cfg.ServiceName))
	}
	log.Logger = log.Output(sink).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))

	// Redirect the standard library logger so ALL logs are captured.
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

// primarySink is the log file when one is configured and openable, stdout
// otherwise. A file sink replaces stdout entirely rather than teeing to it,
// so interactive hosts keep stdout to themselves; an open failure falls
// back to stdout with the error on stderr rather than aborting startup.
func primarySink(logPath string) io.Writer {
	if logPath == "" {
		return os.Stdout
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to open log file %q: %v\n", logPath, err)
		return os.Stdout
	}
	return f
}

func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}
