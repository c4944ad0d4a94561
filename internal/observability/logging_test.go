package observability

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"debug":   zerolog.DebugLevel,
		"WARNING": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrimarySinkFallsBackToStdout(t *testing.T) {
	if w := primarySink(""); w != os.Stdout {
		t.Fatal("empty path should select stdout")
	}
	// An unopenable path falls back to stdout instead of failing startup.
	if w := primarySink(t.TempDir() + "/no/such/dir/app.log"); w != os.Stdout {
		t.Fatal("unopenable path should fall back to stdout")
	}
}
