package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/levelshelf/internal/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.WarnLevel,
		"debug": zerolog.DebugLevel,
		"INFO":  zerolog.InfoLevel,
		"off":   zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := logging.ParseLevel("loud"); err == nil {
		t.Error("ParseLevel(loud) should fail")
	}
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New("warn", &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("output = %q", out)
	}
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levelshelf.log")
	log, closer, err := logging.File("debug", path)
	if err != nil {
		t.Fatal(err)
	}
	log.Debug().Str("id", "L1").Msg("hello")
	_ = closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"id":"L1"`) {
		t.Errorf("log file = %q", data)
	}
}
