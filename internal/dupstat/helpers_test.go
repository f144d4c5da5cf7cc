package dupstat

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	return path
}

// sized returns content of exactly n bytes built from seed.
func sized(seed string, n int) string {
	return strings.Repeat(seed, n/len(seed)+1)[:n]
}

func paths(records []FileRecord) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = rec.Path
	}

	return out
}

func canReadEverything() bool {
	return os.Geteuid() == 0
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
