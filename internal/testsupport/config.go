package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"alsdoctor/internal/config"
)

// NewConfig returns a valid config whose data and log directories live in a
// fresh temp dir. Each mutate func runs before validation.
func NewConfig(t testing.TB, mutate ...func(*config.Config)) *config.Config {
	t.Helper()

	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Scan.Concurrency = 2
	for _, fn := range mutate {
		fn(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WriteConfig stores cfg as TOML at path so it can be loaded back with
// config.Load.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := cfg.WriteTOML(f); err != nil {
		t.Fatalf("encode config: %v", err)
	}
}
