package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"alsdoctor/internal/config"
	"alsdoctor/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv points HOME at a temp dir and writes a config for a
// throwaway data directory at the per-user config location.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	home := filepath.Join(base, "home")
	t.Setenv("HOME", home)
	t.Setenv("ALSDOCTOR_LOG_LEVEL", "")

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(home, ".config", "alsdoctor", "config.toml")
	testsupport.WriteConfig(t, configPath, cfg)
	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

// runCLI executes a fresh root command and returns captured stdout and
// stderr. An empty configPath leaves --config unset.
func runCLI(t *testing.T, args []string, configPath string) (stdout, stderr string, err error) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	root := newRootCommand()
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func requireNotContains(t *testing.T, output, substr string) {
	t.Helper()
	if strings.Contains(output, substr) {
		t.Fatalf("expected %q not to contain %q", output, substr)
	}
}
