package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"alsdoctor/internal/diagnosis"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrExists is returned by WriteSample when the target is already present.
var ErrExists = errors.New("config file already exists")

// Paths holds where history and logs live.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Scan tunes folder scans.
type Scan struct {
	Concurrency int      `toml:"concurrency"`
	SkipBackups bool     `toml:"skip_backups"`
	Extensions  []string `toml:"extensions"`
}

// Diagnosis holds rule thresholds and score penalties.
type Diagnosis struct {
	ClutterRatio      float64 `toml:"clutter_ratio"`
	MinClutterDevices int     `toml:"min_clutter_devices"`
	MaxChainLength    int     `toml:"max_chain_length"`
	PenaltyCritical   int     `toml:"penalty_critical"`
	PenaltyWarning    int     `toml:"penalty_warning"`
	PenaltySuggestion int     `toml:"penalty_suggestion"`
}

// Logging selects log format, level and how long daily files are kept.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config is the parsed alsdoctor.toml.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Scan      Scan      `toml:"scan"`
	Diagnosis Diagnosis `toml:"diagnosis"`
	Logging   Logging   `toml:"logging"`
}

// Source describes which file a Config came from.
type Source struct {
	Path   string
	Exists bool
}

// DefaultConfigPath returns the per-user config location.
func DefaultConfigPath() (string, error) {
	return ExpandPath(defaultConfigPath)
}

// Load reads the config at path, or the first of the per-user and
// working-directory files when path is empty. A missing file yields
// defaults. Paths are expanded and the result validated.
func Load(path string) (*Config, Source, error) {
	src, err := locate(path)
	if err != nil {
		return nil, Source{}, err
	}

	cfg := Default()
	if src.Exists {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, src, fmt.Errorf("read config: %w", err)
		}
		if err := decode(data, &cfg); err != nil {
			return nil, src, fmt.Errorf("parse config %s: %w", src.Path, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, src, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, src, err
	}
	return &cfg, src, nil
}

func decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(cfg)

	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		keys := make([]string, 0, len(strict.Errors))
		for _, e := range strict.Errors {
			keys = append(keys, strings.Join(e.Key(), "."))
		}
		return fmt.Errorf("unknown keys %s", strings.Join(keys, ", "))
	}
	var decErr *toml.DecodeError
	if errors.As(err, &decErr) {
		row, col := decErr.Position()
		return fmt.Errorf("line %d column %d: %w", row, col, err)
	}
	return err
}

// locate resolves the config file. An explicit path always wins even when
// absent so that init and validate report the location the user asked for.
func locate(explicit string) (Source, error) {
	if explicit != "" {
		expanded, err := ExpandPath(explicit)
		if err != nil {
			return Source{}, err
		}
		exists, err := isFile(expanded)
		if err != nil {
			return Source{}, err
		}
		return Source{Path: expanded, Exists: exists}, nil
	}

	userPath, err := DefaultConfigPath()
	if err != nil {
		return Source{}, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return Source{}, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		exists, err := isFile(candidate)
		if err != nil {
			return Source{}, err
		}
		if exists {
			return Source{Path: candidate, Exists: true}, nil
		}
	}
	return Source{Path: userPath}, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	default:
		return !info.IsDir(), nil
	}
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath is the SQLite history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, historyFileName)
}

// HistoryLockPath is the lock file serialising history writers.
func (c *Config) HistoryLockPath() string {
	return filepath.Join(c.Paths.DataDir, historyLockName)
}

// DiagnosisOptions maps the [diagnosis] section onto rule options.
func (c *Config) DiagnosisOptions() diagnosis.Options {
	d := c.Diagnosis
	return diagnosis.Options{
		ClutterRatio:      d.ClutterRatio,
		MinClutterDevices: d.MinClutterDevices,
		MaxChainLength:    d.MaxChainLength,
		Penalties: diagnosis.Penalties{
			Critical:   d.PenaltyCritical,
			Warning:    d.PenaltyWarning,
			Suggestion: d.PenaltySuggestion,
		},
	}
}

// WriteTOML encodes the effective configuration.
func (c *Config) WriteTOML(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	return enc.Encode(c)
}

// ExpandPath resolves a leading ~ and returns an absolute, cleaned path.
// An empty value stays empty.
func ExpandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// WriteSample writes the annotated sample config to path, creating parent
// directories. Without overwrite an existing file yields ErrExists.
func WriteSample(path string, overwrite bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("%s: %w", path, ErrExists)
	}
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := io.WriteString(f, sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return f.Close()
}
