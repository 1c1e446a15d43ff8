package config

import (
	"fmt"
	"os"
	"strings"

	"alsdoctor/internal/diagnosis"
)

const envLogLevel = "ALSDOCTOR_LOG_LEVEL"

func defaultDiagnosis() Diagnosis {
	opts := diagnosis.DefaultOptions()
	return Diagnosis{
		ClutterRatio:      opts.ClutterRatio,
		MinClutterDevices: opts.MinClutterDevices,
		MaxChainLength:    opts.MaxChainLength,
		PenaltyCritical:   opts.Penalties.Critical,
		PenaltyWarning:    opts.Penalties.Warning,
		PenaltySuggestion: opts.Penalties.Suggestion,
	}
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = ExpandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = ExpandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	if c.Scan.Concurrency <= 0 {
		c.Scan.Concurrency = defaultConcurrency()
	}
	seen := make(map[string]struct{}, len(c.Scan.Extensions))
	exts := make([]string, 0, len(c.Scan.Extensions))
	for _, ext := range c.Scan.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Scan.Extensions = exts
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv(envLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
