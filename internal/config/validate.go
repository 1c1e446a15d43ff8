package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateDiagnosis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Concurrency < 1 || c.Scan.Concurrency > maxScanConcurrency {
		return fmt.Errorf("scan.concurrency must be between 1 and %d", maxScanConcurrency)
	}
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	return nil
}

func (c *Config) validateDiagnosis() error {
	d := c.Diagnosis
	if d.ClutterRatio <= 0 || d.ClutterRatio >= 1 {
		return errors.New("diagnosis.clutter_ratio must be between 0 and 1 (exclusive)")
	}
	if d.MinClutterDevices < 1 {
		return errors.New("diagnosis.min_clutter_devices must be positive")
	}
	if d.MaxChainLength < 1 {
		return errors.New("diagnosis.max_chain_length must be positive")
	}
	penalties := []struct {
		key   string
		value int
	}{
		{"diagnosis.penalty_critical", d.PenaltyCritical},
		{"diagnosis.penalty_warning", d.PenaltyWarning},
		{"diagnosis.penalty_suggestion", d.PenaltySuggestion},
	}
	for _, p := range penalties {
		if p.value < 0 || p.value > 100 {
			return fmt.Errorf("%s must be between 0 and 100", p.key)
		}
	}
	if d.PenaltySuggestion > d.PenaltyWarning || d.PenaltyWarning > d.PenaltyCritical {
		return errors.New("diagnosis penalties must not decrease with severity (suggestion <= warning <= critical)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q (want debug, info, warn or error)", c.Logging.Level)
	}
	return nil
}
