// Package config loads, normalizes, and validates alsdoctor configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the ALSDOCTOR_LOG_LEVEL environment override. The
// Config type holds every knob the CLI, the batch scanner and the history
// store need, and maps the [diagnosis] section onto rule options.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
