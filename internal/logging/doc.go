// Package logging assembles structured slog loggers for alsdoctor.
//
// It owns the console and JSON handlers, level and output plumbing, and
// context helpers that tag log lines with the document being processed and
// the scan run it belongs to. NewNop supplies a silent logger for tests and
// library callers that do not care about output.
package logging
