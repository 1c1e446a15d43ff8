package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/liveset"
)

// loadAnalysis reads a Live Set from disk and builds its model.
func loadAnalysis(path string) (*alsfile.Document, *liveset.ProjectAnalysis, error) {
	doc, err := alsfile.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	analysis, err := liveset.Build(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, analysis, nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func itoa(v int) string { return strconv.Itoa(v) }

func formatTempo(bpm float64) string {
	if bpm <= 0 {
		return "-"
	}
	return strconv.FormatFloat(bpm, 'f', -1, 64) + " BPM"
}

func formatPan(pan float64) string {
	switch {
	case pan == 0:
		return "C"
	case pan < 0:
		return fmt.Sprintf("%.0fL", -pan*50)
	default:
		return fmt.Sprintf("%.0fR", pan*50)
	}
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
