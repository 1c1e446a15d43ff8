package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"alsdoctor/internal/diagnosis"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// statusStyles holds the bracketed tag and colour for each kind.
var statusStyles = map[statusKind]struct{ tag, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

const fieldWidth = 16

var titleCaser = cases.Title(language.Und)

// renderField prints an indented "Label:  value" line with labels padded
// to a common width.
func renderField(label, value string) string {
	return fmt.Sprintf("  %-*s %s", fieldWidth, label+":", value)
}

// renderStatusLine is renderField with a [TAG] prefix on the value. The
// whole line is coloured when colorize is set.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	value := "[" + style.tag + "]"
	if message != "" {
		value += " " + message
	}
	line := renderField(label, value)
	return paint(line, style.color, colorize)
}

func renderSectionHeader(title string, colorize bool) []string {
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, ansiBlue, colorize),
		paint(strings.Repeat("-", len(heading)), ansiBlue, colorize),
	}
}

func paint(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// gradeKind maps a letter grade onto a status colour.
func gradeKind(grade string) statusKind {
	switch grade {
	case "A", "B":
		return statusOK
	case "C":
		return statusWarn
	default:
		return statusError
	}
}

func severityKind(sev diagnosis.Severity) statusKind {
	switch sev {
	case diagnosis.SeverityCritical:
		return statusError
	case diagnosis.SeverityWarning:
		return statusWarn
	default:
		return statusInfo
	}
}

// humanLabel turns snake_case identifiers such as "device_clutter" into
// "Device Clutter".
func humanLabel(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

func printLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
