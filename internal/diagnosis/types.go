package diagnosis

import (
	"fmt"
	"strings"
)

// Severity ranks an issue. Higher values are more severe.
type Severity int

const (
	SeveritySuggestion Severity = iota + 1
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	case SeveritySuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "critical":
		*s = SeverityCritical
	case "warning":
		*s = SeverityWarning
	case "suggestion":
		*s = SeveritySuggestion
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Rule categories.
const (
	CategoryClutter     = "device_clutter"
	CategoryChainOrder  = "chain_order"
	CategoryRedundant   = "redundant_device"
	CategoryChainLength = "chain_length"
	CategoryIdleEQ      = "idle_eq"
	CategorySolo        = "solo_active"
	CategoryMasterMuted = "master_muted"
	CategoryAllMuted    = "all_muted"
	CategoryMasterHot   = "master_hot"
)

// Issue is one finding.
type Issue struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Fix         string   `json:"fix,omitempty"`
	Track       string   `json:"track,omitempty"`
}

// Diagnosis is the result of running every rule.
type Diagnosis struct {
	Issues      []Issue `json:"issues"`
	HealthScore int     `json:"health_score"`
	Grade       string  `json:"grade"`
}

// Count returns the number of issues at the given severity.
func (d Diagnosis) Count(sev Severity) int {
	n := 0
	for _, issue := range d.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// Penalties is the score deduction per issue severity.
type Penalties struct {
	Critical   int `json:"critical"`
	Warning    int `json:"warning"`
	Suggestion int `json:"suggestion"`
}

func (p Penalties) For(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return p.Critical
	case SeverityWarning:
		return p.Warning
	case SeveritySuggestion:
		return p.Suggestion
	default:
		return 0
	}
}

// Options tunes rule thresholds and penalties.
type Options struct {
	// ClutterRatio is the disabled/total device ratio above which clutter fires.
	ClutterRatio float64
	// MinClutterDevices is the smallest chain the per-track clutter rule considers.
	MinClutterDevices int
	// MaxChainLength is the longest chain accepted without a suggestion.
	MaxChainLength int
	Penalties      Penalties
}

// DefaultOptions returns the documented thresholds. The master_hot rule has
// no option; it fires when the raw master fader exceeds 1.0.
func DefaultOptions() Options {
	return Options{
		ClutterRatio:      0.3,
		MinClutterDevices: 3,
		MaxChainLength:    16,
		Penalties: Penalties{
			Critical:   20,
			Warning:    8,
			Suggestion: 3,
		},
	}
}
