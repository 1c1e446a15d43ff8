package liveset

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// TrackKind is the closed set of track element kinds.
type TrackKind int

const (
	KindUnknown TrackKind = iota
	KindMIDI
	KindAudio
	KindGroup
	KindReturn
	KindMaster
)

var trackKindNames = map[TrackKind]string{
	KindUnknown: "unknown",
	KindMIDI:    "midi",
	KindAudio:   "audio",
	KindGroup:   "group",
	KindReturn:  "return",
	KindMaster:  "master",
}

func (k TrackKind) String() string {
	if name, ok := trackKindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k TrackKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *TrackKind) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range trackKindNames {
		if name == value {
			*k = kind
			return nil
		}
	}
	*k = KindUnknown
	return nil
}

// IsChannel reports whether the kind is a regular channel (midi, audio, group).
func (k TrackKind) IsChannel() bool {
	return k == KindMIDI || k == KindAudio || k == KindGroup
}

// Decibels is a gain in dB. Negative infinity stands for silence and is
// encoded as JSON null.
type Decibels float64

// IsSilent reports whether the value is negative infinity.
func (d Decibels) IsSilent() bool { return math.IsInf(float64(d), -1) }

func (d Decibels) String() string {
	if d.IsSilent() {
		return "-inf dB"
	}
	return fmt.Sprintf("%.1f dB", float64(d))
}

func (d Decibels) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(d), 0) || math.IsNaN(float64(d)) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *Decibels) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Decibels(math.Inf(-1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = Decibels(v)
	return nil
}

// EQBand is one band of an equalizer device.
type EQBand struct {
	Index   int     `json:"index"`
	Enabled bool    `json:"enabled"`
	Freq    float64 `json:"freq"`
	Gain    float64 `json:"gain"`
	Q       float64 `json:"q"`
}

// Device is one processing unit in a chain.
type Device struct {
	Tag          string             `json:"tag"`
	Category     Category           `json:"category"`
	Name         string             `json:"name"`
	Enabled      bool               `json:"enabled"`
	PluginName   string             `json:"plugin_name,omitempty"`
	PluginFormat string             `json:"plugin_format,omitempty"`
	Params       map[string]float64 `json:"params,omitempty"`
	Bands        []EQBand           `json:"bands,omitempty"`
}

// IsPlugin reports whether the device hosts a third-party plugin.
func (d Device) IsPlugin() bool { return d.PluginName != "" || isPluginTag(d.Tag) }

// Param returns an extracted parameter. Absence means not observed, not zero.
func (d Device) Param(name string) (float64, bool) {
	v, ok := d.Params[name]
	return v, ok
}

// Mixer holds the channel strip state of a track.
type Mixer struct {
	Volume   float64  `json:"volume"`
	VolumeDB Decibels `json:"volume_db"`
	Pan      float64  `json:"pan"`
	Muted    bool     `json:"muted"`
	Soloed   bool     `json:"soloed"`
}

// Track is one channel strip with its ordered device chain.
type Track struct {
	Name    string    `json:"name"`
	Kind    TrackKind `json:"kind"`
	Tag     string    `json:"tag"`
	Ordinal int       `json:"ordinal"`
	Mixer   Mixer     `json:"mixer"`
	Devices []Device  `json:"devices"`
}

// DeviceCount is the length of the device chain.
func (t Track) DeviceCount() int { return len(t.Devices) }

// DisabledCount counts devices switched off in the chain.
func (t Track) DisabledCount() int {
	n := 0
	for _, d := range t.Devices {
		if !d.Enabled {
			n++
		}
	}
	return n
}

// ProjectAnalysis is the typed model of one Live Set. Aggregates are computed
// from Tracks on demand.
type ProjectAnalysis struct {
	Tempo   float64 `json:"tempo"`
	Version string  `json:"version"`
	Creator string  `json:"creator,omitempty"`
	Tracks  []Track `json:"tracks"`
}

// DeviceCount totals devices across all tracks.
func (p *ProjectAnalysis) DeviceCount() int {
	n := 0
	for _, t := range p.Tracks {
		n += t.DeviceCount()
	}
	return n
}

// DisabledCount totals disabled devices across all tracks.
func (p *ProjectAnalysis) DisabledCount() int {
	n := 0
	for _, t := range p.Tracks {
		n += t.DisabledCount()
	}
	return n
}

// PluginNames returns the distinct plugin names in sorted order.
func (p *ProjectAnalysis) PluginNames() []string {
	seen := map[string]struct{}{}
	var names []string
	for _, t := range p.Tracks {
		for _, d := range t.Devices {
			if d.PluginName == "" {
				continue
			}
			if _, ok := seen[d.PluginName]; ok {
				continue
			}
			seen[d.PluginName] = struct{}{}
			names = append(names, d.PluginName)
		}
	}
	slices.Sort(names)
	return names
}

// CategoryCounts counts devices per category.
func (p *ProjectAnalysis) CategoryCounts() map[Category]int {
	counts := map[Category]int{}
	for _, t := range p.Tracks {
		for _, d := range t.Devices {
			counts[d.Category]++
		}
	}
	return counts
}

// Master returns the master track, or nil.
func (p *ProjectAnalysis) Master() *Track {
	for i := range p.Tracks {
		if p.Tracks[i].Kind == KindMaster {
			return &p.Tracks[i]
		}
	}
	return nil
}

// Summary is a flat view of the aggregates, handy for JSON output and storage.
type Summary struct {
	Tracks         int              `json:"tracks"`
	Devices        int              `json:"devices"`
	Disabled       int              `json:"disabled_devices"`
	Plugins        []string         `json:"plugins"`
	CategoryCounts map[Category]int `json:"category_counts"`
}

// Summarize computes the aggregate view.
func (p *ProjectAnalysis) Summarize() Summary {
	return Summary{
		Tracks:         len(p.Tracks),
		Devices:        p.DeviceCount(),
		Disabled:       p.DisabledCount(),
		Plugins:        p.PluginNames(),
		CategoryCounts: p.CategoryCounts(),
	}
}
