package liveset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"alsdoctor/internal/alsfile"
)

var trackKinds = map[string]TrackKind{
	"MidiTrack":   KindMIDI,
	"AudioTrack":  KindAudio,
	"GroupTrack":  KindGroup,
	"ReturnTrack": KindReturn,
	"MasterTrack": KindMaster,
	"MainTrack":   KindMaster,
}

// masterTags are looked up beside the track container. Live 12 renamed the
// master track to MainTrack.
var masterTags = []string{"MasterTrack", "MainTrack"}

// deviceChainPaths lists candidate device containers, newest layout first.
// The first one that exists and has children is used.
var deviceChainPaths = [][]string{
	{"DeviceChain", "DeviceChain", "Devices"},
	{"DeviceChain", "Devices"},
	{"MasterChain", "DeviceChain", "Devices"},
	{"Devices"},
}

// namePaths lists where a track's display name can live.
var namePaths = [][]string{
	{"Name", "EffectiveName"},
	{"Name", "UserName"},
}

// pluginNamePaths lists where a plugin wrapper records the loaded plugin.
var pluginNamePaths = []struct {
	path   []string
	format string
}{
	{[]string{"PluginDesc", "VstPluginInfo", "PlugName"}, "vst"},
	{[]string{"PluginDesc", "Vst3PluginInfo", "Name"}, "vst3"},
	{[]string{"PluginDesc", "AuPluginInfo", "Name"}, "au"},
}

// Build produces the typed model for a decoded document.
func Build(doc *alsfile.Document) (*ProjectAnalysis, error) {
	if doc == nil || doc.Root == nil {
		return nil, noTracks("empty document")
	}
	return BuildNode(doc.Root)
}

// BuildNode produces the typed model from a root element, which may be the
// outer Ableton element or the LiveSet itself.
func BuildNode(root *alsfile.RawNode) (*ProjectAnalysis, error) {
	liveSet := root
	if root == nil {
		return nil, noTracks("empty document")
	}
	if root.Tag != "LiveSet" {
		liveSet = root.Child("LiveSet")
	}
	if liveSet == nil {
		return nil, noTracks("no LiveSet element")
	}
	container := liveSet.Child("Tracks")
	if container == nil {
		return nil, noTracks("LiveSet has no Tracks element")
	}

	analysis := &ProjectAnalysis{
		Version: root.AttrValue("MinorVersion"),
		Creator: root.AttrValue("Creator"),
	}

	for _, child := range container.Children {
		analysis.Tracks = append(analysis.Tracks, buildTrack(child, len(analysis.Tracks)))
	}
	for _, tag := range masterTags {
		if master := liveSet.Child(tag); master != nil {
			analysis.Tracks = append(analysis.Tracks, buildTrack(master, len(analysis.Tracks)))
			analysis.Tempo = tempoOf(master)
			break
		}
	}
	return analysis, nil
}

func buildTrack(node *alsfile.RawNode, ordinal int) Track {
	kind := trackKinds[node.Tag]
	t := Track{
		Name:    trackName(node, kind, ordinal),
		Kind:    kind,
		Tag:     node.Tag,
		Ordinal: ordinal,
		Mixer:   buildMixer(node),
	}
	if chain := findDeviceChain(node); chain != nil {
		t.Devices = make([]Device, 0, len(chain.Children))
		for _, dev := range chain.Children {
			t.Devices = append(t.Devices, buildDevice(dev))
		}
	}
	return t
}

func trackName(node *alsfile.RawNode, kind TrackKind, ordinal int) string {
	for _, path := range namePaths {
		if v, ok := node.ValueAt(path...); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	if kind == KindMaster {
		return "Master"
	}
	return fmt.Sprintf("%s %d", strings.TrimSuffix(node.Tag, "Track"), ordinal+1)
}

func findDeviceChain(track *alsfile.RawNode) *alsfile.RawNode {
	for _, path := range deviceChainPaths {
		if chain := track.Path(path...); chain != nil && len(chain.Children) > 0 {
			return chain
		}
	}
	return nil
}

func buildDevice(node *alsfile.RawNode) Device {
	pluginName, pluginFormat := pluginIdentity(node)
	category, params := classify(node.Tag, pluginName)

	d := Device{
		Tag:          node.Tag,
		Category:     category,
		Enabled:      true,
		PluginName:   pluginName,
		PluginFormat: pluginFormat,
	}
	if v, ok := node.ValueAt("On", "Manual"); ok {
		d.Enabled = v != "false"
	}

	userName, _ := node.ValueAt("UserName")
	userName = strings.TrimSpace(userName)
	switch {
	case pluginName != "":
		d.Name = pluginName
	case userName != "":
		d.Name = userName
	default:
		d.Name = node.Tag
	}

	for _, name := range params {
		child := node.Child(name)
		if child == nil {
			continue
		}
		if v, ok := paramValue(child); ok {
			if d.Params == nil {
				d.Params = map[string]float64{}
			}
			d.Params[name] = v
		}
	}

	if category == CategoryEqualizer {
		d.Bands = extractBands(node)
	}
	return d
}

func pluginIdentity(node *alsfile.RawNode) (string, string) {
	for _, candidate := range pluginNamePaths {
		if v, ok := node.ValueAt(candidate.path...); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), candidate.format
		}
	}
	return "", ""
}

const bandPrefix = "Bands."

func extractBands(node *alsfile.RawNode) []EQBand {
	var bands []EQBand
	for _, child := range node.Children {
		if !strings.HasPrefix(child.Tag, bandPrefix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(child.Tag, bandPrefix))
		if err != nil {
			continue
		}
		param := child.Child("ParameterA")
		if param == nil {
			param = child
		}
		band := EQBand{Index: index, Enabled: true}
		if v, ok := param.ValueAt("IsOn", "Manual"); ok {
			band.Enabled = v != "false"
		}
		band.Freq, _ = floatAt(param, "Freq", "Manual")
		band.Gain, _ = floatAt(param, "Gain", "Manual")
		band.Q, _ = floatAt(param, "Q", "Manual")
		bands = append(bands, band)
	}
	sort.SliceStable(bands, func(i, j int) bool { return bands[i].Index < bands[j].Index })
	return bands
}

// paramValue reads <P><Manual Value/></P> or <P Value/>.
func paramValue(n *alsfile.RawNode) (float64, bool) {
	if v, ok := n.ValueAt("Manual"); ok {
		return parseNumber(v)
	}
	if v, ok := n.Attr("Value"); ok {
		return parseNumber(v)
	}
	return 0, false
}

func floatAt(n *alsfile.RawNode, path ...string) (float64, bool) {
	v, ok := n.ValueAt(path...)
	if !ok {
		return 0, false
	}
	return parseNumber(v)
}

func parseNumber(raw string) (float64, bool) {
	switch strings.TrimSpace(raw) {
	case "true":
		return 1, true
	case "false":
		return 0, true
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
