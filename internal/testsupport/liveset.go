package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"

	"alsdoctor/internal/alsfile"
)

// DeviceSpec describes one device in a synthetic Live Set.
type DeviceSpec struct {
	Tag          string
	UserName     string
	PluginName   string
	PluginFormat string // "vst", "vst3" or "au"; only used with PluginName
	Disabled     bool
	Params       map[string]string
	Bands        []BandSpec
}

// BandSpec describes one EQ band.
type BandSpec struct {
	On   bool
	Freq string
	Gain string
	Q    string
}

// TrackSpec describes one track. Kind is the element tag (AudioTrack,
// MidiTrack, GroupTrack, ReturnTrack).
type TrackSpec struct {
	Kind    string
	Name    string
	Volume  string
	Pan     string
	Muted   bool
	Soloed  bool
	Devices []DeviceSpec
}

// SetSpec describes a synthetic Live Set document.
type SetSpec struct {
	Creator string
	Version string
	Tempo   string
	Tracks  []TrackSpec
	Master  *TrackSpec
	// OmitTracks leaves out the Tracks container entirely.
	OmitTracks bool
}

type idSource struct{ next int }

func (s *idSource) take() string {
	s.next++
	return strconv.Itoa(s.next)
}

// BuildSet renders spec into a document using the element shapes Live writes.
// Every owner identifier is unique; each track carries an envelope that
// references its own volume target and one that references the master tempo.
func BuildSet(spec SetSpec) *alsfile.Document {
	ids := &idSource{next: 100}
	tempoTarget := ids.take()

	liveSet := alsfile.NewNode("LiveSet")
	nextPointee := alsfile.NewNode("NextPointeeId")
	liveSet.Append(nextPointee)

	if !spec.OmitTracks {
		tracks := alsfile.NewNode("Tracks")
		for _, ts := range spec.Tracks {
			tracks.Append(buildTrack(ts, ids, tempoTarget, false))
		}
		liveSet.Append(tracks)
	}

	master := spec.Master
	if master == nil {
		master = &TrackSpec{Name: "Master"}
	}
	ms := *master
	ms.Kind = "MasterTrack"
	masterNode := buildTrack(ms, ids, tempoTarget, true)
	tempo := spec.Tempo
	if tempo == "" {
		tempo = "120"
	}
	mixer := masterNode.Path("DeviceChain", "Mixer")
	mixer.Append(alsfile.NewNode("Tempo").Append(
		valueNode("Manual", tempo),
		alsfile.NewNode("AutomationTarget", alsfile.Attr{Name: "Id", Value: tempoTarget}),
	))
	liveSet.Append(masterNode)

	nextPointee.SetAttr("Value", strconv.Itoa(ids.next+1))

	creator := spec.Creator
	if creator == "" {
		creator = "Ableton Live 11.3.4"
	}
	version := spec.Version
	if version == "" {
		version = "11.0_433"
	}
	root := alsfile.NewNode("Ableton",
		alsfile.Attr{Name: "MajorVersion", Value: "5"},
		alsfile.Attr{Name: "MinorVersion", Value: version},
		alsfile.Attr{Name: "Creator", Value: creator},
	).Append(liveSet)
	return &alsfile.Document{Header: alsfile.DefaultHeader, Root: root}
}

func buildTrack(ts TrackSpec, ids *idSource, tempoTarget string, master bool) *alsfile.RawNode {
	kind := ts.Kind
	if kind == "" {
		kind = "AudioTrack"
	}
	track := alsfile.NewNode(kind)
	if !master {
		track.SetAttr("Id", ids.take())
	}
	track.Append(alsfile.NewNode("Name").Append(
		valueNode("EffectiveName", ts.Name),
		valueNode("UserName", ts.Name),
	))

	volume := ts.Volume
	if volume == "" {
		volume = "0.85"
	}
	pan := ts.Pan
	if pan == "" {
		pan = "0"
	}
	volumeTarget := ids.take()
	mixer := alsfile.NewNode("Mixer").Append(
		automatable("Volume", volume, volumeTarget),
		automatable("Pan", pan, ids.take()),
		automatable("Speaker", strconv.FormatBool(!ts.Muted), ids.take()),
		valueNode("SoloSink", strconv.FormatBool(ts.Soloed)),
	)

	devices := alsfile.NewNode("Devices")
	for _, ds := range ts.Devices {
		devices.Append(buildDevice(ds, ids))
	}

	envelopes := alsfile.NewNode("Envelopes").Append(envelope(volumeTarget))
	if !master {
		envelopes.Append(envelope(tempoTarget))
	}
	track.Append(
		alsfile.NewNode("AutomationEnvelopes").Append(envelopes),
		alsfile.NewNode("DeviceChain").Append(
			mixer,
			alsfile.NewNode("DeviceChain").Append(devices),
		),
	)
	return track
}

func buildDevice(ds DeviceSpec, ids *idSource) *alsfile.RawNode {
	tag := ds.Tag
	if tag == "" {
		tag = "Eq8"
	}
	dev := alsfile.NewNode(tag, alsfile.Attr{Name: "Id", Value: ids.take()})
	dev.Append(
		automatable("On", strconv.FormatBool(!ds.Disabled), ids.take()),
		valueNode("UserName", ds.UserName),
	)
	if ds.PluginName != "" {
		var info *alsfile.RawNode
		switch ds.PluginFormat {
		case "au":
			info = alsfile.NewNode("AuPluginInfo").Append(valueNode("Name", ds.PluginName))
		case "vst3":
			info = alsfile.NewNode("Vst3PluginInfo").Append(valueNode("Name", ds.PluginName))
		default:
			info = alsfile.NewNode("VstPluginInfo").Append(valueNode("PlugName", ds.PluginName))
		}
		dev.Append(alsfile.NewNode("PluginDesc").Append(info))
	}

	names := make([]string, 0, len(ds.Params))
	for name := range ds.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dev.Append(automatable(name, ds.Params[name], ids.take()))
	}

	for i, band := range ds.Bands {
		param := alsfile.NewNode("ParameterA").Append(
			automatable("IsOn", strconv.FormatBool(band.On), ids.take()),
			automatable("Freq", orDefault(band.Freq, "1000"), ids.take()),
			automatable("Gain", orDefault(band.Gain, "0"), ids.take()),
			automatable("Q", orDefault(band.Q, "0.71"), ids.take()),
		)
		dev.Append(alsfile.NewNode("Bands." + strconv.Itoa(i)).Append(param))
	}
	return dev
}

func automatable(tag, value, targetID string) *alsfile.RawNode {
	return alsfile.NewNode(tag).Append(
		valueNode("Manual", value),
		alsfile.NewNode("AutomationTarget", alsfile.Attr{Name: "Id", Value: targetID}),
	)
}

func envelope(targetID string) *alsfile.RawNode {
	return alsfile.NewNode("AutomationEnvelope").Append(
		alsfile.NewNode("EnvelopeTarget").Append(valueNode("PointeeId", targetID)),
	)
}

func valueNode(tag, value string) *alsfile.RawNode {
	return alsfile.NewNode(tag, alsfile.Attr{Name: "Value", Value: value})
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// WriteSet encodes spec and writes it to path, creating parent directories.
func WriteSet(t testing.TB, path string, spec SetSpec) {
	t.Helper()

	data, err := alsfile.Encode(BuildSet(spec))
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	WriteFile(t, path, data)
}

// WriteFile stores raw bytes at path, for fixtures that are not Live Sets.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
