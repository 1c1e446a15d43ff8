package liveset_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/liveset"
	"alsdoctor/internal/testsupport"
)

func TestBuildTracksDevicesAndMixer(t *testing.T) {
	doc := testsupport.BuildSet(testsupport.SetSpec{
		Tempo:   "128",
		Creator: "Ableton Live 11.3.4",
		Version: "11.0_433",
		Tracks: []testsupport.TrackSpec{
			{Kind: "MidiTrack", Name: "Lead", Volume: "1", Pan: "-0.5", Soloed: true, Devices: []testsupport.DeviceSpec{
				{Tag: "Operator"},
				{Tag: "Eq8", UserName: "Tone", Bands: []testsupport.BandSpec{
					{On: true, Freq: "120", Gain: "-3", Q: "0.7"},
					{On: false},
				}},
				{Tag: "Compressor2", Disabled: true, Params: map[string]string{
					"Threshold": "0.4", "Ratio": "4", "Knee": "6",
				}},
				{Tag: "PluginDevice", PluginName: "FabFilter Pro-L 2", UserName: "ignored"},
			}},
			{Kind: "AudioTrack", Name: "Vox", Muted: true},
			{Kind: "ReturnTrack", Name: "A-Reverb", Devices: []testsupport.DeviceSpec{
				{Tag: "Reverb", Params: map[string]string{"DecayTime": "2400"}},
			}},
		},
	})

	analysis, err := liveset.Build(doc)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if analysis.Tempo != 128 {
		t.Fatalf("unexpected tempo: %v", analysis.Tempo)
	}
	if analysis.Version != "11.0_433" || analysis.Creator != "Ableton Live 11.3.4" {
		t.Fatalf("unexpected version info: %q %q", analysis.Version, analysis.Creator)
	}
	if len(analysis.Tracks) != 4 {
		t.Fatalf("expected 4 tracks including master, got %d", len(analysis.Tracks))
	}

	wantKinds := []liveset.TrackKind{liveset.KindMIDI, liveset.KindAudio, liveset.KindReturn, liveset.KindMaster}
	for i, track := range analysis.Tracks {
		if track.Kind != wantKinds[i] {
			t.Fatalf("track %d: expected kind %v, got %v", i, wantKinds[i], track.Kind)
		}
		if track.Ordinal != i {
			t.Fatalf("track %d: unexpected ordinal %d", i, track.Ordinal)
		}
		if track.DeviceCount() != len(track.Devices) {
			t.Fatalf("device count mismatch on %s", track.Name)
		}
	}

	lead := analysis.Tracks[0]
	if !lead.Mixer.Soloed || lead.Mixer.Muted {
		t.Fatalf("unexpected lead mixer state: %+v", lead.Mixer)
	}
	if lead.Mixer.Pan != -0.5 {
		t.Fatalf("unexpected pan %v", lead.Mixer.Pan)
	}
	if math.Abs(float64(lead.Mixer.VolumeDB)-6) > 1e-9 {
		t.Fatalf("expected +6 dB at full fader, got %v", lead.Mixer.VolumeDB)
	}
	if !analysis.Tracks[1].Mixer.Muted {
		t.Fatal("expected Vox muted")
	}

	gotTags := make([]string, 0, len(lead.Devices))
	for _, d := range lead.Devices {
		gotTags = append(gotTags, d.Tag)
	}
	if diff := cmp.Diff([]string{"Operator", "Eq8", "Compressor2", "PluginDevice"}, gotTags); diff != "" {
		t.Fatalf("chain order changed (-want +got):\n%s", diff)
	}

	eq := lead.Devices[1]
	if eq.Category != liveset.CategoryEqualizer || eq.Name != "Tone" {
		t.Fatalf("unexpected eq: %+v", eq)
	}
	wantBands := []liveset.EQBand{
		{Index: 0, Enabled: true, Freq: 120, Gain: -3, Q: 0.7},
		{Index: 1, Enabled: false, Freq: 1000, Gain: 0, Q: 0.71},
	}
	if diff := cmp.Diff(wantBands, eq.Bands); diff != "" {
		t.Fatalf("unexpected bands (-want +got):\n%s", diff)
	}

	comp := lead.Devices[2]
	if comp.Enabled {
		t.Fatal("expected compressor disabled")
	}
	if comp.Name != "Compressor2" {
		t.Fatalf("expected raw tag as display name, got %q", comp.Name)
	}
	if v, ok := comp.Param("Threshold"); !ok || v != 0.4 {
		t.Fatalf("threshold not extracted: %v %v", v, ok)
	}
	if _, ok := comp.Param("Knee"); ok {
		t.Fatal("parameters outside the table must be ignored")
	}
	if _, ok := comp.Param("Attack"); ok {
		t.Fatal("absent parameters must not be reported")
	}

	plugin := lead.Devices[3]
	if plugin.Category != liveset.CategoryLimiter {
		t.Fatalf("expected plugin classified as limiter, got %v", plugin.Category)
	}
	if plugin.Name != "FabFilter Pro-L 2" || plugin.PluginFormat != "vst" || !plugin.IsPlugin() {
		t.Fatalf("unexpected plugin identity: %+v", plugin)
	}

	if analysis.DeviceCount() != 5 || analysis.DisabledCount() != 1 {
		t.Fatalf("unexpected aggregates: devices=%d disabled=%d", analysis.DeviceCount(), analysis.DisabledCount())
	}
	if diff := cmp.Diff([]string{"FabFilter Pro-L 2"}, analysis.PluginNames()); diff != "" {
		t.Fatalf("unexpected plugin names:\n%s", diff)
	}
	counts := analysis.CategoryCounts()
	if counts[liveset.CategoryEqualizer] != 1 || counts[liveset.CategoryReverb] != 1 || counts[liveset.CategoryInstrument] != 1 {
		t.Fatalf("unexpected category counts: %v", counts)
	}
	if m := analysis.Master(); m == nil || m.Name != "Master" {
		t.Fatalf("expected master track, got %+v", m)
	}
}

func TestBuildEmptyTrackContainer(t *testing.T) {
	root := alsfile.NewNode("Ableton").Append(
		alsfile.NewNode("LiveSet").Append(alsfile.NewNode("Tracks")),
	)
	analysis, err := liveset.BuildNode(root)
	if err != nil {
		t.Fatalf("BuildNode returned error: %v", err)
	}
	if len(analysis.Tracks) != 0 || analysis.DeviceCount() != 0 {
		t.Fatalf("expected empty analysis, got %+v", analysis)
	}
}

func TestBuildWithoutTracksFails(t *testing.T) {
	cases := map[string]*alsfile.Document{
		"nil root":   {},
		"no liveset": {Root: alsfile.NewNode("Ableton")},
		"no tracks":  testsupport.BuildSet(testsupport.SetSpec{OmitTracks: true}),
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := liveset.Build(doc)
			if !errors.Is(err, liveset.ErrNoTracks) {
				t.Fatalf("expected ErrNoTracks, got %v", err)
			}
			var modelErr *liveset.ModelError
			if !errors.As(err, &modelErr) {
				t.Fatalf("expected *ModelError, got %T", err)
			}
		})
	}
}

func TestDeviceChainCandidatePaths(t *testing.T) {
	flat := alsfile.NewNode("AudioTrack").Append(
		alsfile.NewNode("DeviceChain").Append(
			alsfile.NewNode("DeviceChain").Append(alsfile.NewNode("Devices")),
			alsfile.NewNode("Devices").Append(alsfile.NewNode("Limiter")),
		),
	)
	bare := alsfile.NewNode("AudioTrack")
	mystery := alsfile.NewNode("ConsoleTrack").Append(
		alsfile.NewNode("Devices").Append(alsfile.NewNode("FutureDevice")),
	)
	root := alsfile.NewNode("LiveSet").Append(
		alsfile.NewNode("Tracks").Append(flat, bare, mystery),
	)

	analysis, err := liveset.BuildNode(root)
	if err != nil {
		t.Fatalf("BuildNode: %v", err)
	}
	if got := analysis.Tracks[0].Devices; len(got) != 1 || got[0].Category != liveset.CategoryLimiter {
		t.Fatalf("expected fallback to DeviceChain/Devices, got %+v", got)
	}
	if len(analysis.Tracks[1].Devices) != 0 {
		t.Fatal("track without a chain should have no devices")
	}
	if analysis.Tracks[1].Name != "Audio 2" {
		t.Fatalf("unexpected fallback name: %q", analysis.Tracks[1].Name)
	}
	unknown := analysis.Tracks[2]
	if unknown.Kind != liveset.KindUnknown || unknown.Tag != "ConsoleTrack" {
		t.Fatalf("unknown track kinds must be kept: %+v", unknown)
	}
	if d := unknown.Devices[0]; d.Category != liveset.CategoryUnknown || d.Name != "FutureDevice" || !d.Enabled {
		t.Fatalf("unexpected unknown device: %+v", d)
	}
}

func TestPluginClassification(t *testing.T) {
	cases := []struct {
		name   string
		format string
		want   liveset.Category
	}{
		{"FabFilter Pro-Q 3", "vst3", liveset.CategoryEqualizer},
		{"Valhalla VintageVerb", "au", liveset.CategoryReverb},
		{"Serum", "vst", liveset.CategoryExternalPlugin},
		{"CLA-76 Compressor", "vst", liveset.CategoryCompressor},
	}
	for _, tc := range cases {
		doc := testsupport.BuildSet(testsupport.SetSpec{Tracks: []testsupport.TrackSpec{{
			Name:    "T",
			Devices: []testsupport.DeviceSpec{{Tag: "PluginDevice", PluginName: tc.name, PluginFormat: tc.format}},
		}}})
		analysis, err := liveset.Build(doc)
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		d := analysis.Tracks[0].Devices[0]
		if d.Category != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, d.Category)
		}
		if d.PluginFormat != tc.format {
			t.Fatalf("%s: expected format %s, got %s", tc.name, tc.format, d.PluginFormat)
		}
	}
}

func TestMasterTrackRenamedInLive12(t *testing.T) {
	root := alsfile.NewNode("LiveSet").Append(
		alsfile.NewNode("Tracks"),
		alsfile.NewNode("MainTrack").Append(
			alsfile.NewNode("DeviceChain").Append(
				alsfile.NewNode("Mixer").Append(
					alsfile.NewNode("Tempo").Append(alsfile.NewNode("Manual", alsfile.Attr{Name: "Value", Value: "94"})),
				),
			),
		),
	)
	analysis, err := liveset.BuildNode(root)
	if err != nil {
		t.Fatalf("BuildNode: %v", err)
	}
	if len(analysis.Tracks) != 1 || analysis.Tracks[0].Kind != liveset.KindMaster {
		t.Fatalf("expected MainTrack as master, got %+v", analysis.Tracks)
	}
	if analysis.Tempo != 94 {
		t.Fatalf("unexpected tempo %v", analysis.Tempo)
	}
}

func TestBuildIgnoresNonFiniteNumbers(t *testing.T) {
	doc := testsupport.BuildSet(testsupport.SetSpec{
		Tracks: []testsupport.TrackSpec{
			{Name: "Odd", Volume: "NaN", Pan: "NaN", Devices: []testsupport.DeviceSpec{
				{Tag: "Compressor2", Params: map[string]string{"Threshold": "Inf", "Ratio": "-Inf", "Attack": "6"}},
			}},
		},
	})

	analysis, err := liveset.Build(doc)
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	odd := analysis.Tracks[0]
	if odd.Mixer.Volume != liveset.UnityVolume || odd.Mixer.Pan != 0 {
		t.Fatalf("non-finite mixer values should fall back to defaults: %+v", odd.Mixer)
	}
	want := map[string]float64{"Attack": 6}
	if diff := cmp.Diff(want, odd.Devices[0].Params); diff != "" {
		t.Fatalf("params mismatch (-want +got):\n%s", diff)
	}
	if _, err := json.Marshal(analysis); err != nil {
		t.Fatalf("analysis must stay JSON encodable: %v", err)
	}
}
