package liveset

import (
	"math"

	"alsdoctor/internal/alsfile"
)

const (
	// UnityVolume is the normalized fader position of 0 dB.
	UnityVolume = 0.85
	// FloorDB is the level the lower taper reaches at a fader position of zero.
	FloorDB = -70.0
	// HeadroomDB is the gain at the top of the fader.
	HeadroomDB = 6.0
)

// VolumeToDB converts a normalized fader value to dB. Above UnityVolume the
// curve rises linearly to +6 dB at 1.0; below it a separate linear taper falls
// to -70 dB. Non-positive values are silence.
func VolumeToDB(v float64) Decibels {
	switch {
	case v <= 0 || math.IsNaN(v):
		return Decibels(math.Inf(-1))
	case v >= UnityVolume:
		return Decibels((v - UnityVolume) / (1 - UnityVolume) * HeadroomDB)
	default:
		return Decibels(FloorDB + v/UnityVolume*(-FloorDB))
	}
}

// mixerPaths lists where the mixer lives, newest layout first. Live 8 and 9
// kept the master's mixer under MasterChain.
var mixerPaths = [][]string{
	{"DeviceChain", "Mixer"},
	{"MasterChain", "Mixer"},
}

func findMixer(track *alsfile.RawNode) *alsfile.RawNode {
	for _, path := range mixerPaths {
		if m := track.Path(path...); m != nil {
			return m
		}
	}
	return nil
}

func buildMixer(track *alsfile.RawNode) Mixer {
	m := Mixer{Volume: UnityVolume}
	mixer := findMixer(track)
	if mixer != nil {
		if v, ok := floatAt(mixer, "Volume", "Manual"); ok {
			m.Volume = v
		}
		if v, ok := floatAt(mixer, "Pan", "Manual"); ok {
			m.Pan = max(-1, min(1, v))
		}
		if v, ok := mixer.ValueAt("Speaker", "Manual"); ok {
			m.Muted = v == "false"
		}
		m.Soloed = firstBool(mixer, [][]string{{"SoloSink"}, {"Solo", "Manual"}})
	}
	m.VolumeDB = VolumeToDB(m.Volume)
	return m
}

func tempoOf(master *alsfile.RawNode) float64 {
	mixer := findMixer(master)
	if mixer == nil {
		return 0
	}
	v, _ := floatAt(mixer, "Tempo", "Manual")
	return v
}

func firstBool(n *alsfile.RawNode, paths [][]string) bool {
	for _, path := range paths {
		if v, ok := n.ValueAt(path...); ok {
			return v == "true"
		}
	}
	return false
}
