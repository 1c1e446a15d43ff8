package diagnosis

import (
	"fmt"

	"alsdoctor/internal/liveset"
)

// projectRule inspects the whole analysis and fires at most once.
type projectRule func(a *liveset.ProjectAnalysis, opts Options) (Issue, bool)

// trackRule inspects one track and fires at most once per track.
type trackRule func(t liveset.Track, opts Options) (Issue, bool)

// rule is either a project rule or a track rule.
type rule struct {
	name    string
	project projectRule
	track   trackRule
}

// rules run in this order. Changing it changes every stored diagnosis.
//
//  1. device_clutter   (project)
//  2. device_clutter   (track)
//  3. chain_order      (track)
//  4. redundant_device (track)
//  5. chain_length     (track)
//  6. idle_eq          (track)
//  7. solo_active      (track)
//  8. master_muted     (project)
//  9. all_muted        (project)
//  10. master_hot      (project)
var rules = []rule{
	{name: "project clutter", project: projectClutter},
	{name: "track clutter", track: trackClutter},
	{name: "chain order", track: chainOrder},
	{name: "redundant device", track: redundantDevice},
	{name: "chain length", track: chainLength},
	{name: "idle eq", track: idleEQ},
	{name: "solo", track: soloActive},
	{name: "master muted", project: masterMuted},
	{name: "all muted", project: allMuted},
	{name: "master hot", project: masterHot},
}

// RuleNames lists the rules in evaluation order.
func RuleNames() []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.name
	}
	return names
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

func projectClutter(a *liveset.ProjectAnalysis, opts Options) (Issue, bool) {
	total, disabled := a.DeviceCount(), a.DisabledCount()
	if total == 0 || ratio(disabled, total) <= opts.ClutterRatio {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeverityWarning,
		Category:    CategoryClutter,
		Description: fmt.Sprintf("%d of %d devices in the set are disabled (%.0f%%)", disabled, total, ratio(disabled, total)*100),
		Fix:         "Delete devices you are not using or freeze the tracks that need them",
	}, true
}

func trackClutter(t liveset.Track, opts Options) (Issue, bool) {
	total, disabled := t.DeviceCount(), t.DisabledCount()
	if total < opts.MinClutterDevices || ratio(disabled, total) <= opts.ClutterRatio {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeverityWarning,
		Category:    CategoryClutter,
		Description: fmt.Sprintf("%d of %d devices on this track are disabled", disabled, total),
		Fix:         "Remove the disabled devices from the chain",
		Track:       t.Name,
	}, true
}

// stage orders processing categories by where they usually sit in a chain.
var stage = map[liveset.Category]int{
	liveset.CategoryFilter:     1,
	liveset.CategoryGate:       1,
	liveset.CategoryEqualizer:  1,
	liveset.CategoryCompressor: 2,
	liveset.CategorySaturation: 2,
	liveset.CategoryLimiter:    4,
}

const lateStage = 4

func chainOrder(t liveset.Track, _ Options) (Issue, bool) {
	for i, late := range t.Devices {
		if !late.Enabled || stage[late.Category] != lateStage {
			continue
		}
		for _, early := range t.Devices[i+1:] {
			rank, ok := stage[early.Category]
			if !early.Enabled || !ok || rank >= lateStage {
				continue
			}
			return Issue{
				Severity: SeverityWarning,
				Category: CategoryChainOrder,
				Description: fmt.Sprintf("%s (%s) runs before %s (%s)",
					late.Name, late.Category, early.Name, early.Category),
				Fix:   fmt.Sprintf("Move %s to the end of the chain", late.Name),
				Track: t.Name,
			}, true
		}
	}
	return Issue{}, false
}

func redundantDevice(t liveset.Track, _ Options) (Issue, bool) {
	for i := 1; i < len(t.Devices); i++ {
		prev, cur := t.Devices[i-1], t.Devices[i]
		if !prev.Enabled || !cur.Enabled {
			continue
		}
		if prev.Category != cur.Category || !cur.Category.IsProcessing() {
			continue
		}
		return Issue{
			Severity:    SeveritySuggestion,
			Category:    CategoryRedundant,
			Description: fmt.Sprintf("%s and %s are back-to-back %s devices", prev.Name, cur.Name, cur.Category),
			Fix:         "Merge the two into a single device",
			Track:       t.Name,
		}, true
	}
	return Issue{}, false
}

func chainLength(t liveset.Track, opts Options) (Issue, bool) {
	if opts.MaxChainLength <= 0 || t.DeviceCount() <= opts.MaxChainLength {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeveritySuggestion,
		Category:    CategoryChainLength,
		Description: fmt.Sprintf("chain has %d devices (more than %d)", t.DeviceCount(), opts.MaxChainLength),
		Fix:         "Group related devices into a rack or bounce the track",
		Track:       t.Name,
	}, true
}

func idleEQ(t liveset.Track, _ Options) (Issue, bool) {
	for _, d := range t.Devices {
		if !d.Enabled || d.Category != liveset.CategoryEqualizer || len(d.Bands) == 0 {
			continue
		}
		active := false
		for _, b := range d.Bands {
			if b.Enabled {
				active = true
				break
			}
		}
		if active {
			continue
		}
		return Issue{
			Severity:    SeveritySuggestion,
			Category:    CategoryIdleEQ,
			Description: fmt.Sprintf("%s is on but every band is off", d.Name),
			Fix:         "Remove the equalizer or enable the bands you need",
			Track:       t.Name,
		}, true
	}
	return Issue{}, false
}

func soloActive(t liveset.Track, _ Options) (Issue, bool) {
	if !t.Mixer.Soloed {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeverityWarning,
		Category:    CategorySolo,
		Description: "track is soloed, so an export will only contain soloed tracks",
		Fix:         "Clear solo before exporting",
		Track:       t.Name,
	}, true
}

func masterMuted(a *liveset.ProjectAnalysis, _ Options) (Issue, bool) {
	m := a.Master()
	if m == nil || !m.Mixer.Muted {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeverityCritical,
		Category:    CategoryMasterMuted,
		Description: "master track is muted; exports will be silent",
		Fix:         "Unmute the master track",
		Track:       m.Name,
	}, true
}

func allMuted(a *liveset.ProjectAnalysis, _ Options) (Issue, bool) {
	channels, muted := 0, 0
	for _, t := range a.Tracks {
		if !t.Kind.IsChannel() {
			continue
		}
		channels++
		if t.Mixer.Muted {
			muted++
		}
	}
	if channels == 0 || muted != channels {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeverityCritical,
		Category:    CategoryAllMuted,
		Description: fmt.Sprintf("all %d tracks are muted; exports will be silent", channels),
		Fix:         "Unmute the tracks that should be heard",
	}, true
}

// masterHotVolume is the raw master fader value above which master_hot
// fires. Live stores faders as linear gain where 1 is the default position of
// a new set, so only values past it count as pushed.
const masterHotVolume = 1.0

func masterHot(a *liveset.ProjectAnalysis, _ Options) (Issue, bool) {
	m := a.Master()
	if m == nil || m.Mixer.Volume <= masterHotVolume {
		return Issue{}, false
	}
	return Issue{
		Severity:    SeverityWarning,
		Category:    CategoryMasterHot,
		Description: fmt.Sprintf("master fader is at %s, above the default fader position", m.Mixer.VolumeDB),
		Fix:         "Pull the master fader back to 0 dB and gain-stage the tracks instead",
		Track:       m.Name,
	}, true
}
