package setdiff

import (
	"fmt"

	"alsdoctor/internal/diagnosis"
	"alsdoctor/internal/liveset"
)

// ChangeKind names a device-level change.
type ChangeKind string

const (
	DeviceAdded    ChangeKind = "added"
	DeviceRemoved  ChangeKind = "removed"
	DeviceEnabled  ChangeKind = "enabled"
	DeviceDisabled ChangeKind = "disabled"
)

// DeviceChange is one change inside a track that exists in both sets.
type DeviceChange struct {
	Track    string           `json:"track"`
	Kind     ChangeKind       `json:"kind"`
	Category liveset.Category `json:"category"`
	Device   string           `json:"device"`
	// Position is the device index in the chain that contains it: the
	// before chain for removals, the after chain otherwise.
	Position int `json:"position"`
}

// ProjectDiff is the structural change report between two sets.
type ProjectDiff struct {
	TracksAdded   []string       `json:"tracks_added"`
	TracksRemoved []string       `json:"tracks_removed"`
	Devices       []DeviceChange `json:"device_changes"`

	ScoreBefore    int `json:"score_before"`
	ScoreAfter     int `json:"score_after"`
	IssuesBefore   int `json:"issues_before"`
	IssuesAfter    int `json:"issues_after"`
	DisabledBefore int `json:"disabled_before"`
	DisabledAfter  int `json:"disabled_after"`

	IsImprovement bool   `json:"is_improvement"`
	Verdict       string `json:"verdict"`
}

// Empty reports whether no structural change was found.
func (d ProjectDiff) Empty() bool {
	return len(d.TracksAdded) == 0 && len(d.TracksRemoved) == 0 && len(d.Devices) == 0
}

// ChangesFor filters device changes by kind.
func (d ProjectDiff) ChangesFor(kind ChangeKind) []DeviceChange {
	var out []DeviceChange
	for _, c := range d.Devices {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Diff compares two analyses using the default diagnosis options.
func Diff(before, after *liveset.ProjectAnalysis) ProjectDiff {
	return DiffWith(before, after, diagnosis.DefaultOptions())
}

// DiffWith compares two analyses, scoring both with opts.
func DiffWith(before, after *liveset.ProjectAnalysis, opts diagnosis.Options) ProjectDiff {
	if before == nil {
		before = &liveset.ProjectAnalysis{}
	}
	if after == nil {
		after = &liveset.ProjectAnalysis{}
	}

	out := ProjectDiff{
		TracksAdded:   []string{},
		TracksRemoved: []string{},
		Devices:       []DeviceChange{},
	}

	pairs, removed, added := pairTracks(before.Tracks, after.Tracks)
	for _, i := range removed {
		out.TracksRemoved = append(out.TracksRemoved, before.Tracks[i].Name)
	}
	for _, j := range added {
		out.TracksAdded = append(out.TracksAdded, after.Tracks[j].Name)
	}
	for _, p := range pairs {
		out.Devices = append(out.Devices, diffDevices(before.Tracks[p[0]], after.Tracks[p[1]])...)
	}

	b := diagnosis.DiagnoseWith(before, opts)
	a := diagnosis.DiagnoseWith(after, opts)
	out.ScoreBefore, out.ScoreAfter = b.HealthScore, a.HealthScore
	out.IssuesBefore, out.IssuesAfter = len(b.Issues), len(a.Issues)
	out.DisabledBefore, out.DisabledAfter = before.DisabledCount(), after.DisabledCount()
	out.IsImprovement, out.Verdict = verdict(out)
	return out
}

// pairTracks matches tracks by name. A name used k times pairs its n-th
// occurrence before with its n-th occurrence after. Results are in document
// order.
func pairTracks(before, after []liveset.Track) (pairs [][2]int, removed, added []int) {
	queue := map[string][]int{}
	for j, t := range after {
		queue[t.Name] = append(queue[t.Name], j)
	}
	matched := make([]bool, len(after))
	for i, t := range before {
		q := queue[t.Name]
		if len(q) == 0 {
			removed = append(removed, i)
			continue
		}
		pairs = append(pairs, [2]int{i, q[0]})
		matched[q[0]] = true
		queue[t.Name] = q[1:]
	}
	for j := range after {
		if !matched[j] {
			added = append(added, j)
		}
	}
	return pairs, removed, added
}

type deviceKey struct {
	category liveset.Category
	name     string
}

func keyOf(d liveset.Device) deviceKey {
	return deviceKey{category: d.Category, name: d.Name}
}

func diffDevices(before, after liveset.Track) []DeviceChange {
	queue := map[deviceKey][]int{}
	for j, d := range after.Devices {
		queue[keyOf(d)] = append(queue[keyOf(d)], j)
	}
	matched := make([]bool, len(after.Devices))
	var changes []DeviceChange

	for i, d := range before.Devices {
		k := keyOf(d)
		q := queue[k]
		if len(q) == 0 {
			changes = append(changes, DeviceChange{
				Track: after.Name, Kind: DeviceRemoved, Category: d.Category, Device: d.Name, Position: i,
			})
			continue
		}
		j := q[0]
		queue[k] = q[1:]
		matched[j] = true
		next := after.Devices[j]
		switch {
		case d.Enabled && !next.Enabled:
			changes = append(changes, DeviceChange{
				Track: after.Name, Kind: DeviceDisabled, Category: next.Category, Device: next.Name, Position: j,
			})
		case !d.Enabled && next.Enabled:
			changes = append(changes, DeviceChange{
				Track: after.Name, Kind: DeviceEnabled, Category: next.Category, Device: next.Name, Position: j,
			})
		}
	}
	for j, d := range after.Devices {
		if matched[j] {
			continue
		}
		changes = append(changes, DeviceChange{
			Track: after.Name, Kind: DeviceAdded, Category: d.Category, Device: d.Name, Position: j,
		})
	}
	return changes
}

// verdict counts one vote per signal: higher score, fewer issues and fewer
// disabled devices are positive.
func verdict(d ProjectDiff) (bool, string) {
	positive, negative := 0, 0
	vote := func(better, worse bool) {
		switch {
		case better:
			positive++
		case worse:
			negative++
		}
	}
	vote(d.ScoreAfter > d.ScoreBefore, d.ScoreAfter < d.ScoreBefore)
	vote(d.IssuesAfter < d.IssuesBefore, d.IssuesAfter > d.IssuesBefore)
	vote(d.DisabledAfter < d.DisabledBefore, d.DisabledAfter > d.DisabledBefore)

	improved := positive > negative
	switch {
	case improved:
		return true, fmt.Sprintf("likely improved (%d signals better, %d worse)", positive, negative)
	case negative > positive:
		return false, fmt.Sprintf("likely regressed (%d signals better, %d worse)", positive, negative)
	default:
		return false, fmt.Sprintf("no clear change (%d signals better, %d worse)", positive, negative)
	}
}
