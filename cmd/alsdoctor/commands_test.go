package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/history"
	"alsdoctor/internal/idgraph"
	"alsdoctor/internal/logs"
	"alsdoctor/internal/setdiff"
	"alsdoctor/internal/template"
	"alsdoctor/internal/testsupport"
)

func mixSpec() testsupport.SetSpec {
	return testsupport.SetSpec{
		Tempo: "124",
		Tracks: []testsupport.TrackSpec{
			{Kind: "MidiTrack", Name: "Bass", Devices: []testsupport.DeviceSpec{{Tag: "Compressor2"}}},
			{Name: "Drums", Devices: []testsupport.DeviceSpec{
				{Tag: "Eq8"},
				{Tag: "Reverb", Disabled: true},
			}},
		},
	}
}

func writeMix(t *testing.T, env *cliTestEnv, name string, spec testsupport.SetSpec) string {
	t.Helper()
	path := filepath.Join(env.baseDir, "projects", "Mix Project", name)
	testsupport.WriteSet(t, path, spec)
	return path
}

func TestAnalyzeRendersTracks(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())

	stdout, _, err := runCLI(t, []string{"analyze", "--devices", path}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	requireContains(t, stdout, "== Live Set ==")
	requireContains(t, stdout, "124 BPM")
	requireContains(t, stdout, "Bass")
	requireContains(t, stdout, "Drums")
	requireContains(t, stdout, "Master")
	requireContains(t, stdout, "3 (1 disabled)")
	requireContains(t, stdout, "Compressor")
	requireContains(t, stdout, "Equalizer")
	requireNotContains(t, stdout, "\x1b[")
}

func TestAnalyzeJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())

	stdout, _, err := runCLI(t, []string{"--json", "analyze", path}, env.configPath)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var out analyzeOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, stdout)
	}
	if out.Summary.Tracks != 3 || out.Summary.Devices != 3 || out.Summary.Disabled != 1 {
		t.Fatalf("unexpected summary %+v", out.Summary)
	}
	var names []string
	for _, track := range out.Analysis.Tracks {
		names = append(names, track.Name)
	}
	if diff := cmp.Diff([]string{"Bass", "Drums", "Master"}, names); diff != "" {
		t.Fatalf("track names mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"analyze", filepath.Join(env.baseDir, "missing.als")}, env.configPath)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestAnalyzeMalformedFile(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "Broken.als")
	testsupport.WriteFile(t, path, []byte("not a live set"))

	_, _, err := runCLI(t, []string{"analyze", path}, env.configPath)
	if !errors.Is(err, alsfile.ErrMalformed) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestDoctorReportsIssues(t *testing.T) {
	env := setupCLITestEnv(t)
	spec := mixSpec()
	spec.Tracks[0].Soloed = true
	path := writeMix(t, env, "Mix.als", spec)

	stdout, _, err := runCLI(t, []string{"doctor", path}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, stdout, "== Health ==")
	requireContains(t, stdout, "Solo Active")
	requireContains(t, stdout, "Bass")
	requireContains(t, stdout, "/100 (grade ")
}

func TestDoctorCleanSet(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Clean.als", testsupport.SetSpec{
		Tracks: []testsupport.TrackSpec{{Name: "Keys"}},
	})

	stdout, _, err := runCLI(t, []string{"doctor", path}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	requireContains(t, stdout, "100/100 (grade A)")
	requireContains(t, stdout, "No issues found")
}

func TestDoctorRecordFeedsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())

	stdout, _, err := runCLI(t, []string{"--json", "doctor", "--record", path}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	var out doctorOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode doctor: %v", err)
	}
	if out.RunID == "" {
		t.Fatal("expected a run id when recording")
	}

	stdout, _, err = runCLI(t, []string{"--json", "history", path}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RunID != out.RunID || entries[0].HealthScore != out.Diagnosis.HealthScore {
		t.Fatalf("entry does not match diagnosis: %+v", entries[0])
	}

	stdout, _, err = runCLI(t, []string{"history", path}, env.configPath)
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	requireContains(t, stdout, shortRunID(out.RunID))
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	path := filepath.Join(env.baseDir, "Nothing.als")

	stdout, _, err := runCLI(t, []string{"history", path}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, stdout, "No history recorded")

	stdout, _, err = runCLI(t, []string{"--json", "history", path}, env.configPath)
	if err != nil {
		t.Fatalf("history json: %v", err)
	}
	requireContains(t, stdout, "[]")
}

func TestDiffReportsCleanup(t *testing.T) {
	env := setupCLITestEnv(t)
	before := writeMix(t, env, "Mix.als", mixSpec())
	cleaned := mixSpec()
	cleaned.Tracks[1].Devices = cleaned.Tracks[1].Devices[:1]
	cleaned.Tracks = append(cleaned.Tracks, testsupport.TrackSpec{Name: "Vox"})
	after := writeMix(t, env, "Mix v2.als", cleaned)

	stdout, _, err := runCLI(t, []string{"--json", "diff", before, after}, env.configPath)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	var diff setdiff.ProjectDiff
	if err := json.Unmarshal([]byte(stdout), &diff); err != nil {
		t.Fatalf("decode diff: %v", err)
	}
	if diffText := cmp.Diff([]string{"Vox"}, diff.TracksAdded); diffText != "" {
		t.Fatalf("tracks added mismatch (-want +got):\n%s", diffText)
	}
	removed := diff.ChangesFor(setdiff.DeviceRemoved)
	if len(removed) != 1 || removed[0].Track != "Drums" || removed[0].Position != 1 {
		t.Fatalf("unexpected removals %+v", removed)
	}
	if diff.DisabledBefore != 1 || diff.DisabledAfter != 0 {
		t.Fatalf("unexpected disabled counts %d -> %d", diff.DisabledBefore, diff.DisabledAfter)
	}

	stdout, _, err = runCLI(t, []string{"diff", before, after}, env.configPath)
	if err != nil {
		t.Fatalf("diff table: %v", err)
	}
	requireContains(t, stdout, "== Changes ==")
	requireContains(t, stdout, "removed")
	requireContains(t, stdout, "Vox")
}

func TestDiffIdenticalSets(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())

	stdout, _, err := runCLI(t, []string{"diff", path, path}, env.configPath)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	requireContains(t, stdout, "No structural changes")
}

func TestScanRecordsAndListsFolder(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "projects")
	writeMix(t, env, "Mix.als", mixSpec())
	writeMix(t, env, "Mix v2.als", testsupport.SetSpec{Tracks: []testsupport.TrackSpec{{Name: "Keys"}}})
	testsupport.WriteSet(t, filepath.Join(root, "Mix Project", "Backup", "Mix [old].als"), mixSpec())
	testsupport.WriteFile(t, filepath.Join(root, "Broken.als"), []byte("garbage"))

	stdout, _, err := runCLI(t, []string{"scan", "--record", root}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, stdout, "== Scan ==")
	requireContains(t, stdout, "1 of 3 documents failed")
	requireContains(t, stdout, "Broken.als")
	requireNotContains(t, stdout, "Mix [old].als")

	stdout, _, err = runCLI(t, []string{"--json", "history", filepath.Join(root, "Mix Project")}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(stdout), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 folder entries, got %d", len(entries))
	}
}

func TestScanIncludeBackups(t *testing.T) {
	env := setupCLITestEnv(t)
	root := filepath.Join(env.baseDir, "projects")
	writeMix(t, env, "Mix.als", mixSpec())
	testsupport.WriteSet(t, filepath.Join(root, "Mix Project", "Backup", "Mix [old].als"), mixSpec())

	stdout, _, err := runCLI(t, []string{"--json", "scan", "--include-backups", root}, env.configPath)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var summary struct {
		Results []json.RawMessage `json:"results"`
		Failed  int               `json:"failed"`
	}
	if err := json.Unmarshal([]byte(stdout), &summary); err != nil {
		t.Fatalf("decode scan: %v", err)
	}
	if len(summary.Results) != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %d results, %d failed", len(summary.Results), summary.Failed)
	}
}

func TestCheckReportsIntegrity(t *testing.T) {
	env := setupCLITestEnv(t)
	good := writeMix(t, env, "Mix.als", mixSpec())

	stdout, _, err := runCLI(t, []string{"check", good}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, stdout, "all references resolved")

	doc := testsupport.BuildSet(mixSpec())
	doc.Root.Child("LiveSet").Append(alsfile.NewNode("Pointee", alsfile.Attr{Name: "Id", Value: "9999"}))
	data, err := alsfile.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	bad := filepath.Join(env.baseDir, "Bad.als")
	testsupport.WriteFile(t, bad, data)

	stdout, _, err = runCLI(t, []string{"--json", "check", bad}, env.configPath)
	if !errors.Is(err, errIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
	var out checkOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode check: %v", err)
	}
	if out.OK {
		t.Fatal("expected check to fail")
	}
	if diff := cmp.Diff([]idgraph.Identifier{9999}, out.Report.Dangling); diff != "" {
		t.Fatalf("dangling mismatch (-want +got):\n%s", diff)
	}
}

func TestCloneTrackDuplicates(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())
	out := filepath.Join(env.baseDir, "out", "Mix copy.als")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"clone-track", path, "--track", "1", "--name", "Drums 2", "--out", out}, env.configPath)
	if err != nil {
		t.Fatalf("clone-track: %v", err)
	}
	requireContains(t, stdout, `"Drums 2" at position 2`)

	doc, analysis, err := loadAnalysis(out)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	var names []string
	for _, track := range analysis.Tracks {
		names = append(names, track.Name)
	}
	if diff := cmp.Diff([]string{"Bass", "Drums", "Drums 2", "Master"}, names); diff != "" {
		t.Fatalf("track names mismatch (-want +got):\n%s", diff)
	}
	if report := idgraph.Check(doc.Root); !report.OK() {
		t.Fatalf("clone broke references: %s", report)
	}

	if _, _, err := runCLI(t, []string{"check", out}, env.configPath); err != nil {
		t.Fatalf("check on clone output: %v", err)
	}
}

func TestCloneTrackImportsFromAnotherSet(t *testing.T) {
	env := setupCLITestEnv(t)
	target := writeMix(t, env, "Mix.als", mixSpec())
	source := writeMix(t, env, "Template.als", testsupport.SetSpec{
		Tracks: []testsupport.TrackSpec{{Name: "Vocal Chain", Devices: []testsupport.DeviceSpec{{Tag: "Eq8"}, {Tag: "Compressor2"}}}},
	})
	out := filepath.Join(env.baseDir, "Mix imported.als")

	stdout, _, err := runCLI(t, []string{"--json", "clone-track", target, "--from", source, "--track", "0", "--out", out}, env.configPath)
	if err != nil {
		t.Fatalf("clone-track: %v", err)
	}
	var result cloneOutput
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode clone: %v", err)
	}
	if result.Track.Name != "Vocal Chain" || result.Track.Index != 2 {
		t.Fatalf("unexpected track ref %+v", result.Track)
	}

	_, analysis, err := loadAnalysis(out)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	if got := analysis.Tracks[2]; got.Name != "Vocal Chain" || got.DeviceCount() != 2 {
		t.Fatalf("unexpected imported track %+v", got)
	}
}

func TestCloneTrackErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())
	out := filepath.Join(env.baseDir, "never.als")

	_, _, err := runCLI(t, []string{"clone-track", path, "--track", "7", "--out", out}, env.configPath)
	if !errors.Is(err, template.ErrTrackIndex) {
		t.Fatalf("expected track index error, got %v", err)
	}
	if _, statErr := os.Stat(out); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output should not be written on failure, stat err %v", statErr)
	}

	_, _, err = runCLI(t, []string{"clone-track", path}, env.configPath)
	if err == nil {
		t.Fatal("expected error without --out")
	}
	requireContains(t, err.Error(), "--out")
}

func TestCloneTrackInPlaceKeepsBackup(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeMix(t, env, "Mix.als", mixSpec())
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read original: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"--json", "clone-track", path, "--track", "0", "--name", "Bass 2", "--in-place"}, env.configPath)
	if err != nil {
		t.Fatalf("clone-track: %v", err)
	}
	var result cloneOutput
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("decode clone: %v", err)
	}
	if result.Output != path || result.Backup == "" {
		t.Fatalf("unexpected output %+v", result)
	}
	if filepath.Base(filepath.Dir(result.Backup)) != "Backup" {
		t.Fatalf("backup not in Backup folder: %s", result.Backup)
	}
	saved, err := os.ReadFile(result.Backup)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if diff := cmp.Diff(original, saved); diff != "" {
		t.Fatalf("backup differs from original (-want +got):\n%s", diff)
	}

	_, analysis, err := loadAnalysis(path)
	if err != nil {
		t.Fatalf("load rewritten set: %v", err)
	}
	if len(analysis.Tracks) != 4 || analysis.Tracks[1].Name != "Bass 2" {
		t.Fatalf("unexpected tracks after in-place clone: %d", len(analysis.Tracks))
	}

	_, _, err = runCLI(t, []string{"clone-track", path, "--in-place", "--out", path}, env.configPath)
	if err == nil {
		t.Fatal("expected error when both --out and --in-place are given")
	}
}

func TestLogsShowsCommandRecords(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"logs"}, env.configPath)
	if !errors.Is(err, logs.ErrNoLogs) {
		t.Fatalf("expected ErrNoLogs before any command ran, got %v", err)
	}

	path := writeMix(t, env, "Mix.als", mixSpec())
	if _, _, err := runCLI(t, []string{"analyze", path}, env.configPath); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	stdout, _, err := runCLI(t, []string{"logs", "--lines", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, stdout, "set analysed")
	requireContains(t, stdout, "[analyze]")
}

func TestCloneTrackWarnsAboutExistingDanglingReferences(t *testing.T) {
	env := setupCLITestEnv(t)
	doc := testsupport.BuildSet(mixSpec())
	doc.Root.Child("LiveSet").Append(alsfile.NewNode("Pointee", alsfile.Attr{Name: "Id", Value: "9999"}))
	data, err := alsfile.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	damaged := filepath.Join(env.baseDir, "Damaged.als")
	testsupport.WriteFile(t, damaged, data)
	out := filepath.Join(env.baseDir, "Damaged copy.als")

	stdout, _, err := runCLI(t, []string{"clone-track", damaged, "--track", "0", "--out", out}, env.configPath)
	if err != nil {
		t.Fatalf("clone-track: %v", err)
	}
	requireContains(t, stdout, "[WARN]")
	requireContains(t, stdout, "1 dangling references")
	requireNotContains(t, stdout, "[OK]")
}
