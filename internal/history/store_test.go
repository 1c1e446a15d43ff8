package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"alsdoctor/internal/config"
	"alsdoctor/internal/history"
	"alsdoctor/internal/scan"
	"alsdoctor/internal/testsupport"
)

func openStore(t *testing.T, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func analysed(t *testing.T, path string, spec testsupport.SetSpec) scan.Result {
	t.Helper()
	testsupport.WriteSet(t, path, spec)
	cfg := config.Default()
	res := scan.Analyze(path, cfg.DiagnosisOptions())
	if res.Failed() {
		t.Fatalf("analyze %s: %v", path, res.Err)
	}
	return res
}

func TestRecordAndLatest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := openStore(t, cfg)
	ctx := context.Background()
	dir := t.TempDir()
	song := filepath.Join(dir, "Song Project", "Song.als")

	first := analysed(t, song, testsupport.SetSpec{
		Tracks: []testsupport.TrackSpec{{Name: "Lead", Soloed: true}},
	})
	if err := store.Record(ctx, "run-1", first); err != nil {
		t.Fatalf("Record run-1: %v", err)
	}
	second := analysed(t, song, testsupport.SetSpec{
		Tempo:  "128",
		Tracks: []testsupport.TrackSpec{{Name: "Lead"}},
	})
	if err := store.Record(ctx, "run-2", second); err != nil {
		t.Fatalf("Record run-2: %v", err)
	}

	latest, err := store.Latest(ctx, song)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.RunID != "run-2" {
		t.Fatalf("expected run-2 entry, got %+v", latest)
	}
	if latest.HealthScore != 100 || latest.Grade != "A" || latest.Tempo != 128 {
		t.Fatalf("unexpected latest entry %+v", latest)
	}
	if latest.Folder != filepath.Join(dir, "Song Project") {
		t.Fatalf("unexpected folder %q", latest.Folder)
	}
	if latest.RecordedAt.IsZero() {
		t.Fatal("expected recorded_at to be set")
	}
	if diff := cmp.Diff(second.Analysis, latest.Analysis); diff != "" {
		t.Fatalf("stored analysis mismatch (-want +got):\n%s", diff)
	}

	all, err := store.ForDocument(ctx, song)
	if err != nil {
		t.Fatalf("ForDocument: %v", err)
	}
	if len(all) != 2 || all[1].RunID != "run-1" || all[1].Warnings != 1 {
		t.Fatalf("unexpected document history %+v", all)
	}
}

func TestRecordSameRunReplaces(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := openStore(t, cfg)
	ctx := context.Background()
	song := filepath.Join(t.TempDir(), "Song.als")

	res := analysed(t, song, testsupport.SetSpec{})
	for range 2 {
		if err := store.Record(ctx, "run-1", res); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	entries, err := store.Run(ctx, "run-1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry after re-record, got %d", len(entries))
	}
}

func TestListNewestPerDocument(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := openStore(t, cfg)
	ctx := context.Background()
	folder := filepath.Join(t.TempDir(), "Album")

	a := analysed(t, filepath.Join(folder, "A.als"), testsupport.SetSpec{})
	b := analysed(t, filepath.Join(folder, "B.als"), testsupport.SetSpec{})
	other := analysed(t, filepath.Join(t.TempDir(), "Other.als"), testsupport.SetSpec{})
	for _, rec := range []struct {
		run string
		res scan.Result
	}{{"run-1", a}, {"run-1", b}, {"run-2", a}, {"run-2", other}} {
		if err := store.Record(ctx, rec.run, rec.res); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := store.List(ctx, folder)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, filepath.Base(e.Path)+"@"+e.RunID)
	}
	if diff := cmp.Diff([]string{"A.als@run-2", "B.als@run-1"}, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestLatestMissingDocument(t *testing.T) {
	store := openStore(t, testsupport.NewConfig(t))
	entry, err := store.Latest(context.Background(), "/nowhere/Song.als")
	if err != nil || entry != nil {
		t.Fatalf("expected nil entry, got %+v / %v", entry, err)
	}
}

func TestRecordRejectsFailedResults(t *testing.T) {
	store := openStore(t, testsupport.NewConfig(t))
	failed := scan.Result{Path: "/x/Broken.als", Err: errors.New("boom")}
	if err := store.Record(context.Background(), "run-1", failed); err == nil {
		t.Fatal("expected error for failed result")
	}
	ok := analysed(t, filepath.Join(t.TempDir(), "Song.als"), testsupport.SetSpec{})
	if err := store.Record(context.Background(), "", ok); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", cfg.HistoryPath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(cfg); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestWriterLockIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := openStore(t, cfg)
	second := openStore(t, cfg)

	unlock, err := first.LockWriter()
	if err != nil {
		t.Fatalf("LockWriter: %v", err)
	}
	if _, err := second.LockWriter(); !errors.Is(err, history.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	unlockAgain, err := second.LockWriter()
	if err != nil {
		t.Fatalf("LockWriter after release: %v", err)
	}
	_ = unlockAgain()
}

func TestScanRecordsIntoHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := openStore(t, cfg)
	root := t.TempDir()
	testsupport.WriteSet(t, filepath.Join(root, "One.als"), testsupport.SetSpec{})
	testsupport.WriteSet(t, filepath.Join(root, "Two.als"), testsupport.SetSpec{})

	scanner := scan.New(cfg, nil)
	scanner.Recorder = store
	summary, err := scanner.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	entries, err := store.Run(context.Background(), summary.RunID)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(entries) != 2 || summary.Recorded != 2 {
		t.Fatalf("expected two recorded entries, got %d (summary %d)", len(entries), summary.Recorded)
	}
}
