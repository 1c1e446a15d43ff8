package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alsdoctor/internal/diagnosis"
	"alsdoctor/internal/liveset"
	"alsdoctor/internal/scan"
)

// Entry is one stored analysis.
type Entry struct {
	ID          int64                    `json:"id"`
	RunID       string                   `json:"run_id"`
	Folder      string                   `json:"project_folder"`
	Path        string                   `json:"document_path"`
	RecordedAt  time.Time                `json:"recorded_at"`
	Tempo       float64                  `json:"tempo"`
	Version     string                   `json:"live_version,omitempty"`
	Tracks      int                      `json:"tracks"`
	Devices     int                      `json:"devices"`
	Disabled    int                      `json:"disabled_devices"`
	HealthScore int                      `json:"health_score"`
	Grade       string                   `json:"grade"`
	Issues      int                      `json:"issues"`
	Critical    int                      `json:"critical"`
	Warnings    int                      `json:"warnings"`
	Suggestions int                      `json:"suggestions"`
	Analysis    *liveset.ProjectAnalysis `json:"analysis,omitempty"`
	Diagnosis   *diagnosis.Diagnosis     `json:"diagnosis,omitempty"`
}

const entryColumns = "id, run_id, project_folder, document_path, recorded_at, tempo, live_version, track_count, device_count, disabled_count, health_score, grade, issue_count, critical_count, warning_count, suggestion_count, analysis_json, diagnosis_json"

// Record stores a successful result under runID. Recording the same document
// twice in one run replaces the earlier row.
func (s *Store) Record(ctx context.Context, runID string, result scan.Result) error {
	if result.Failed() || result.Analysis == nil || result.Diagnosis == nil {
		return fmt.Errorf("record %s: result has no analysis", result.Path)
	}
	if runID == "" {
		return errors.New("record: run id is required")
	}
	analysisJSON, err := json.Marshal(result.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	diagnosisJSON, err := json.Marshal(result.Diagnosis)
	if err != nil {
		return fmt.Errorf("marshal diagnosis: %w", err)
	}

	a, d := result.Analysis, result.Diagnosis
	err = s.execWithRetry(ctx,
		`INSERT INTO analyses (
            run_id, project_folder, document_path, recorded_at, tempo, live_version,
            track_count, device_count, disabled_count, health_score, grade,
            issue_count, critical_count, warning_count, suggestion_count,
            analysis_json, diagnosis_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (project_folder, document_path, run_id) DO UPDATE SET
            recorded_at = excluded.recorded_at, tempo = excluded.tempo,
            live_version = excluded.live_version, track_count = excluded.track_count,
            device_count = excluded.device_count, disabled_count = excluded.disabled_count,
            health_score = excluded.health_score, grade = excluded.grade,
            issue_count = excluded.issue_count, critical_count = excluded.critical_count,
            warning_count = excluded.warning_count, suggestion_count = excluded.suggestion_count,
            analysis_json = excluded.analysis_json, diagnosis_json = excluded.diagnosis_json`,
		runID,
		result.Folder,
		result.Path,
		time.Now().UTC().Format(time.RFC3339Nano),
		a.Tempo,
		nullableString(a.Version),
		len(a.Tracks),
		a.DeviceCount(),
		a.DisabledCount(),
		d.HealthScore,
		d.Grade,
		len(d.Issues),
		d.Count(diagnosis.SeverityCritical),
		d.Count(diagnosis.SeverityWarning),
		d.Count(diagnosis.SeveritySuggestion),
		string(analysisJSON),
		string(diagnosisJSON),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// Latest returns the most recent entry for a document, or nil when none exists.
func (s *Store) Latest(ctx context.Context, documentPath string) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+entryColumns+` FROM analyses WHERE document_path = ? ORDER BY id DESC LIMIT 1`,
		documentPath,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest analysis: %w", err)
	}
	return entry, nil
}

// ForDocument returns every entry for a document, newest first.
func (s *Store) ForDocument(ctx context.Context, documentPath string) ([]Entry, error) {
	return s.query(ctx, `SELECT `+entryColumns+` FROM analyses WHERE document_path = ? ORDER BY id DESC`, documentPath)
}

// List returns the newest entry per document inside a project folder,
// ordered by document path.
func (s *Store) List(ctx context.Context, folder string) ([]Entry, error) {
	return s.query(ctx,
		`SELECT `+entryColumns+` FROM analyses
         WHERE id IN (SELECT MAX(id) FROM analyses WHERE project_folder = ? GROUP BY document_path)
         ORDER BY document_path`,
		folder,
	)
}

// Run returns the entries recorded by one scan run, ordered by document path.
func (s *Store) Run(ctx context.Context, runID string) ([]Entry, error) {
	return s.query(ctx, `SELECT `+entryColumns+` FROM analyses WHERE run_id = ? ORDER BY document_path`, runID)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return entries, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry         Entry
		recordedRaw   string
		version       sql.NullString
		analysisJSON  string
		diagnosisJSON string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.Folder,
		&entry.Path,
		&recordedRaw,
		&entry.Tempo,
		&version,
		&entry.Tracks,
		&entry.Devices,
		&entry.Disabled,
		&entry.HealthScore,
		&entry.Grade,
		&entry.Issues,
		&entry.Critical,
		&entry.Warnings,
		&entry.Suggestions,
		&analysisJSON,
		&diagnosisJSON,
	); err != nil {
		return nil, err
	}
	entry.Version = version.String
	if recorded, err := time.Parse(time.RFC3339Nano, recordedRaw); err == nil {
		entry.RecordedAt = recorded
	}

	var analysis liveset.ProjectAnalysis
	if err := json.Unmarshal([]byte(analysisJSON), &analysis); err != nil {
		return nil, fmt.Errorf("decode stored analysis %d: %w", entry.ID, err)
	}
	var diag diagnosis.Diagnosis
	if err := json.Unmarshal([]byte(diagnosisJSON), &diag); err != nil {
		return nil, fmt.Errorf("decode stored diagnosis %d: %w", entry.ID, err)
	}
	entry.Analysis = &analysis
	entry.Diagnosis = &diag
	return &entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ scan.Recorder = (*Store)(nil)
