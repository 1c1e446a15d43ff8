package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alsdoctor/internal/diagnosis"
	"alsdoctor/internal/history"
	"alsdoctor/internal/scan"
)

type doctorOutput struct {
	Path      string               `json:"path"`
	Diagnosis *diagnosis.Diagnosis `json:"diagnosis"`
	RunID     string               `json:"run_id,omitempty"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "doctor <file>",
		Short: "Diagnose a Live Set and report its health score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.componentLogger("doctor")
			path := absPath(args[0])

			result := scan.Analyze(path, cfg.DiagnosisOptions())
			if result.Failed() {
				return result.Err
			}
			logger.Info("set diagnosed",
				"document", path,
				"health_score", result.Diagnosis.HealthScore,
				"grade", result.Diagnosis.Grade,
				"issues", len(result.Diagnosis.Issues),
			)

			var runID string
			if record {
				runID = uuid.NewString()
				err := ctx.withHistoryWriter(func(store *history.Store) error {
					return store.Record(cmd.Context(), runID, result)
				})
				if err != nil {
					return fmt.Errorf("record diagnosis: %w", err)
				}
				logger.Debug("diagnosis recorded", "run_id", runID)
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, doctorOutput{Path: path, Diagnosis: result.Diagnosis, RunID: runID})
			}

			out := cmd.OutOrStdout()
			writeDiagnosis(out, path, *result.Diagnosis, shouldColorize(out))
			if runID != "" {
				fmt.Fprintln(out)
				printLines(out, renderField("Recorded", runID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Store the result in the history database")
	return cmd
}

func writeDiagnosis(out io.Writer, path string, diag diagnosis.Diagnosis, colorize bool) {
	printLines(out, renderSectionHeader("Health", colorize)...)
	printLines(out,
		renderField("Path", path),
		renderStatusLine("Score", gradeKind(diag.Grade), fmt.Sprintf("%d/100 (grade %s)", diag.HealthScore, diag.Grade), colorize),
		renderField("Issues", fmt.Sprintf("%d critical, %d warnings, %d suggestions",
			diag.Count(diagnosis.SeverityCritical),
			diag.Count(diagnosis.SeverityWarning),
			diag.Count(diagnosis.SeveritySuggestion),
		)),
	)
	for _, sev := range []diagnosis.Severity{diagnosis.SeverityCritical, diagnosis.SeverityWarning} {
		if n := diag.Count(sev); n > 0 {
			printLines(out, renderStatusLine(humanLabel(sev.String()), severityKind(sev), fmt.Sprintf("%d found", n), colorize))
		}
	}
	if len(diag.Issues) == 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "No issues found")
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderIssueTable(diag.Issues))
}

func renderIssueTable(issues []diagnosis.Issue) string {
	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{
			issue.Severity.String(),
			humanLabel(issue.Category),
			dashIfEmpty(issue.Track),
			issue.Description,
			dashIfEmpty(issue.Fix),
		})
	}
	return renderTable([]column{
		textCol("Severity"), textCol("Category"), textCol("Track"), wrapCol("Issue", 60), wrapCol("Fix", 40),
	}, rows)
}
