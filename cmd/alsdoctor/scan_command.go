package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"alsdoctor/internal/history"
	"alsdoctor/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var record bool
	var concurrency int
	var includeBackups bool

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Diagnose every Live Set under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := absPath(args[0])
			scanner := scan.New(cfg, ctx.rootLogger())
			if concurrency > 0 {
				scanner.Concurrency = concurrency
			}
			if includeBackups {
				scanner.SkipBackups = false
			}

			var summary *scan.Summary
			run := func() error {
				var err error
				summary, err = scanner.Run(cmd.Context(), root)
				return err
			}
			if record {
				err = ctx.withHistoryWriter(func(store *history.Store) error {
					scanner.Recorder = store
					return run()
				})
			} else {
				err = run()
			}
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(summary.Results))
			for _, result := range summary.Results {
				name := result.Path
				if rel, err := filepath.Rel(root, result.Path); err == nil && rel != "." {
					name = rel
				}
				if result.Failed() {
					rows = append(rows, []string{name, "-", "-", "-", result.Error})
					continue
				}
				rows = append(rows, []string{
					name,
					itoa(result.Diagnosis.HealthScore),
					result.Diagnosis.Grade,
					itoa(len(result.Diagnosis.Issues)),
					"",
				})
			}

			printLines(out, renderSectionHeader("Scan", colorize)...)
			printLines(out,
				renderField("Root", root),
				renderField("Run", summary.RunID),
				renderField("Documents", itoa(summary.Total())),
			)
			if summary.Total() > summary.Failed {
				printLines(out, renderField("Average score", fmt.Sprintf("%.1f", summary.AverageScore())))
			}
			if record {
				printLines(out, renderField("Recorded", itoa(summary.Recorded)))
			}
			if summary.Failed > 0 {
				printLines(out, renderStatusLine("Failures", statusWarn, summary.String(), colorize))
			}
			if len(rows) == 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "No Live Sets found")
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable([]column{
				textCol("Document"), numCol("Score"), textCol("Grade"), numCol("Issues"), wrapCol("Error", 48),
			}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "Store successful results in the history database")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Documents analysed in parallel (default from config)")
	cmd.Flags().BoolVar(&includeBackups, "include-backups", false, "Also scan Live's Backup folders")
	return cmd
}
