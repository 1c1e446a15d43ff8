package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alsdoctor/internal/setdiff"
)

func newDiffCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Compare two versions of a Live Set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.componentLogger("diff")
			beforePath, afterPath := absPath(args[0]), absPath(args[1])

			_, before, err := loadAnalysis(beforePath)
			if err != nil {
				return err
			}
			_, after, err := loadAnalysis(afterPath)
			if err != nil {
				return err
			}

			diff := setdiff.DiffWith(before, after, cfg.DiagnosisOptions())
			logger.Info("sets compared",
				"before", beforePath,
				"after", afterPath,
				"device_changes", len(diff.Devices),
				"improvement", diff.IsImprovement,
			)

			if ctx.jsonOutput() {
				return writeJSON(cmd, diff)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Changes", colorize)...)
			printLines(out,
				renderField("Before", beforePath),
				renderField("After", afterPath),
				renderField("Score", fmt.Sprintf("%d -> %d", diff.ScoreBefore, diff.ScoreAfter)),
				renderField("Issues", fmt.Sprintf("%d -> %d", diff.IssuesBefore, diff.IssuesAfter)),
				renderField("Disabled", fmt.Sprintf("%d -> %d", diff.DisabledBefore, diff.DisabledAfter)),
				renderStatusLine("Verdict", verdictKind(diff), diff.Verdict, colorize),
			)

			if diff.Empty() {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "No structural changes")
				return nil
			}
			if len(diff.TracksAdded) > 0 || len(diff.TracksRemoved) > 0 {
				rows := make([][]string, 0, len(diff.TracksAdded)+len(diff.TracksRemoved))
				for _, name := range diff.TracksAdded {
					rows = append(rows, []string{"added", name})
				}
				for _, name := range diff.TracksRemoved {
					rows = append(rows, []string{"removed", name})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]column{textCol("Change"), textCol("Track")}, rows))
			}
			if len(diff.Devices) > 0 {
				rows := make([][]string, 0, len(diff.Devices))
				for _, change := range diff.Devices {
					rows = append(rows, []string{
						string(change.Kind),
						change.Track,
						itoa(change.Position),
						change.Device,
						humanLabel(string(change.Category)),
					})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]column{
					textCol("Change"), textCol("Track"), numCol("#"), textCol("Device"), textCol("Category"),
				}, rows))
			}
			return nil
		},
	}
}

func verdictKind(diff setdiff.ProjectDiff) statusKind {
	switch {
	case diff.IsImprovement:
		return statusOK
	case diff.ScoreAfter < diff.ScoreBefore:
		return statusWarn
	default:
		return statusInfo
	}
}
