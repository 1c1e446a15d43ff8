package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/idgraph"
	"alsdoctor/internal/logging"
)

var errIntegrity = errors.New("reference integrity check failed")

type checkOutput struct {
	Path   string         `json:"path"`
	OK     bool           `json:"ok"`
	Report idgraph.Report `json:"report"`
}

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Verify identifier references of a Live Set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := absPath(args[0])
			logger := ctx.componentLogger("check")
			doc, err := alsfile.ReadFile(path)
			if err != nil {
				return err
			}
			report := idgraph.Check(doc.Root)
			if !report.OK() {
				logging.WarnWithContext(logger, "reference integrity problems", "integrity_failed",
					logging.Document(path),
					logging.Int("duplicates", len(report.Duplicates)),
					logging.Int("dangling", len(report.Dangling)),
					logging.String(logging.FieldErrorHint, "restore the set from Live's Backup folder"),
				)
			}

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, checkOutput{Path: path, OK: report.OK(), Report: report}); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				printLines(out, renderSectionHeader("References", colorize)...)
				printLines(out,
					renderField("Path", path),
					renderField("Owners", itoa(report.Owners)),
					renderField("References", itoa(report.References)),
					renderField("Max identifier", fmt.Sprint(report.Max)),
				)
				if report.OK() {
					printLines(out, renderStatusLine("Integrity", statusOK, "all references resolved", colorize))
				} else {
					printLines(out, renderStatusLine("Integrity", statusError, report.String(), colorize))
					if len(report.Duplicates) > 0 {
						printLines(out, renderField("Duplicate ids", joinIdentifiers(report.Duplicates)))
					}
					if len(report.Dangling) > 0 {
						printLines(out, renderField("Dangling ids", joinIdentifiers(report.Dangling)))
					}
				}
			}

			if !report.OK() {
				return fmt.Errorf("%s: %w", path, errIntegrity)
			}
			return nil
		},
	}
}

func joinIdentifiers(ids []idgraph.Identifier) string {
	const limit = 20
	parts := make([]string, 0, min(len(ids), limit)+1)
	for i, id := range ids {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... %d more", len(ids)-limit))
			break
		}
		parts = append(parts, fmt.Sprint(id))
	}
	return strings.Join(parts, ", ")
}
