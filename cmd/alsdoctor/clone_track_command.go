package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"alsdoctor/internal/alsfile"
	"alsdoctor/internal/fileutil"
	"alsdoctor/internal/idgraph"
	"alsdoctor/internal/template"
)

type cloneOutput struct {
	Source string            `json:"source"`
	Output string            `json:"output"`
	Backup string            `json:"backup,omitempty"`
	Track  template.TrackRef `json:"track"`
}

func newCloneTrackCommand(ctx *commandContext) *cobra.Command {
	var trackIndex int
	var newName string
	var outPath string
	var fromPath string
	var inPlace bool

	cmd := &cobra.Command{
		Use:   "clone-track <file>",
		Short: "Duplicate a track, or import one from another set, with fresh identifiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasOut := strings.TrimSpace(outPath) != ""
			if hasOut == inPlace {
				return errors.New("exactly one of --out or --in-place is required")
			}
			logger := ctx.componentLogger("template")
			target := absPath(args[0])
			output := target
			if hasOut {
				output = absPath(outPath)
			}

			doc, err := alsfile.ReadFile(target)
			if err != nil {
				return err
			}

			source := target
			var ref template.TrackRef
			if strings.TrimSpace(fromPath) != "" {
				source = absPath(fromPath)
				src, err := alsfile.ReadFile(source)
				if err != nil {
					return err
				}
				ref, err = template.ImportTrack(doc, src, trackIndex, newName)
				if err != nil {
					return err
				}
			} else {
				ref, err = template.DuplicateTrack(doc, trackIndex, newName)
				if err != nil {
					return err
				}
			}

			var backup string
			if output == target {
				backup, err = fileutil.BackupSet(target, time.Now())
				if err != nil {
					return err
				}
				logger.Debug("original set backed up", "document", target, "backup", backup)
			}
			if err := alsfile.WriteFile(output, doc); err != nil {
				return err
			}
			logger.Info("track cloned",
				"document", output,
				"source", source,
				"track", ref.Name,
				"first_identifier", int64(ref.First),
				"owners_renumbered", ref.Renumbered,
			)

			if ctx.jsonOutput() {
				return writeJSON(cmd, cloneOutput{Source: source, Output: output, Backup: backup, Track: ref})
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Clone", colorize)...)
			printLines(out,
				renderField("Source", source),
				renderField("Output", output),
				renderField("Track", fmt.Sprintf("%q at position %d", ref.Name, ref.Index)),
				renderField("Identifiers", fmt.Sprintf("%d renumbered from %d, next free %d", ref.Renumbered, ref.First, ref.Next)),
				renderStatusLine("Integrity", integrityKind(ref.Report), ref.Report.String(), colorize),
			)
			if backup != "" {
				printLines(out, renderField("Backup", backup))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&trackIndex, "track", "t", 0, "Index of the track to copy inside the Tracks container")
	cmd.Flags().StringVarP(&newName, "name", "n", "", "Name for the new track (default keeps the source name)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Where to write the modified set")
	cmd.Flags().StringVar(&fromPath, "from", "", "Copy the track from this set instead of the input")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the input after saving a copy to its Backup folder")
	return cmd
}

// integrityKind flags problems that were already in the document; the clone
// itself is rejected when it adds any.
func integrityKind(report idgraph.Report) statusKind {
	if report.OK() {
		return statusOK
	}
	return statusWarn
}
