package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"alsdoctor/internal/liveset"
)

type analyzeOutput struct {
	Path     string                   `json:"path"`
	Analysis *liveset.ProjectAnalysis `json:"analysis"`
	Summary  liveset.Summary          `json:"summary"`
}

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var showDevices bool

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Show tracks, device chains and mixer state of a Live Set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := absPath(args[0])
			logger := ctx.componentLogger("analyze")
			_, analysis, err := loadAnalysis(path)
			if err != nil {
				return err
			}
			summary := analysis.Summarize()
			logger.Info("set analysed",
				"document", path,
				"tracks", summary.Tracks,
				"devices", summary.Devices,
			)

			if ctx.jsonOutput() {
				return writeJSON(cmd, analyzeOutput{Path: path, Analysis: analysis, Summary: summary})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			printLines(out, renderSectionHeader("Live Set", colorize)...)
			printLines(out,
				renderField("Path", path),
				renderField("Version", dashIfEmpty(analysis.Version)),
				renderField("Tempo", formatTempo(analysis.Tempo)),
				renderField("Tracks", itoa(summary.Tracks)),
				renderField("Devices", fmt.Sprintf("%d (%d disabled)", summary.Devices, summary.Disabled)),
			)
			if len(summary.Plugins) > 0 {
				printLines(out, renderField("Plugins", strings.Join(summary.Plugins, ", ")))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTrackTable(analysis))

			if len(summary.CategoryCounts) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderCategoryTable(summary.CategoryCounts))
			}

			if showDevices {
				for _, track := range analysis.Tracks {
					if len(track.Devices) == 0 {
						continue
					}
					fmt.Fprintln(out)
					printLines(out, renderSectionHeader(track.Name, colorize)...)
					fmt.Fprintln(out, renderDeviceTable(track))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showDevices, "devices", "d", false, "List every device chain")
	return cmd
}

func renderTrackTable(analysis *liveset.ProjectAnalysis) string {
	rows := make([][]string, 0, len(analysis.Tracks))
	for _, track := range analysis.Tracks {
		var flags []string
		if track.Mixer.Muted {
			flags = append(flags, "muted")
		}
		if track.Mixer.Soloed {
			flags = append(flags, "solo")
		}
		rows = append(rows, []string{
			itoa(track.Ordinal),
			track.Name,
			track.Kind.String(),
			itoa(track.DeviceCount()),
			itoa(track.DisabledCount()),
			track.Mixer.VolumeDB.String(),
			formatPan(track.Mixer.Pan),
			dashIfEmpty(strings.Join(flags, ", ")),
		})
	}
	return renderTable([]column{
		numCol("#"), textCol("Track"), textCol("Kind"), numCol("Devices"),
		numCol("Off"), numCol("Volume"), numCol("Pan"), textCol("State"),
	}, rows)
}

func renderCategoryTable(counts map[liveset.Category]int) string {
	categories := make([]liveset.Category, 0, len(counts))
	for category := range counts {
		categories = append(categories, category)
	}
	slices.Sort(categories)
	rows := make([][]string, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, []string{humanLabel(string(category)), itoa(counts[category])})
	}
	return renderTable([]column{textCol("Category"), numCol("Devices")}, rows)
}

func renderDeviceTable(track liveset.Track) string {
	rows := make([][]string, 0, len(track.Devices))
	for i, device := range track.Devices {
		source := device.Tag
		if device.PluginName != "" {
			source = fmt.Sprintf("%s (%s)", device.PluginName, dashIfEmpty(device.PluginFormat))
		}
		rows = append(rows, []string{
			itoa(i),
			device.Name,
			humanLabel(string(device.Category)),
			source,
			yesNo(device.Enabled),
		})
	}
	return renderTable([]column{
		numCol("#"), textCol("Device"), textCol("Category"), textCol("Source"), textCol("On"),
	}, rows)
}
