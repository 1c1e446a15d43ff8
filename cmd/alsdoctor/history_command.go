package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"alsdoctor/internal/config"
	"alsdoctor/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <file|folder>",
		Short: "Show recorded diagnoses for a Live Set or project folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := absPath(args[0])
			document := isDocumentPath(cfg, target)

			var entries []history.Entry
			err = ctx.withHistory(func(store *history.Store) error {
				var err error
				if document {
					entries, err = store.ForDocument(cmd.Context(), target)
				} else {
					entries, err = store.List(cmd.Context(), target)
				}
				return err
			})
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No history recorded for %s\n", target)
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				first := entry.RecordedAt.Local().Format("2006-01-02 15:04")
				if !document {
					first = filepath.Base(entry.Path)
				}
				rows = append(rows, []string{
					first,
					itoa(entry.HealthScore),
					entry.Grade,
					fmt.Sprintf("%d/%d/%d", entry.Critical, entry.Warnings, entry.Suggestions),
					fmt.Sprintf("%d (%d off)", entry.Devices, entry.Disabled),
					shortRunID(entry.RunID),
				})
			}
			firstHeader := "Recorded"
			if !document {
				firstHeader = "Document"
			}
			fmt.Fprintln(out, renderTable([]column{
				textCol(firstHeader), numCol("Score"), textCol("Grade"),
				numCol("C/W/S"), numCol("Devices"), textCol("Run"),
			}, rows))
			return nil
		},
	}
}

// isDocumentPath reports whether target names a single Live Set. Paths that
// no longer exist are judged by extension so history of deleted sets stays
// reachable.
func isDocumentPath(cfg *config.Config, target string) bool {
	if info, err := os.Stat(target); err == nil {
		return !info.IsDir()
	}
	ext := strings.ToLower(filepath.Ext(target))
	for _, candidate := range cfg.Scan.Extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
