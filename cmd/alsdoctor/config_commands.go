package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"alsdoctor/internal/config"
)

// skipConfig marks commands that must run without a loadable config.
var skipConfig = map[string]string{"skipConfigLoad": "true"}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the alsdoctor configuration",
	}
	cmd.AddCommand(
		newConfigInitCommand(),
		newConfigValidateCommand(ctx),
		newConfigShowCommand(ctx),
	)
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		target    string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an annotated sample configuration",
		Annotations: skipConfig,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTarget(target)
			if err != nil {
				return err
			}
			err = config.WriteSample(path, overwrite)
			if errors.Is(err, config.ErrExists) {
				return fmt.Errorf("%w (pass --overwrite to replace it)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if v := strings.TrimSpace(flagValue); v != "" {
		return config.ExpandPath(v)
	}
	return config.DefaultConfigPath()
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration and report problems",
		Annotations: skipConfig,
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, src, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			lines := []string{renderField("Config path", src.Path)}
			if !src.Exists {
				lines = append(lines, renderField("Note", "file not found, defaults in effect"))
			}
			lines = append(lines,
				renderField("History database", cfg.HistoryPath()),
				renderField("Log directory", cfg.Paths.LogDir),
			)
			printLines(out, lines...)
			printLines(out, renderStatusLine("Configuration", statusOK, "valid", shouldColorize(out)))
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, cfg)
			}
			return cfg.WriteTOML(cmd.OutOrStdout())
		},
	}
}
