// Package main provides the offline filename repair pass for a corpus output directory
package main

import (
	"fmt"
	"os"

	"github.com/Caia-Tech/caia-legal-corpus/internal/renamer"
	"github.com/Caia-Tech/caia-legal-corpus/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename-filenames",
		Short: "Normalize artifact filenames in a corpus output directory",
		Long: `rename-filenames re-applies title repair to the names under <out>/files and
<out>/texts. Without --apply it only reports what it would rename.

Example:
  rename-filenames --out out
  rename-filenames --out out --apply --skip-on-collision`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRename,
	}

	flags := cmd.Flags()
	flags.String("out", "out", "Output directory containing files/ and texts/")
	flags.Bool("apply", false, "Apply changes (otherwise dry-run)")
	flags.Bool("skip-on-collision", false, "Skip a rename when the target already exists")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	return cmd
}

func runRename(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString("out")
	apply, _ := cmd.Flags().GetBool("apply")
	skip, _ := cmd.Flags().GetBool("skip-on-collision")
	level, _ := cmd.Flags().GetString("log-level")

	logConfig := logging.DefaultLogConfig()
	logConfig.Level = level
	if err := logging.SetupLogger(logConfig); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	report, err := renamer.New(renamer.Options{DryRun: !apply, SkipOnCollision: skip}).Run(out)
	if err != nil {
		log.Error().Err(err).Str("out", out).Msg("Rename pass stopped")
	}
	if report == nil {
		return nil
	}

	event := log.Info().
		Int("skipped", report.Skipped).
		Int("failed", report.Failed)
	if apply {
		event.Int("renamed", report.Applied).Msg("Done")
	} else {
		event.Int("would_rename", report.Pending).Msg("Done (dry-run)")
	}
	return nil
}
