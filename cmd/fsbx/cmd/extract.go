/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/fsbx/pkg/codec"
	"github.com/ssargent/fsbx/pkg/config"
	"github.com/ssargent/fsbx/pkg/extract"
	"github.com/ssargent/fsbx/pkg/volume"
)

func newExtractCmd() *cobra.Command {
	extractCmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract the records of a backup volume",
		Long: `Extract every record of a backup volume to <kind>/<name> below the
output directory.

Existing files are left alone unless --overwrite is given. Record names
are used as stored in the volume; use --strict-paths to refuse names that
would land outside the output directory.

Examples:
  fsbx extract backup.fsb
  fsbx extract -t file -c os -C /srv/restore backup.fsb
  fsbx extract --dry-run -v backup.fsb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			opts := extractOptions(cmd, a.cfg.Extract)
			verbose, _ := cmd.Flags().GetBool("verbose")
			kind, _ := cmd.Flags().GetString("type")
			category, _ := cmd.Flags().GetString("category")
			metricsFile := a.cfg.Metrics.TextfilePath
			if cmd.Flags().Changed("metrics-file") {
				metricsFile, _ = cmd.Flags().GetString("metrics-file")
			}

			runID := ksuid.New()
			logger := a.logger.With().Str("run_id", runID.String()).Str("volume", args[0]).Logger()

			m := a.container.GetMetricsFactory()()
			if metricsFile != "" {
				defer func() {
					if err := m.WriteTextfile(metricsFile); err != nil {
						logger.Error().Err(err).Str("path", metricsFile).Msg("failed to write metrics")
					}
				}()
			}

			vol, err := a.container.GetVolumeOpener()(args[0])
			if err != nil {
				m.RecordDecodeError(err)
				logger.Error().Err(err).Msg("failed to open volume")
				return err
			}
			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprint(out, vol.Header())
			}

			pipeline := &extract.Pipeline{
				Materializer: extract.NewMaterializer(opts.Options, logger),
				Filter:       volume.Filter{Kind: kind, Category: category},
				Workers:      opts.Workers,
				Metrics:      m,
				Logger:       logger,
			}
			if verbose {
				pipeline.OnRecord = func(rec codec.Record) {
					fmt.Fprintln(out, rec)
				}
			}

			logger.Info().Int("workers", opts.Workers).Bool("dry_run", opts.DryRun).Msg("extracting")
			summary, err := pipeline.Run(cmd.Context(), vol)
			if err != nil {
				if extract.IsFatalFormat(err) {
					logger.Error().Err(err).Int("records", summary.Records).Msg("volume is corrupt")
				} else {
					logger.Error().Err(err).Msg("extraction failed")
				}
				return err
			}

			fmt.Fprintln(out, formatSummary(summary))
			return nil
		},
	}

	extractCmd.Flags().BoolP("verbose", "v", false, "Print the volume header and every extracted record")
	extractCmd.Flags().StringP("type", "t", "", "Only extract records of this kind (file or table)")
	extractCmd.Flags().StringP("category", "c", "", "Only extract records of this category (os, plugin, config, ...)")
	extractCmd.Flags().BoolP("overwrite", "o", false, "Overwrite files that already exist")
	extractCmd.Flags().BoolP("dry-run", "n", false, "Decode and report without writing anything")
	extractCmd.Flags().StringP("directory", "C", "", "Output directory (default from config, else the working directory)")
	extractCmd.Flags().IntP("workers", "j", 0, "Number of parallel writers (default from config)")
	extractCmd.Flags().Bool("no-restore-metadata", false, "Leave mode, times and ownership of file records at their defaults")
	extractCmd.Flags().Bool("strict-paths", false, "Fail on record names or symlinks that lead outside the output directory")
	extractCmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file after the run")

	return extractCmd
}

type resolvedExtract struct {
	extract.Options
	Workers int
}

// extractOptions applies explicitly set flags over the configured defaults
func extractOptions(cmd *cobra.Command, defaults config.Extract) resolvedExtract {
	r := resolvedExtract{
		Options: extract.Options{
			Root:            defaults.OutputDir,
			Overwrite:       defaults.Overwrite,
			DryRun:          defaults.DryRun,
			SkipMetadata:    !defaults.RestoreMetadata,
			StrictPaths:     defaults.StrictPaths,
		},
		Workers: defaults.Workers,
	}

	flags := cmd.Flags()
	if flags.Changed("directory") {
		r.Root, _ = flags.GetString("directory")
	}
	if flags.Changed("overwrite") {
		r.Overwrite, _ = flags.GetBool("overwrite")
	}
	if flags.Changed("dry-run") {
		r.DryRun, _ = flags.GetBool("dry-run")
	}
	if flags.Changed("no-restore-metadata") {
		r.SkipMetadata, _ = flags.GetBool("no-restore-metadata")
	}
	if flags.Changed("strict-paths") {
		r.StrictPaths, _ = flags.GetBool("strict-paths")
	}
	if flags.Changed("workers") {
		r.Workers, _ = flags.GetInt("workers")
	}
	if r.Workers < 1 {
		r.Workers = 1
	}
	return r
}

func formatSummary(s extract.Summary) string {
	if s.DryRun > 0 && s.Written == 0 {
		return fmt.Sprintf("dry run: %d of %d records would be extracted", s.DryRun, s.Records)
	}
	return fmt.Sprintf("extracted %d of %d records (%s), %d skipped, %d filtered",
		s.Written, s.Records, humanize.Bytes(uint64(s.Bytes)), s.Skipped, s.Filtered)
}
