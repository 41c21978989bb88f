/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/fsbx/pkg/config"
	"github.com/ssargent/fsbx/pkg/di"
	"github.com/ssargent/fsbx/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container used by every command
func SetContainer(c *di.Container) {
	container = c
}

type appKey struct{}

// app is the per-invocation state prepared by the root command
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	container *di.Container
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey{}).(*app)
	if !ok {
		return nil, fmt.Errorf("command not initialized")
	}
	return a, nil
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fsbx",
		Short: "fsbx - ForeScout backup volume extractor",
		Long: `fsbx decodes ForeScout backup volumes and extracts the files and
tables they contain into <kind>/<name> below an output directory.

Every record is checked against its MD5 digest; extraction stops at the
first corrupt or malformed record.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if container == nil {
				return fmt.Errorf("dependency container not initialized")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging.Format, cfg.Logging.Level)
			if err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
				cfg:       cfg,
				logger:    logger,
				container: container,
			}))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default "+config.GetDefaultConfigPath()+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (plain, json)")

	rootCmd.AddCommand(
		newExtractCmd(),
		newListCmd(),
		newVerifyCmd(),
		newInfoCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// loadConfig reads the explicit --config file, else the default file when it
// exists, else built-in defaults; logging flags override the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path, _ := cmd.Flags().GetString("config")
	switch {
	case path != "":
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Logging.Format, _ = cmd.Flags().GetString("log-format")
	}
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
