// Root command for the ladder CLI.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rankwise/ladder/internal/logutils"
	"github.com/rankwise/ladder/internal/paths"
	"github.com/rankwise/ladder/pkg/ladder"
)

// Exit codes shared by every command.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
	flagLogLevel  string
)

// Config values loaded from config.yaml by PersistentPreRunE so all
// subcommands can use them.
var (
	configDataDir  string
	configBackend  string
	configLogLevel string
)

// logCloser releases the log file; set by PersistentPreRunE.
var logCloser func()

var rootCmd = &cobra.Command{
	Use:     "ladder",
	Short:   "Ladder is a task list with a dense priority order",
	Version: ladder.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version needs no config, no logger, and no directories.
		if cmd.Name() == "version" {
			return nil
		}

		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configBackend = cfg.GetString(cfgKeyBackend)
		configLogLevel = cfg.GetString(cfgKeyLogLevel)

		return setupLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.ladder-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resequenceCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

// setupLogger wires the global zerolog logger to <data-dir>/ladder.log so
// stdout stays clean for command output.
func setupLogger() error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}

	level := flagLogLevel
	if level == "" {
		level = configLogLevel
	}

	logger, closer, err := logutils.New(level, filepath.Join(dataDir, "ladder.log"))
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	log.Logger = logger
	logCloser = closer
	return nil
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > LADDER_DATA_DIR env > default $(CWD)/.ladder-db.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the precedence:
// --config-dir flag > LADDER_CONFIG_DIR env > DefaultConfigDir().
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
