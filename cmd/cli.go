package cmd

import (
	"os"

	"github.com/habedi/sbanken/config"
	"github.com/habedi/sbanken/db"
	"github.com/habedi/sbanken/pkg/clierr"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func Execute() {
	rootCmd := createRootCmd()
	configureFromFile()
	initializeDatabase()

	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for a command")

	err := rootCmd.Execute()
	closeDatabase()
	if err != nil {
		log.Error().Err(err).Msg("Command execution failed.")
		os.Exit(clierr.ExitCode(err))
	}
}

func createRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "sbanken",
		Short:        "A command-line client for the Sbanken banking API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		authCmd(),
		accountsCmd(),
		transactionsCmd(),
		transferCmd(),
		versionCmd(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

// configureFromFile applies the settings that must be known before any command runs:
// the database location and, when DEBUG_SBANKEN is unset, the configured log level.
func configureFromFile() {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Ignoring unreadable configuration")
		cfg = config.Config{}
	}

	if cfg.DBPath != "" {
		db.Path = cfg.DBPath
	} else if err := db.ConfigurePath(); err != nil {
		log.Warn().Err(err).Msg("Falling back to the default database path")
	}

	if cfg.LogLevel != "" && os.Getenv("DEBUG_SBANKEN") == "" {
		level, err := zerolog.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level in configuration")
			return
		}
		zerolog.SetGlobalLevel(level)
	}
}

func initializeDatabase() {
	if err := db.InitDB(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize database")
		os.Exit(1)
	}
}

func closeDatabase() {
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
		os.Exit(1)
	}
}
