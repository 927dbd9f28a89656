// Package cli provides the ccdb command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/internal/cli/commands"
	"github.com/openccdb/ccdb/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ccdb",
		Short: "CCDB - Calibration Constants Database",
		Long: `ccdb manages a calibration constants database: a directory tree of
typed constant tables, versioned by run range and named variation.

The connection string is taken from --connection, the CCDB_CONNECTION
environment variable, or a ccdb.yaml config file, in that order of
precedence.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))

			if cfg.Verbose {
				if used := config.FileUsed(); used != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", used)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Calibration Constants Database
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ccdb.yaml)")
	rootCmd.PersistentFlags().StringP("connection", "C", "", "database connection string")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewMkdirCommand())
	rootCmd.AddCommand(commands.NewMktblCommand())
	rootCmd.AddCommand(commands.NewMkvarCommand())
	rootCmd.AddCommand(commands.NewAddCommand())
	rootCmd.AddCommand(commands.NewDumpCommand())
	rootCmd.AddCommand(commands.NewLsCommand())
	rootCmd.AddCommand(commands.NewSearchCommand())
	rootCmd.AddCommand(commands.NewRmCommand())
	rootCmd.AddCommand(commands.NewConvertCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
