package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/internal/convert"
)

// NewConvertCommand creates the convert command.
func NewConvertCommand() *cobra.Command {
	var (
		home     string
		calibDir string
		rulesDir string
		execute  bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a legacy calibration tree into the database",
		Long: `Walk an XML conversion rules tree and emit one ccdb command per
directory, table and data file it describes. By default the commands
are only printed; --execute runs them.

Paths default to the CCDB_HOME, JANA_CALIB_URL and JANA_CALIB_RULES
environment variables and can be overridden by flags.`,
		Example: `  # Rehearse the conversion, printing every command
  ccdb convert

  # Run it for real with explicit paths
  ccdb convert --calib-dir /data/calib --rules-dir /data/rules --execute`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := slog.Default()

			var c *convert.Converter
			if home == "" && calibDir == "" && rulesDir == "" {
				var err error
				c, err = convert.FromEnv(logger)
				if err != nil {
					return err
				}
			} else {
				c = convert.New(home, calibDir, rulesDir, logger)
			}
			c.Execute = execute

			verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
			c.Verbose = verbose

			return c.Run()
		},
	}

	cmd.Flags().StringVar(&home, "home", "", "CCDB installation directory (default: $CCDB_HOME)")
	cmd.Flags().StringVar(&calibDir, "calib-dir", "", "legacy calibration data root (default: $JANA_CALIB_URL)")
	cmd.Flags().StringVar(&rulesDir, "rules-dir", "", "conversion rules directory (default: $JANA_CALIB_RULES)")
	cmd.Flags().BoolVar(&execute, "execute", false, "run the emitted commands instead of printing them")
	return cmd
}
