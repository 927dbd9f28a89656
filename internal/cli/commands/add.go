package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/internal/dataio"
	"github.com/openccdb/ccdb/pkg/ccdb"
)

// NewAddCommand creates the add command.
func NewAddCommand() *cobra.Command {
	var (
		variation string
		runRange  string
		nameValue bool
		comment   string
	)

	cmd := &cobra.Command{
		Use:   "add <table-path> <data-file>",
		Short: "Add a constant set to a table",
		Long: `Add a constant set for a table, valid for a run range and variation.
The data file holds one table row per line, cells separated by
whitespace; with --name-value it holds "name value" pairs forming a
single row.`,
		Example: `  # Add constants for all runs to the default variation
  ccdb add /CAL/ecal/gains gains.txt

  # Add constants for runs 1000-1999 to the mc variation
  ccdb add /CAL/ecal/gains --variation mc -r 1000-1999 gains.txt`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minRun, maxRun, err := parseRunRange(runRange)
			if err != nil {
				return err
			}

			var rows [][]string
			if nameValue {
				nv, err := dataio.ReadNameValueFile(args[1])
				if err != nil {
					return err
				}
				rows = nv.Rows()
			} else {
				rows, err = dataio.ReadDataFile(args[1])
				if err != nil {
					return err
				}
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := cmdCtx.Provider.CreateAssignment(rows, args[0], minRun, maxRun, variation, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created assignment %d for %s runs [%d-%d] variation %s\n",
				a.ID, args[0], a.RunRange.Min, a.RunRange.Max, a.Variation.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&variation, "variation", ccdb.DefaultVariationName, "variation name")
	cmd.Flags().StringVarP(&runRange, "runs", "r", "0-", "run range as min-max ('0-' for all runs)")
	cmd.Flags().BoolVar(&nameValue, "name-value", false, "data file holds name-value pairs")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "assignment comment")
	return cmd
}
