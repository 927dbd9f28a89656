package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand() *cobra.Command {
	var (
		variation string
		run       int64
	)

	cmd := &cobra.Command{
		Use:   "dump <table-path>",
		Short: "Print the current constants of a table",
		Long: `Print the constant set currently assigned to a table for the given
run and variation: among all matching assignments the most recently
created one wins.`,
		Example: `  # Current default constants for run 0
  ccdb dump /CAL/ecal/gains

  # Constants of the mc variation for run 1500
  ccdb dump /CAL/ecal/gains --variation mc -r 1500`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			a, err := cmdCtx.Provider.GetAssignment(run, args[0], variation)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Assignment %d, runs [%d-%d], variation %s, created %s\n",
				a.ID, a.RunRange.Min, a.RunRange.Max, a.Variation.Name,
				a.CreatedAt.Format("2006-01-02 15:04:05"))

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			header := table.Row{}
			for _, c := range a.TypeTable.Columns {
				header = append(header, fmt.Sprintf("%s (%s)", c.Name, c.Type))
			}
			t.AppendHeader(header)
			for _, row := range a.Data() {
				r := table.Row{}
				for _, cell := range row {
					r = append(r, cell)
				}
				t.AppendRow(r)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&variation, "variation", ccdb.DefaultVariationName, "variation name")
	cmd.Flags().Int64VarP(&run, "run", "r", 0, "run number")
	return cmd
}
