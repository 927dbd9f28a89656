package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command.
func NewSearchCommand() *cobra.Command {
	var (
		parent string
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "search <pattern>",
		Short: "Search directories and tables by name pattern",
		Long: `Search directories and type tables whose name matches the given
pattern. Patterns use shell-style wildcards: * matches any run of
characters, ? matches a single character.`,
		Example: `  # Everything containing "gain"
  ccdb search "*gain*"

  # Tables under a directory only
  ccdb search "ped*" --parent /CAL/ecal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dirs, err := cmdCtx.Provider.SearchDirectories(args[0], parent, limit, offset)
			if err != nil {
				return err
			}
			tables, err := cmdCtx.Provider.SearchTypeTables(args[0], parent, limit, offset)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Path", "Kind", "Comment"})
			for _, d := range dirs {
				t.AppendRow(table.Row{d.Path, "directory", d.Comment})
			}
			for _, tbl := range tables {
				t.AppendRow(table.Row{tbl.Path, "table", tbl.Comment})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "restrict the search to a directory")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	return cmd
}
