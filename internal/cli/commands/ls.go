package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewLsCommand creates the ls command.
func NewLsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List subdirectories and tables of a directory",
		Example: `  # List the root directory
  ccdb ls

  # List a subdirectory
  ccdb ls /CAL/ecal`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dir, err := cmdCtx.Provider.GetDirectory(path)
			if err != nil {
				return err
			}
			tables, err := cmdCtx.Provider.GetTypeTables(path)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Kind", "Comment"})
			for _, child := range dir.Children {
				t.AppendRow(table.Row{child.Name + "/", "directory", child.Comment})
			}
			for _, tbl := range tables {
				t.AppendRow(table.Row{tbl.Name, "table", tbl.Comment})
			}
			t.Render()
			return nil
		},
	}
	return cmd
}
