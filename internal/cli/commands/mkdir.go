package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// NewMkdirCommand creates the mkdir command.
func NewMkdirCommand() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Example: `  # Create a top level directory
  ccdb mkdir /CAL

  # Create a subdirectory with a comment
  ccdb mkdir /CAL/ecal -c "Electromagnetic calorimeter"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			parent, name := ccdb.SplitPath(args[0])
			dir, err := cmdCtx.Provider.CreateDirectory(name, parent, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created directory %s\n", dir.Path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "c", "", "directory comment")
	return cmd
}
