package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewMkvarCommand creates the mkvar command.
func NewMkvarCommand() *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "mkvar <name>",
		Short: "Create a variation",
		Example: `  # Create a Monte Carlo variation
  ccdb mkvar mc -c "Monte Carlo calibration set"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			v, err := cmdCtx.Provider.CreateVariation(args[0], comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created variation %s\n", v.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&comment, "comment", "c", "", "variation comment")
	return cmd
}
