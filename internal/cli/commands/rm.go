package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRmCommand creates the rm command.
func NewRmCommand() *cobra.Command {
	var (
		rmDir        bool
		rmVariation  bool
		assignmentID int64
	)

	cmd := &cobra.Command{
		Use:   "rm <path-or-name>",
		Short: "Delete a directory, table, variation or assignment",
		Long: `Delete an object from the database. Without flags the argument is a
table path; --dir deletes a directory, --variation a variation, and
--assignment an assignment by id (no argument needed then).

Directories must be empty, and tables and variations must have no
assignments attached.`,
		Example: `  # Delete a table
  ccdb rm /CAL/ecal/gains

  # Delete an empty directory
  ccdb rm --dir /CAL/ecal

  # Delete an assignment by id
  ccdb rm --assignment 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if assignmentID == 0 && len(args) != 1 {
				return fmt.Errorf("rm needs a path or name argument")
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			switch {
			case assignmentID > 0:
				a, err := cmdCtx.Provider.GetAssignmentByID(assignmentID)
				if err != nil {
					return err
				}
				if err := cmdCtx.Provider.DeleteAssignment(a); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted assignment %d\n", assignmentID)

			case rmVariation:
				v, err := cmdCtx.Provider.GetVariation(args[0])
				if err != nil {
					return err
				}
				if err := cmdCtx.Provider.DeleteVariation(v); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted variation %s\n", args[0])

			case rmDir:
				if err := cmdCtx.Provider.DeleteDirectory(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted directory %s\n", args[0])

			default:
				t, err := cmdCtx.Provider.GetTypeTable(args[0])
				if err != nil {
					return err
				}
				if err := cmdCtx.Provider.DeleteTypeTable(t); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted table %s\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rmDir, "dir", false, "delete a directory")
	cmd.Flags().BoolVar(&rmVariation, "variation", false, "delete a variation")
	cmd.Flags().Int64Var(&assignmentID, "assignment", 0, "delete an assignment by id")
	return cmd
}
