package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/internal/provider"
	"github.com/openccdb/ccdb/pkg/ccdb"
)

// NewMktblCommand creates the mktbl command.
func NewMktblCommand() *cobra.Command {
	var (
		rows    int64
		comment string
	)

	cmd := &cobra.Command{
		Use:   "mktbl <path> [columns...]",
		Short: "Create a constants type table",
		Long: `Create a constants type table at the given path. Columns are given
as "name(type)" arguments; a bare "name" creates a double column.
Types: int, uint, long, ulong, double, bool, string.`,
		Example: `  # A one-row table with two double columns
  ccdb mktbl /CAL/ecal/gains -r 1 "x(double)" "y(double)"

  # Column type defaults to double
  ccdb mktbl /CAL/ecal/pedestals -r 24 offset sigma`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := parseColumnArgs(args[1:])
			if err != nil {
				return err
			}

			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			dirPath, name := ccdb.SplitPath(args[0])
			table, err := cmdCtx.Provider.CreateTypeTable(name, dirPath, rows, columns, comment)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created table %s with %d columns\n", table.Path, len(table.Columns))
			return nil
		},
	}

	cmd.Flags().Int64VarP(&rows, "rows", "r", 1, "number of rows")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "table comment")
	return cmd
}

// parseColumnArgs parses "name(type)" column declarations.
func parseColumnArgs(args []string) ([]provider.ColumnDef, error) {
	var columns []provider.ColumnDef
	for _, arg := range args {
		name := arg
		typeName := ""
		if i := strings.IndexByte(arg, '('); i >= 0 {
			if !strings.HasSuffix(arg, ")") {
				return nil, fmt.Errorf("column %q: want \"name(type)\": %w", arg, ccdb.ErrInvalidData)
			}
			name = arg[:i]
			typeName = arg[i+1 : len(arg)-1]
		}
		columns = append(columns, provider.ColumnDef{
			Name: name,
			Type: ccdb.ParseColumnType(typeName),
		})
	}
	return columns, nil
}
