package ccdb

import (
	"path"
	"time"
)

// RootDirectoryID is the sentinel parent id for top-level directories.
// The root directory itself is synthetic and never stored.
const RootDirectoryID int64 = 0

// Directory is one node of the calibration directory tree.
type Directory struct {
	ID       int64
	Name     string
	Comment  string
	ParentID int64

	CreatedAt time.Time
	UpdatedAt time.Time

	// Derived fields, maintained by the provider's directory cache.
	Path     string
	Parent   *Directory   `json:"-"`
	Children []*Directory `json:"-"`

	// TableCount is the number of type tables directly inside this
	// directory, filled during cache rebuild.
	TableCount int64
}

// IsRoot reports whether d is the synthetic root node.
func (d *Directory) IsRoot() bool { return d.ID == RootDirectoryID }

// TypeTable is the schema definition of one constants table: a fixed
// number of rows over an ordered list of typed columns.
type TypeTable struct {
	ID          int64
	Name        string
	ParentDirID int64
	RowsCount   int64
	Comment     string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Path is the absolute path of the table, derived when the table
	// is loaded through a directory lookup.
	Path string

	Columns []*TypeTableColumn
}

// ColumnNames returns the column names in declaration order.
func (t *TypeTable) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// TypeTableColumn is a single typed column of a TypeTable.
type TypeTableColumn struct {
	ID          int64
	TypeTableID int64
	Name        string
	Type        ColumnType
	Order       int
}

// RunRange is an inclusive [Min,Max] interval of experiment run numbers.
type RunRange struct {
	ID      int64
	Min     int64
	Max     int64
	Name    string
	Comment string

	CreatedAt time.Time
}

// Contains reports whether run lies inside the range.
func (r *RunRange) Contains(run int64) bool { return r.Min <= run && run <= r.Max }

// Variation is a named universe of calibration values, e.g. "default"
// or "mc".
type Variation struct {
	ID      int64
	Name    string
	Comment string

	CreatedAt time.Time
}

// DefaultVariationName is the variation every database starts with.
const DefaultVariationName = "default"

// ConstantSet is the stored data payload for one type table. The vault
// holds all cells row-major, separated by VaultSeparator.
type ConstantSet struct {
	ID          int64
	TypeTableID int64
	Vault       string

	CreatedAt time.Time
}

// Assignment ties a ConstantSet to a (type table, run range, variation)
// tuple. Ascending id means ascending recency; the "current" data for a
// run is the matching assignment with the greatest id.
type Assignment struct {
	ID            int64
	ConstantSetID int64
	RunRangeID    int64
	VariationID   int64
	Comment       string

	CreatedAt time.Time

	// Related objects, attached when the assignment is fetched.
	ConstantSet *ConstantSet
	TypeTable   *TypeTable
	RunRange    *RunRange
	Variation   *Variation
}

// Data decodes the assignment's vault into rows of cells using the
// attached type table's column count. It returns nil if either the
// constant set or the type table is not attached.
func (a *Assignment) Data() [][]string {
	if a.ConstantSet == nil || a.TypeTable == nil || len(a.TypeTable.Columns) == 0 {
		return nil
	}
	return DecodeVault(a.ConstantSet.Vault, len(a.TypeTable.Columns))
}

// JoinPath joins path elements with "/" keeping CCDB path semantics
// (absolute, forward slashes, no trailing slash except root).
func JoinPath(elem ...string) string {
	return path.Join(elem...)
}

// SplitPath splits an absolute table or directory path into its parent
// directory path and leaf name.
func SplitPath(p string) (parent, name string) {
	return path.Dir(p), path.Base(p)
}
