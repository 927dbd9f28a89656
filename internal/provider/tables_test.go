package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// makeTestDir creates /test and returns its path.
func makeTestDir(t *testing.T, p *Provider) string {
	t.Helper()
	_, err := p.CreateDirectory("test", "/", "")
	require.NoError(t, err)
	return "/test"
}

func TestCreateTypeTable(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	columns := []ColumnDef{
		{Name: "channel", Type: ccdb.ColumnInt},
		{Name: "gain", Type: ccdb.ColumnDouble},
		{Name: "label", Type: ccdb.ColumnString},
	}
	tbl, err := p.CreateTypeTable("gains", dir, 24, columns, "per channel gains")
	require.NoError(t, err)

	assert.Equal(t, "/test/gains", tbl.Path)
	assert.Equal(t, int64(24), tbl.RowsCount)
	assert.Equal(t, "per channel gains", tbl.Comment)
	require.Len(t, tbl.Columns, 3)
	// Declaration order is preserved.
	assert.Equal(t, []string{"channel", "gain", "label"}, tbl.ColumnNames())
	assert.Equal(t, ccdb.ColumnInt, tbl.Columns[0].Type)
	assert.Equal(t, ccdb.ColumnString, tbl.Columns[2].Type)
}

func TestCreateTypeTableDefaultsToDouble(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	tbl, err := p.CreateTypeTable("t", dir, 1, []ColumnDef{{Name: "x"}}, "")
	require.NoError(t, err)
	assert.Equal(t, ccdb.ColumnDouble, tbl.Columns[0].Type)
}

func TestCreateTypeTableValidation(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)
	col := []ColumnDef{{Name: "x"}}

	_, err := p.CreateTypeTable("bad name", dir, 1, col, "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidName)

	_, err = p.CreateTypeTable("t", dir, 0, col, "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidData)

	_, err = p.CreateTypeTable("t", dir, 1, nil, "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidData)

	_, err = p.CreateTypeTable("t", dir, 1, []ColumnDef{{Name: "no/slash"}}, "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidName)

	_, err = p.CreateTypeTable("t", "/missing", 1, col, "")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}

func TestCreateTypeTableAlreadyExists(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)
	col := []ColumnDef{{Name: "x"}}

	_, err := p.CreateTypeTable("t", dir, 1, col, "")
	require.NoError(t, err)

	_, err = p.CreateTypeTable("t", dir, 1, col, "")
	assert.ErrorIs(t, err, ccdb.ErrAlreadyExists)
}

func TestGetTypeTableNotFound(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	_, err := p.GetTypeTable(dir + "/missing")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)

	_, err = p.GetTypeTable("/missingdir/table")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}

func TestGetTypeTables(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)
	col := []ColumnDef{{Name: "x"}}

	for _, name := range []string{"b", "a", "c"} {
		_, err := p.CreateTypeTable(name, dir, 1, col, "")
		require.NoError(t, err)
	}
	// A table elsewhere must not leak into the listing.
	_, err := p.CreateDirectory("other", "/", "")
	require.NoError(t, err)
	_, err = p.CreateTypeTable("d", "/other", 1, col, "")
	require.NoError(t, err)

	tables, err := p.GetTypeTables(dir)
	require.NoError(t, err)
	require.Len(t, tables, 3)
	assert.Equal(t, "a", tables[0].Name)
	assert.Equal(t, "/test/a", tables[0].Path)
	assert.Equal(t, "b", tables[1].Name)
	assert.Equal(t, "c", tables[2].Name)

	n, err := p.CountTypeTables(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSearchTypeTables(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)
	col := []ColumnDef{{Name: "x"}}

	for _, name := range []string{"gains", "gains_mc", "pedestals"} {
		_, err := p.CreateTypeTable(name, dir, 1, col, "")
		require.NoError(t, err)
	}

	found, err := p.SearchTypeTables("gains*", "", 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "/test/gains", found[0].Path)
	assert.NotEmpty(t, found[0].Columns)

	limited, err := p.SearchTypeTables("*", dir, 2, 0)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestUpdateTypeTable(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	tbl, err := p.CreateTypeTable("t", dir, 1, []ColumnDef{{Name: "x"}}, "")
	require.NoError(t, err)

	tbl.Name = "renamed"
	tbl.RowsCount = 5
	tbl.Comment = "changed"
	require.NoError(t, p.UpdateTypeTable(tbl))

	got, err := p.GetTypeTable(dir + "/renamed")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.RowsCount)
	assert.Equal(t, "changed", got.Comment)
}

func TestDeleteTypeTable(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	tbl, err := p.CreateTypeTable("t", dir, 1, []ColumnDef{{Name: "x"}}, "")
	require.NoError(t, err)
	require.NoError(t, p.DeleteTypeTable(tbl))

	_, err = p.GetTypeTable(dir + "/t")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}

func TestDeleteTypeTableCascadesColumns(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	tbl, err := p.CreateTypeTable("t", dir, 1, []ColumnDef{{Name: "a"}, {Name: "b"}}, "")
	require.NoError(t, err)
	require.NoError(t, p.DeleteTypeTable(tbl))

	var n int64
	require.NoError(t, p.db.QueryRow(
		`SELECT COUNT(*) FROM type_table_columns WHERE type_table_id = ?`, tbl.ID,
	).Scan(&n))
	assert.Zero(t, n, "column rows must go with their table")
}

func TestDeleteTypeTableInUse(t *testing.T) {
	p := newTestProvider(t)
	dir := makeTestDir(t, p)

	tbl, err := p.CreateTypeTable("t", dir, 1, []ColumnDef{{Name: "x"}}, "")
	require.NoError(t, err)
	a, err := p.CreateAssignment([][]string{{"1.0"}}, dir+"/t", 0, 100, ccdb.DefaultVariationName, "")
	require.NoError(t, err)

	assert.ErrorIs(t, p.DeleteTypeTable(tbl), ccdb.ErrInUse)

	// Deleting the data first unblocks the table.
	require.NoError(t, p.DeleteAssignment(a))
	require.NoError(t, p.DeleteTypeTable(tbl))
}
