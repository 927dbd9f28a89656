package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// makeGainsTable creates /test/gains with two double columns and
// returns its path.
func makeGainsTable(t *testing.T, p *Provider) string {
	t.Helper()
	dir := makeTestDir(t, p)
	_, err := p.CreateTypeTable("gains", dir, 2, []ColumnDef{
		{Name: "g0", Type: ccdb.ColumnDouble},
		{Name: "g1", Type: ccdb.ColumnDouble},
	}, "")
	require.NoError(t, err)
	return dir + "/gains"
}

func TestCreateAssignment(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	rows := [][]string{{"1.0", "2.0"}, {"3.0", "4.0"}}
	a, err := p.CreateAssignment(rows, tablePath, 100, 200, ccdb.DefaultVariationName, "initial")
	require.NoError(t, err)

	assert.NotZero(t, a.ID)
	assert.Equal(t, "initial", a.Comment)
	require.NotNil(t, a.RunRange)
	assert.Equal(t, int64(100), a.RunRange.Min)
	assert.Equal(t, int64(200), a.RunRange.Max)
	require.NotNil(t, a.Variation)
	assert.Equal(t, "default", a.Variation.Name)
	assert.Equal(t, rows, a.Data())
}

func TestCreateAssignmentValidation(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	_, err := p.CreateAssignment(nil, tablePath, 0, 100, "default", "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidData)

	_, err = p.CreateAssignment([][]string{{}}, tablePath, 0, 100, "default", "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidData)

	// Ragged data: second row is short.
	_, err = p.CreateAssignment([][]string{{"1", "2"}, {"3"}}, tablePath, 0, 100, "default", "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidData)

	// Wrong width for the declared columns.
	_, err = p.CreateAssignment([][]string{{"1", "2", "3"}}, tablePath, 0, 100, "default", "")
	assert.ErrorIs(t, err, ccdb.ErrInvalidData)

	_, err = p.CreateAssignment([][]string{{"1", "2"}}, tablePath, 0, 100, "missing", "")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)

	_, err = p.CreateAssignment([][]string{{"1", "2"}}, "/test/missing", 0, 100, "default", "")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)

	// Nothing must have been persisted by the failed attempts.
	history, err := p.GetAssignments(tablePath, 50, "", time.Time{}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGetAssignmentLatestWins(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	_, err := p.CreateAssignment([][]string{{"1", "1"}}, tablePath, 0, 1000, "default", "old")
	require.NoError(t, err)
	second, err := p.CreateAssignment([][]string{{"2", "2"}}, tablePath, 0, 1000, "default", "new")
	require.NoError(t, err)

	got, err := p.GetAssignment(500, tablePath, "default")
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, [][]string{{"2", "2"}}, got.Data())
}

func TestGetAssignmentRunContainment(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	early, err := p.CreateAssignment([][]string{{"1", "1"}}, tablePath, 0, 999, "default", "")
	require.NoError(t, err)
	late, err := p.CreateAssignment([][]string{{"2", "2"}}, tablePath, 1000, 1999, "default", "")
	require.NoError(t, err)

	for run, want := range map[int64]int64{0: early.ID, 999: early.ID, 1000: late.ID, 1999: late.ID} {
		got, err := p.GetAssignment(run, tablePath, "default")
		require.NoError(t, err, "run %d", run)
		assert.Equal(t, want, got.ID, "run %d", run)
	}

	_, err = p.GetAssignment(2000, tablePath, "default")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}

func TestGetAssignmentVariationFilter(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	_, err := p.CreateVariation("mc", "")
	require.NoError(t, err)
	_, err = p.CreateAssignment([][]string{{"1", "1"}}, tablePath, 0, 100, "default", "")
	require.NoError(t, err)
	mc, err := p.CreateAssignment([][]string{{"9", "9"}}, tablePath, 0, 100, "mc", "")
	require.NoError(t, err)

	got, err := p.GetAssignment(50, tablePath, "mc")
	require.NoError(t, err)
	assert.Equal(t, mc.ID, got.ID)

	_, err = p.GetAssignment(50, tablePath, "unknown")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}

func TestGetAssignments(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	_, err := p.CreateVariation("mc", "")
	require.NoError(t, err)

	var ids []int64
	for _, v := range []string{"default", "default", "mc"} {
		a, err := p.CreateAssignment([][]string{{"1", "2"}}, tablePath, 0, 100, v, "")
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	// Newest first, all variations.
	all, err := p.GetAssignments(tablePath, 50, "", time.Time{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)
	require.NotNil(t, all[0].Variation)
	assert.Equal(t, "mc", all[0].Variation.Name)

	onlyDefault, err := p.GetAssignments(tablePath, 50, "default", time.Time{}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, onlyDefault, 2)

	// take/startWith page the newest-first list.
	page, err := p.GetAssignments(tablePath, 50, "", time.Time{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[1], page[0].ID)

	// A cutoff in the past excludes everything.
	none, err := p.GetAssignments(tablePath, 50, "", time.Now().UTC().Add(-time.Hour), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	future, err := p.GetAssignments(tablePath, 50, "", time.Now().UTC().Add(time.Hour), 0, 0)
	require.NoError(t, err)
	assert.Len(t, future, 3)
}

func TestUpdateAssignment(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	a, err := p.CreateAssignment([][]string{{"1", "2"}}, tablePath, 0, 100, "default", "")
	require.NoError(t, err)

	a.Comment = "annotated"
	require.NoError(t, p.UpdateAssignment(a))

	got, err := p.GetAssignmentByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "annotated", got.Comment)
}

func TestDeleteAssignment(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	a, err := p.CreateAssignment([][]string{{"1", "2"}}, tablePath, 0, 100, "default", "")
	require.NoError(t, err)
	require.NoError(t, p.DeleteAssignment(a))

	_, err = p.GetAssignmentByID(a.ID)
	assert.ErrorIs(t, err, ccdb.ErrNotFound)

	_, err = p.GetAssignment(50, tablePath, "default")
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}

func TestGetAssignmentByID(t *testing.T) {
	p := newTestProvider(t)
	tablePath := makeGainsTable(t, p)

	a, err := p.CreateAssignment([][]string{{"1", "2"}}, tablePath, 7, 9, "default", "")
	require.NoError(t, err)

	got, err := p.GetAssignmentByID(a.ID)
	require.NoError(t, err)
	// Related objects are attached, type table included.
	require.NotNil(t, got.TypeTable)
	assert.Equal(t, "gains", got.TypeTable.Name)
	assert.Equal(t, [][]string{{"1", "2"}}, got.Data())
	assert.Equal(t, int64(7), got.RunRange.Min)

	_, err = p.GetAssignmentByID(99999)
	assert.ErrorIs(t, err, ccdb.ErrNotFound)
}
