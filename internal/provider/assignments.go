package provider

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

const assignmentFields = `a.id, a.constant_set_id, a.run_range_id, a.variation_id, a.comment, a.created_at`

// GetAssignment returns the current assignment for the given run,
// table and variation: among all assignments whose run range contains
// run, the one created last (greatest id) wins.
func (p *Provider) GetAssignment(run int64, tablePath, variationName string) (*ccdb.Assignment, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	table, err := p.getTypeTableLocked(tablePath)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	a := &ccdb.Assignment{}
	var comment sql.NullString
	err = p.db.QueryRow(
		`SELECT `+assignmentFields+`
		 FROM assignments a
		 JOIN constant_sets cs ON cs.id = a.constant_set_id
		 JOIN run_ranges rr ON rr.id = a.run_range_id
		 JOIN variations v ON v.id = a.variation_id
		 WHERE cs.type_table_id = ? AND v.name = ? AND rr.min_run <= ? AND rr.max_run >= ?
		 ORDER BY a.id DESC LIMIT 1`,
		table.ID, variationName, run, run,
	).Scan(&a.ID, &a.ConstantSetID, &a.RunRangeID, &a.VariationID, &comment, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment for table %q, run %d, variation %q: %w",
			tablePath, run, variationName, ccdb.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment for %q: %w", tablePath, err)
	}
	a.Comment = stringOrEmpty(comment)
	a.TypeTable = table
	if err := p.fillAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAssignment stores a new constant set for the table at
// tablePath and links it to the [minRun,maxRun] run range (created on
// demand, unnamed) and the named variation. rows must be a non-empty
// rectangular table whose width equals the declared column count.
func (p *Provider) CreateAssignment(rows [][]string, tablePath string, minRun, maxRun int64, variationName, comment string) (*ccdb.Assignment, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	table, err := p.getTypeTableLocked(tablePath)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("assignment data for %q is empty: %w", tablePath, ccdb.ErrInvalidData)
	}
	width := len(table.Columns)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, table %q declares %d columns: %w",
				i, len(row), tablePath, width, ccdb.ErrInvalidData)
		}
	}

	variation, err := p.GetVariation(variationName)
	if err != nil {
		return nil, err
	}
	runRange, err := p.GetOrCreateRunRange(minRun, maxRun, "", "")
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO constant_sets (type_table_id, vault, created_at) VALUES (?, ?, ?)`,
		table.ID, ccdb.EncodeVault(rows), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert constant set for %q: %w", tablePath, err)
	}
	setID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get constant set id: %w", err)
	}

	res, err = tx.Exec(
		`INSERT INTO assignments (constant_set_id, run_range_id, variation_id, comment, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		setID, runRange.ID, variation.ID, nullIfEmpty(comment), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert assignment for %q: %w", tablePath, err)
	}
	assignmentID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment for %q: %w", tablePath, err)
	}

	p.logger.Debug("created assignment",
		"table", tablePath, "runs", fmt.Sprintf("[%d-%d]", minRun, maxRun),
		"variation", variationName, "rows", len(rows))

	a := &ccdb.Assignment{
		ID:            assignmentID,
		ConstantSetID: setID,
		RunRangeID:    runRange.ID,
		VariationID:   variation.ID,
		Comment:       comment,
		CreatedAt:     now,
		TypeTable:     table,
		RunRange:      runRange,
		Variation:     variation,
		ConstantSet: &ccdb.ConstantSet{
			ID:          setID,
			TypeTableID: table.ID,
			Vault:       ccdb.EncodeVault(rows),
			CreatedAt:   now,
		},
	}
	return a, nil
}

// GetAssignments returns the assignment history for a table and run,
// newest first. variationName "" accepts all variations; a non-zero
// before keeps only assignments created before that time; take and
// startWith page the result (zero = unbounded / from the start).
func (p *Provider) GetAssignments(tablePath string, run int64, variationName string, before time.Time, take, startWith int) ([]*ccdb.Assignment, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	table, err := p.getTypeTableLocked(tablePath)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + assignmentFields + `
	          FROM assignments a
	          JOIN constant_sets cs ON cs.id = a.constant_set_id
	          JOIN run_ranges rr ON rr.id = a.run_range_id
	          JOIN variations v ON v.id = a.variation_id
	          WHERE cs.type_table_id = ? AND rr.min_run <= ? AND rr.max_run >= ?`
	args := []any{table.ID, run, run}

	if variationName != "" {
		query += ` AND v.name = ?`
		args = append(args, variationName)
	}
	if !before.IsZero() {
		query += ` AND a.created_at < ?`
		args = append(args, before.UTC())
	}
	query += ` ORDER BY a.id DESC` + limitClause(take, startWith)
	args = append(args, limitArgs(take, startWith)...)

	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for %q: %w", tablePath, err)
	}
	defer rows.Close()

	var assignments []*ccdb.Assignment
	for rows.Next() {
		a := &ccdb.Assignment{TypeTable: table}
		var comment sql.NullString
		if err := rows.Scan(&a.ID, &a.ConstantSetID, &a.RunRangeID, &a.VariationID, &comment, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.Comment = stringOrEmpty(comment)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range assignments {
		if err := p.fillAssignment(a); err != nil {
			return nil, err
		}
	}
	return assignments, nil
}

// UpdateAssignment persists comment edits made to an assignment.
// Assignment history is otherwise immutable.
func (p *Provider) UpdateAssignment(a *ccdb.Assignment) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}

	res, err := p.db.Exec(
		`UPDATE assignments SET comment = ? WHERE id = ?`,
		nullIfEmpty(a.Comment), a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update assignment %d: %w", a.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assignment id %d: %w", a.ID, ccdb.ErrNotFound)
	}
	return nil
}

// DeleteAssignment deletes an assignment and its constant set.
// Assignments are leaves, no referential guard applies.
func (p *Provider) DeleteAssignment(a *ccdb.Assignment) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM assignments WHERE id = ?`, a.ID); err != nil {
		return fmt.Errorf("failed to delete assignment %d: %w", a.ID, err)
	}
	if _, err := tx.Exec(`DELETE FROM constant_sets WHERE id = ?`, a.ConstantSetID); err != nil {
		return fmt.Errorf("failed to delete constant set %d: %w", a.ConstantSetID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment delete: %w", err)
	}
	return nil
}

// GetAssignmentByID fetches a single assignment by id, related objects
// attached.
func (p *Provider) GetAssignmentByID(id int64) (*ccdb.Assignment, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}

	a := &ccdb.Assignment{}
	var comment sql.NullString
	err := p.db.QueryRow(
		`SELECT `+assignmentFields+` FROM assignments a WHERE a.id = ?`, id,
	).Scan(&a.ID, &a.ConstantSetID, &a.RunRangeID, &a.VariationID, &comment, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment id %d: %w", id, ccdb.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment %d: %w", id, err)
	}
	a.Comment = stringOrEmpty(comment)
	if err := p.fillAssignment(a); err != nil {
		return nil, err
	}
	return a, nil
}

// fillAssignment attaches the constant set, run range and variation to
// an assignment, and the type table when not already present.
func (p *Provider) fillAssignment(a *ccdb.Assignment) error {
	cs := &ccdb.ConstantSet{}
	err := p.db.QueryRow(
		`SELECT id, type_table_id, vault, created_at FROM constant_sets WHERE id = ?`, a.ConstantSetID,
	).Scan(&cs.ID, &cs.TypeTableID, &cs.Vault, &cs.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load constant set %d: %w", a.ConstantSetID, err)
	}
	a.ConstantSet = cs

	rr := &ccdb.RunRange{}
	var rrComment sql.NullString
	err = p.db.QueryRow(
		`SELECT id, min_run, max_run, name, comment, created_at FROM run_ranges WHERE id = ?`, a.RunRangeID,
	).Scan(&rr.ID, &rr.Min, &rr.Max, &rr.Name, &rrComment, &rr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load run range %d: %w", a.RunRangeID, err)
	}
	rr.Comment = stringOrEmpty(rrComment)
	a.RunRange = rr

	v := &ccdb.Variation{}
	var vComment sql.NullString
	err = p.db.QueryRow(
		`SELECT id, name, comment, created_at FROM variations WHERE id = ?`, a.VariationID,
	).Scan(&v.ID, &v.Name, &vComment, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to load variation %d: %w", a.VariationID, err)
	}
	v.Comment = stringOrEmpty(vComment)
	a.Variation = v

	if a.TypeTable == nil {
		t, err := p.scanTypeTable(p.db.QueryRow(
			`SELECT `+typeTableFields+` FROM type_tables WHERE id = ?`, cs.TypeTableID,
		))
		if err != nil {
			return fmt.Errorf("failed to load type table %d: %w", cs.TypeTableID, err)
		}
		if err := p.loadColumns(t); err != nil {
			return err
		}
		a.TypeTable = t
	}

	return nil
}
