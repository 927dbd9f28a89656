package provider

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// ColumnDef declares one column during table creation. Order of the
// supplied slice becomes the column order.
type ColumnDef struct {
	Name string
	Type ccdb.ColumnType
}

const typeTableFields = `id, name, parent_dir_id, rows_count, comment, created_at, updated_at`

// GetTypeTable returns the type table at the given absolute path,
// columns included.
func (p *Provider) GetTypeTable(path string) (*ccdb.TypeTable, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.getTypeTableLocked(path)
}

func (p *Provider) getTypeTableLocked(path string) (*ccdb.TypeTable, error) {
	if err := p.ensureDirs(); err != nil {
		return nil, err
	}
	dirPath, name := ccdb.SplitPath(path)
	dir, err := p.dirs.get(dirPath)
	if err != nil {
		return nil, err
	}

	t, err := p.scanTypeTable(p.db.QueryRow(
		`SELECT `+typeTableFields+` FROM type_tables WHERE parent_dir_id = ? AND name = ?`,
		dir.ID, name,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("type table %q: %w", path, ccdb.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get type table %q: %w", path, err)
	}
	t.Path = ccdb.JoinPath(dir.Path, t.Name)
	if err := p.loadColumns(t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTypeTables lists the tables directly inside dirPath, non-recursive.
func (p *Provider) GetTypeTables(dirPath string) ([]*ccdb.TypeTable, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}
	dir, err := p.dirs.get(dirPath)
	if err != nil {
		return nil, err
	}
	return p.queryTypeTables(dir,
		`SELECT `+typeTableFields+` FROM type_tables WHERE parent_dir_id = ? ORDER BY name`,
		dir.ID)
}

// SearchTypeTables finds tables by glob pattern, optionally scoped to
// one directory. limit/offset follow the zero-is-unbounded convention.
func (p *Provider) SearchTypeTables(pattern, dirPath string, limit, offset int) ([]*ccdb.TypeTable, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}

	query := `SELECT ` + typeTableFields + ` FROM type_tables WHERE name LIKE ? ESCAPE '\'`
	args := []any{likePattern(pattern)}

	var dir *ccdb.Directory
	if dirPath != "" {
		var err error
		dir, err = p.dirs.get(dirPath)
		if err != nil {
			return nil, err
		}
		query += ` AND parent_dir_id = ?`
		args = append(args, dir.ID)
	}
	query += ` ORDER BY name` + limitClause(limit, offset)
	args = append(args, limitArgs(limit, offset)...)

	return p.queryTypeTables(dir, query, args...)
}

// CountTypeTables returns the number of tables directly inside dirPath.
func (p *Provider) CountTypeTables(dirPath string) (int64, error) {
	if err := p.ensureConnected(); err != nil {
		return 0, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return 0, err
	}
	dir, err := p.dirs.get(dirPath)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM type_tables WHERE parent_dir_id = ?`, dir.ID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count type tables in %q: %w", dirPath, err)
	}
	return n, nil
}

// CreateTypeTable creates a constants type table with its columns in a
// single transaction. Column order follows the order of columns.
func (p *Provider) CreateTypeTable(name, dirPath string, rowsCount int64, columns []ColumnDef, comment string) (*ccdb.TypeTable, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	if !ValidateName(name) {
		return nil, fmt.Errorf("table name %q: %w", name, ccdb.ErrInvalidName)
	}
	if rowsCount < 1 {
		return nil, fmt.Errorf("rows count %d must be positive: %w", rowsCount, ccdb.ErrInvalidData)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q needs at least one column: %w", name, ccdb.ErrInvalidData)
	}
	for _, c := range columns {
		if !ValidateName(c.Name) {
			return nil, fmt.Errorf("column name %q: %w", c.Name, ccdb.ErrInvalidName)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}
	dir, err := p.dirs.get(dirPath)
	if err != nil {
		return nil, err
	}

	var exists int64
	if err := p.db.QueryRow(
		`SELECT COUNT(*) FROM type_tables WHERE parent_dir_id = ? AND name = ?`, dir.ID, name,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check table %q: %w", name, err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("type table %q: %w", ccdb.JoinPath(dir.Path, name), ccdb.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	tx, err := p.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO type_tables (name, parent_dir_id, rows_count, comment, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		name, dir.ID, rowsCount, nullIfEmpty(comment), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert type table %q: %w", name, err)
	}
	tableID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get table id: %w", err)
	}

	for i, c := range columns {
		colType := c.Type
		if colType == "" {
			colType = ccdb.ColumnDouble
		}
		if _, err := tx.Exec(
			`INSERT INTO type_table_columns (type_table_id, name, column_type, ord) VALUES (?, ?, ?, ?)`,
			tableID, c.Name, string(colType), i,
		); err != nil {
			return nil, fmt.Errorf("failed to insert column %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit type table %q: %w", name, err)
	}

	p.logger.Debug("created type table", "path", ccdb.JoinPath(dir.Path, name), "columns", len(columns))
	return p.getTypeTableLocked(ccdb.JoinPath(dir.Path, name))
}

// UpdateTypeTable persists edits (name, comment, rows count) made to a
// table previously returned by this provider. Columns are immutable.
func (p *Provider) UpdateTypeTable(t *ccdb.TypeTable) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}
	if !ValidateName(t.Name) {
		return fmt.Errorf("table name %q: %w", t.Name, ccdb.ErrInvalidName)
	}

	res, err := p.db.Exec(
		`UPDATE type_tables SET name = ?, rows_count = ?, comment = ?, updated_at = ? WHERE id = ?`,
		t.Name, t.RowsCount, nullIfEmpty(t.Comment), time.Now().UTC(), t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update type table %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("type table id %d: %w", t.ID, ccdb.ErrNotFound)
	}
	return nil
}

// DeleteTypeTable deletes a type table. It fails with ccdb.ErrInUse
// while constant sets still reference the table; the data must be
// deleted first.
func (p *Provider) DeleteTypeTable(t *ccdb.TypeTable) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}

	var dataCount int64
	if err := p.db.QueryRow(
		`SELECT COUNT(*) FROM constant_sets WHERE type_table_id = ?`, t.ID,
	).Scan(&dataCount); err != nil {
		return fmt.Errorf("failed to count data for table %d: %w", t.ID, err)
	}
	if dataCount > 0 {
		return fmt.Errorf("type table %q has %d constant sets referencing it: %w", t.Name, dataCount, ccdb.ErrInUse)
	}

	if _, err := p.db.Exec(`DELETE FROM type_tables WHERE id = ?`, t.ID); err != nil {
		return fmt.Errorf("failed to delete type table %d: %w", t.ID, err)
	}
	p.logger.Debug("deleted type table", "name", t.Name)
	return nil
}

// --- helpers -----------------------------------------------------------

type rowScanner interface{ Scan(dest ...any) error }

func (p *Provider) scanTypeTable(row rowScanner) (*ccdb.TypeTable, error) {
	t := &ccdb.TypeTable{}
	var comment sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.ParentDirID, &t.RowsCount, &comment, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Comment = stringOrEmpty(comment)
	return t, nil
}

// queryTypeTables runs a type table query and loads columns for each
// result. dir may be nil for unscoped searches; paths are then derived
// from the cached parent directory.
func (p *Provider) queryTypeTables(dir *ccdb.Directory, query string, args ...any) ([]*ccdb.TypeTable, error) {
	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query type tables: %w", err)
	}
	defer rows.Close()

	var tables []*ccdb.TypeTable
	for rows.Next() {
		t, err := p.scanTypeTable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan type table: %w", err)
		}
		parent := dir
		if parent == nil {
			parent = p.dirs.byID[t.ParentDirID]
		}
		if parent != nil {
			t.Path = ccdb.JoinPath(parent.Path, t.Name)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range tables {
		if err := p.loadColumns(t); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

func (p *Provider) loadColumns(t *ccdb.TypeTable) error {
	rows, err := p.db.Query(
		`SELECT id, type_table_id, name, column_type, ord
		 FROM type_table_columns WHERE type_table_id = ? ORDER BY ord`,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load columns for table %d: %w", t.ID, err)
	}
	defer rows.Close()

	t.Columns = nil
	for rows.Next() {
		c := &ccdb.TypeTableColumn{}
		var colType string
		if err := rows.Scan(&c.ID, &c.TypeTableID, &c.Name, &colType, &c.Order); err != nil {
			return fmt.Errorf("failed to scan column: %w", err)
		}
		c.Type = ccdb.ColumnType(colType)
		t.Columns = append(t.Columns, c)
	}
	return rows.Err()
}
