package provider

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// GetVariation looks a variation up by name.
func (p *Provider) GetVariation(name string) (*ccdb.Variation, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}

	v := &ccdb.Variation{}
	var comment sql.NullString
	err := p.db.QueryRow(
		`SELECT id, name, comment, created_at FROM variations WHERE name = ?`, name,
	).Scan(&v.ID, &v.Name, &comment, &v.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("variation %q: %w", name, ccdb.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get variation %q: %w", name, err)
	}
	v.Comment = stringOrEmpty(comment)
	return v, nil
}

// GetVariations returns the variations that have at least one
// assignment for the given type table. A non-negative run restricts
// the result to variations whose run range contains that run; run < 0
// disables the run filter entirely. Note that run 0 is a real run
// number, not "all runs".
func (p *Provider) GetVariations(tablePath string, run int64, limit, offset int) ([]*ccdb.Variation, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	table, err := p.getTypeTableLocked(tablePath)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	query := `SELECT DISTINCT v.id, v.name, v.comment, v.created_at
	          FROM variations v
	          JOIN assignments a ON a.variation_id = v.id
	          JOIN constant_sets cs ON cs.id = a.constant_set_id
	          JOIN run_ranges rr ON rr.id = a.run_range_id
	          WHERE cs.type_table_id = ?`
	args := []any{table.ID}

	if run >= 0 {
		query += ` AND rr.min_run <= ? AND rr.max_run >= ?`
		args = append(args, run, run)
	}
	query += ` ORDER BY v.id` + limitClause(limit, offset)
	args = append(args, limitArgs(limit, offset)...)

	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query variations for %q: %w", tablePath, err)
	}
	defer rows.Close()

	var variations []*ccdb.Variation
	for rows.Next() {
		v := &ccdb.Variation{}
		var comment sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &comment, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan variation: %w", err)
		}
		v.Comment = stringOrEmpty(comment)
		variations = append(variations, v)
	}
	return variations, rows.Err()
}

// CreateVariation creates a named variation. It fails with
// ccdb.ErrAlreadyExists if the name is taken.
func (p *Provider) CreateVariation(name, comment string) (*ccdb.Variation, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	if !ValidateName(name) {
		return nil, fmt.Errorf("variation name %q: %w", name, ccdb.ErrInvalidName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var exists int64
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM variations WHERE name = ?`, name).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check variation %q: %w", name, err)
	}
	if exists > 0 {
		return nil, fmt.Errorf("variation %q: %w", name, ccdb.ErrAlreadyExists)
	}

	if _, err := p.db.Exec(
		`INSERT INTO variations (name, comment, created_at) VALUES (?, ?, ?)`,
		name, nullIfEmpty(comment), time.Now().UTC(),
	); err != nil {
		return nil, fmt.Errorf("failed to create variation %q: %w", name, err)
	}
	p.logger.Debug("created variation", "name", name)
	return p.GetVariation(name)
}

// UpdateVariation persists edits made to a variation previously
// returned by this provider.
func (p *Provider) UpdateVariation(v *ccdb.Variation) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}
	if !ValidateName(v.Name) {
		return fmt.Errorf("variation name %q: %w", v.Name, ccdb.ErrInvalidName)
	}

	res, err := p.db.Exec(
		`UPDATE variations SET name = ?, comment = ? WHERE id = ?`,
		v.Name, nullIfEmpty(v.Comment), v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update variation %d: %w", v.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("variation id %d: %w", v.ID, ccdb.ErrNotFound)
	}
	return nil
}

// DeleteVariation deletes a variation. It fails with ccdb.ErrInUse
// while assignments still reference it.
func (p *Provider) DeleteVariation(v *ccdb.Variation) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}

	var dataCount int64
	if err := p.db.QueryRow(
		`SELECT COUNT(*) FROM assignments WHERE variation_id = ?`, v.ID,
	).Scan(&dataCount); err != nil {
		return fmt.Errorf("failed to count assignments for variation %q: %w", v.Name, err)
	}
	if dataCount > 0 {
		return fmt.Errorf("variation %q has %d assignments referencing it: %w", v.Name, dataCount, ccdb.ErrInUse)
	}

	if _, err := p.db.Exec(`DELETE FROM variations WHERE id = ?`, v.ID); err != nil {
		return fmt.Errorf("failed to delete variation %q: %w", v.Name, err)
	}
	return nil
}
