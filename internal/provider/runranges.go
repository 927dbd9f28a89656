package provider

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// GetRunRange looks a run range up by its exact (min,max) bounds.
func (p *Provider) GetRunRange(minRun, maxRun int64) (*ccdb.RunRange, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	return p.queryOneRunRange(
		fmt.Sprintf("[%d-%d]", minRun, maxRun),
		`SELECT id, min_run, max_run, name, comment, created_at FROM run_ranges WHERE min_run = ? AND max_run = ?`,
		minRun, maxRun,
	)
}

// GetNamedRunRange looks a run range up by its name.
func (p *Provider) GetNamedRunRange(name string) (*ccdb.RunRange, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	return p.queryOneRunRange(
		name,
		`SELECT id, min_run, max_run, name, comment, created_at FROM run_ranges WHERE name = ?`,
		name,
	)
}

// GetOrCreateRunRange returns the run range with the given name (when
// set) or bounds, creating it on a miss. The check-then-act is
// serialized behind the provider mutex; a concurrent creator losing to
// the storage unique constraint falls back to re-reading the winner.
func (p *Provider) GetOrCreateRunRange(minRun, maxRun int64, name, comment string) (*ccdb.RunRange, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	if minRun > maxRun {
		return nil, fmt.Errorf("run range [%d-%d] has min above max: %w", minRun, maxRun, ccdb.ErrInvalidData)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	lookup := func() (*ccdb.RunRange, error) {
		if name != "" {
			return p.GetNamedRunRange(name)
		}
		return p.GetRunRange(minRun, maxRun)
	}

	rr, err := lookup()
	if err == nil {
		return rr, nil
	}

	if _, err := p.db.Exec(
		`INSERT INTO run_ranges (min_run, max_run, name, comment, created_at) VALUES (?, ?, ?, ?, ?)`,
		minRun, maxRun, name, nullIfEmpty(comment), time.Now().UTC(),
	); err != nil {
		// Lost a race against another session: the unique constraint
		// fired, so the range must be readable now.
		if isConstraintViolation(err) {
			return lookup()
		}
		return nil, fmt.Errorf("failed to create run range [%d-%d]: %w", minRun, maxRun, err)
	}
	return lookup()
}

// UpdateRunRange persists edits made to a run range previously
// returned by this provider.
func (p *Provider) UpdateRunRange(rr *ccdb.RunRange) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}
	if rr.Min > rr.Max {
		return fmt.Errorf("run range [%d-%d] has min above max: %w", rr.Min, rr.Max, ccdb.ErrInvalidData)
	}

	res, err := p.db.Exec(
		`UPDATE run_ranges SET min_run = ?, max_run = ?, name = ?, comment = ? WHERE id = ?`,
		rr.Min, rr.Max, rr.Name, nullIfEmpty(rr.Comment), rr.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run range %d: %w", rr.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run range id %d: %w", rr.ID, ccdb.ErrNotFound)
	}
	return nil
}

// DeleteRunRange deletes a run range. It fails with ccdb.ErrInUse
// while assignments still reference the range.
func (p *Provider) DeleteRunRange(rr *ccdb.RunRange) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}

	var dataCount int64
	if err := p.db.QueryRow(
		`SELECT COUNT(*) FROM assignments WHERE run_range_id = ?`, rr.ID,
	).Scan(&dataCount); err != nil {
		return fmt.Errorf("failed to count assignments for run range %d: %w", rr.ID, err)
	}
	if dataCount > 0 {
		return fmt.Errorf("run range [%d-%d] has %d assignments referencing it: %w", rr.Min, rr.Max, dataCount, ccdb.ErrInUse)
	}

	if _, err := p.db.Exec(`DELETE FROM run_ranges WHERE id = ?`, rr.ID); err != nil {
		return fmt.Errorf("failed to delete run range %d: %w", rr.ID, err)
	}
	return nil
}

// queryOneRunRange expects exactly one match: no rows is ErrNotFound,
// several rows means the store's uniqueness invariant is broken and is
// reported as ErrAmbiguous.
func (p *Provider) queryOneRunRange(what, query string, args ...any) (*ccdb.RunRange, error) {
	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query run range %s: %w", what, err)
	}
	defer rows.Close()

	var found []*ccdb.RunRange
	for rows.Next() {
		rr := &ccdb.RunRange{}
		var comment sql.NullString
		if err := rows.Scan(&rr.ID, &rr.Min, &rr.Max, &rr.Name, &comment, &rr.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run range: %w", err)
		}
		rr.Comment = stringOrEmpty(comment)
		found = append(found, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("run range %s: %w", what, ccdb.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("run range %s matched %d rows: %w", what, len(found), ccdb.ErrAmbiguous)
	}
}

// isConstraintViolation detects SQLite unique/constraint failures
// without depending on driver error types.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "constraint")
}
