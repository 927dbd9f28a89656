package provider

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// GetDirectory returns the directory at the given absolute path.
func (p *Provider) GetDirectory(path string) (*ccdb.Directory, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}
	return p.dirs.get(path)
}

// GetRootDirectory returns the synthetic root node (path "/").
//
// The returned pointer stays valid across directory mutations only as
// a root reference; its Children are replaced on every cache rebuild.
func (p *Provider) GetRootDirectory() (*ccdb.Directory, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}
	return p.dirs.root, nil
}

// SearchDirectories finds directories whose name matches the glob
// pattern ('*' any run, '?' single character), optionally restricted
// to the children of parentPath. limit 0 selects all records, offset 0
// starts from the first.
func (p *Provider) SearchDirectories(pattern, parentPath string, limit, offset int) ([]*ccdb.Directory, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}

	query := `SELECT id FROM directories WHERE name LIKE ? ESCAPE '\'`
	args := []any{likePattern(pattern)}

	if parentPath != "" {
		parent, err := p.dirs.get(parentPath)
		if err != nil {
			return nil, err
		}
		query += ` AND parent_id = ?`
		args = append(args, parent.ID)
	}
	query += ` ORDER BY name` + limitClause(limit, offset)
	args = append(args, limitArgs(limit, offset)...)

	rows, err := p.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search directories: %w", err)
	}
	defer rows.Close()

	var found []*ccdb.Directory
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan directory id: %w", err)
		}
		// Hand out the cached node so callers see paths and children.
		if d, ok := p.dirs.byID[id]; ok {
			found = append(found, d)
		}
	}
	return found, rows.Err()
}

// CreateDirectory creates a directory under parentPath. The name may
// contain only letters, digits, underscore and dash. It fails with
// ccdb.ErrAlreadyExists if the resulting path is occupied.
func (p *Provider) CreateDirectory(name, parentPath, comment string) (*ccdb.Directory, error) {
	if err := p.ensureConnected(); err != nil {
		return nil, err
	}
	if !ValidateName(name) {
		return nil, fmt.Errorf("directory name %q: %w", name, ccdb.ErrInvalidName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return nil, err
	}
	parent, err := p.dirs.get(parentPath)
	if err != nil {
		return nil, err
	}
	newPath := ccdb.JoinPath(parent.Path, name)
	if _, ok := p.dirs.byPath[newPath]; ok {
		return nil, fmt.Errorf("directory %q: %w", newPath, ccdb.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	if _, err := p.db.Exec(
		`INSERT INTO directories (name, parent_id, comment, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, parent.ID, nullIfEmpty(comment), now, now,
	); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", newPath, err)
	}

	if err := p.reloadDirs(); err != nil {
		return nil, err
	}
	p.logger.Debug("created directory", "path", newPath)
	return p.dirs.get(newPath)
}

// UpdateDirectory persists in-place edits (name, comment, parent) made
// to a directory previously returned by this provider, then rebuilds
// the cache. All node pointers except the root become stale.
func (p *Provider) UpdateDirectory(dir *ccdb.Directory) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}
	if dir == nil || dir.IsRoot() {
		return fmt.Errorf("cannot update the root directory: %w", ccdb.ErrInvalidData)
	}
	if !ValidateName(dir.Name) {
		return fmt.Errorf("directory name %q: %w", dir.Name, ccdb.ErrInvalidName)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	res, err := p.db.Exec(
		`UPDATE directories SET name = ?, parent_id = ?, comment = ?, updated_at = ? WHERE id = ?`,
		dir.Name, dir.ParentID, nullIfEmpty(dir.Comment), time.Now().UTC(), dir.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update directory %d: %w", dir.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("directory id %d: %w", dir.ID, ccdb.ErrNotFound)
	}
	return p.reloadDirs()
}

// DeleteDirectory deletes the directory at path. It fails with
// ccdb.ErrNotEmpty while the directory still holds subdirectories or
// type tables.
func (p *Provider) DeleteDirectory(path string) error {
	if err := p.ensureConnected(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureDirs(); err != nil {
		return err
	}
	dir, err := p.dirs.get(path)
	if err != nil {
		return err
	}
	if dir.IsRoot() {
		return fmt.Errorf("cannot delete the root directory: %w", ccdb.ErrNotEmpty)
	}
	if len(dir.Children) > 0 {
		return fmt.Errorf("directory %q has %d subdirectories: %w", path, len(dir.Children), ccdb.ErrNotEmpty)
	}
	// Count tables live: the cached TableCount is only as fresh as the
	// last directory mutation, but tables come and go without touching
	// the directory tree.
	var tables int64
	if err := p.db.QueryRow(`SELECT COUNT(*) FROM type_tables WHERE parent_dir_id = ?`, dir.ID).Scan(&tables); err != nil {
		return fmt.Errorf("failed to count tables in %q: %w", path, err)
	}
	if tables > 0 {
		return fmt.Errorf("directory %q has %d tables: %w", path, tables, ccdb.ErrNotEmpty)
	}

	if _, err := p.db.Exec(`DELETE FROM directories WHERE id = ?`, dir.ID); err != nil {
		return fmt.Errorf("failed to delete directory %q: %w", path, err)
	}
	if err := p.reloadDirs(); err != nil {
		return err
	}
	p.logger.Debug("deleted directory", "path", path)
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func stringOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
