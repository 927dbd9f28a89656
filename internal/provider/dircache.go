package provider

import (
	"database/sql"
	"fmt"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// dirCache is the in-memory directory tree: every stored directory row
// indexed by id and by full path, hanging off a synthetic root node.
//
// The cache is rebuilt wholesale: lazily on first access and eagerly
// after every directory mutation. Rebuilding discards all previously
// handed out Directory pointers except the root, so the provider never
// retains node references across mutations. Callers must hold
// Provider.mu around every method.
type dirCache struct {
	root   *ccdb.Directory
	byID   map[int64]*ccdb.Directory
	byPath map[string]*ccdb.Directory
	loaded bool
}

func newDirCache() *dirCache {
	c := &dirCache{}
	c.invalidate()
	return c
}

// invalidate discards the cached tree. The next ensureLoaded rebuilds it.
func (c *dirCache) invalidate() {
	c.root = &ccdb.Directory{ID: ccdb.RootDirectoryID, Name: "", Path: "/"}
	c.byID = map[int64]*ccdb.Directory{}
	c.byPath = map[string]*ccdb.Directory{c.root.Path: c.root}
	c.loaded = false
}

// ensureLoaded rebuilds the tree from loader if the cache is stale.
func (c *dirCache) ensureLoaded(load func() ([]*ccdb.Directory, error)) error {
	if c.loaded {
		return nil
	}
	rows, err := load()
	if err != nil {
		return err
	}
	c.rebuild(rows)
	return nil
}

// rebuild structures flat directory rows into the tree. It runs in two
// O(n) passes so that rows may arrive in any order: first attach every
// node to its parent, then walk from the root computing paths.
func (c *dirCache) rebuild(rows []*ccdb.Directory) {
	c.root = &ccdb.Directory{ID: ccdb.RootDirectoryID, Name: "", Path: "/"}
	c.byID = map[int64]*ccdb.Directory{}
	c.byPath = map[string]*ccdb.Directory{c.root.Path: c.root}

	for _, d := range rows {
		d.Children = nil
		c.byID[d.ID] = d
	}

	for _, d := range rows {
		parent := c.root
		if d.ParentID > ccdb.RootDirectoryID {
			if p, ok := c.byID[d.ParentID]; ok {
				parent = p
			}
		}
		d.Parent = parent
		parent.Children = append(parent.Children, d)
	}

	// Depth-first from the root; at this point every node is attached.
	stack := []*ccdb.Directory{c.root}
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range d.Children {
			child.Path = ccdb.JoinPath(d.Path, child.Name)
			c.byPath[child.Path] = child
			stack = append(stack, child)
		}
	}

	c.loaded = true
}

// get returns the node at path or ccdb.ErrNotFound.
func (c *dirCache) get(path string) (*ccdb.Directory, error) {
	if d, ok := c.byPath[path]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("directory %q: %w", path, ccdb.ErrNotFound)
}

// --- provider side -----------------------------------------------------

// loadDirectoryRows reads all directory rows including per-directory
// table counts.
func (p *Provider) loadDirectoryRows() ([]*ccdb.Directory, error) {
	rows, err := p.db.Query(
		`SELECT d.id, d.name, d.parent_id, d.comment, d.created_at, d.updated_at,
		        (SELECT COUNT(*) FROM type_tables t WHERE t.parent_dir_id = d.id)
		 FROM directories d`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load directories: %w", err)
	}
	defer rows.Close()

	var dirs []*ccdb.Directory
	for rows.Next() {
		d := &ccdb.Directory{}
		var comment sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &d.ParentID, &comment, &d.CreatedAt, &d.UpdatedAt, &d.TableCount); err != nil {
			return nil, fmt.Errorf("failed to scan directory: %w", err)
		}
		if comment.Valid {
			d.Comment = comment.String
		}
		dirs = append(dirs, d)
	}
	return dirs, rows.Err()
}

// ensureDirs brings the cache up to date. Callers must hold p.mu.
func (p *Provider) ensureDirs() error {
	return p.dirs.ensureLoaded(p.loadDirectoryRows)
}

// reloadDirs discards and rebuilds the cache after a directory
// mutation. Callers must hold p.mu.
func (p *Provider) reloadDirs() error {
	p.dirs.invalidate()
	return p.ensureDirs()
}
