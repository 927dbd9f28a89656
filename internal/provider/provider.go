// Package provider implements the CCDB data-access layer on top of a
// SQLite database: connection lifecycle, the directory cache, and the
// query/mutation surface for directories, type tables, run ranges,
// variations and assignments.
package provider

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/openccdb/ccdb/pkg/ccdb"
)

// ConnectionEnvVar is consulted when Connect is called with an empty
// connection string.
const ConnectionEnvVar = "CCDB_CONNECTION"

var nameRegex = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// Provider is the CCDB data provider. It owns a single database session
// and a process-local directory cache. A Provider is safe for use from
// multiple goroutines: the cache and check-then-act creation paths are
// serialized by an internal mutex, individual queries go through
// database/sql's own pooling.
type Provider struct {
	db      *sql.DB
	connStr string
	logger  *slog.Logger

	// mu guards the directory cache and get-or-create races.
	mu   sync.Mutex
	dirs *dirCache
}

// New creates a disconnected Provider. A nil logger falls back to
// slog.Default().
func New(logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		logger: logger,
		dirs:   newDirCache(),
	}
}

// Connect opens the database session. An empty connection string falls
// back to the CCDB_CONNECTION environment variable; if neither is
// present Connect fails with ccdb.ErrNoConnectionString. Connect also
// brings the schema up to date.
func (p *Provider) Connect(connectionString string) error {
	if connectionString == "" {
		connectionString = os.Getenv(ConnectionEnvVar)
	}
	if connectionString == "" {
		return fmt.Errorf("connect: %s is not set: %w", ConnectionEnvVar, ccdb.ErrNoConnectionString)
	}

	dsn, err := parseConnectionString(connectionString)
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return err
	}

	// Reconnect: drop the previous session once the new one is up.
	if p.db != nil {
		p.db.Close()
	}
	p.db = db
	p.connStr = connectionString

	// New session, the directory tree must be re-read.
	p.mu.Lock()
	p.dirs.invalidate()
	p.mu.Unlock()

	p.logger.Debug("connected", "connection", connectionString)
	return nil
}

// Disconnect closes the database session. Disconnecting a provider that
// is not connected is a no-op.
func (p *Provider) Disconnect() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	p.mu.Lock()
	p.dirs.invalidate()
	p.mu.Unlock()
	return err
}

// IsConnected reports whether the provider has an open session.
func (p *Provider) IsConnected() bool { return p.db != nil }

// ConnectionString returns the connection string used on the last
// successful Connect.
func (p *Provider) ConnectionString() string { return p.connStr }

func (p *Provider) ensureConnected() error {
	if p.db == nil {
		return fmt.Errorf("operation requires an open connection: %w", ccdb.ErrNotConnected)
	}
	return nil
}

// parseConnectionString maps a CCDB connection string to a SQLite DSN.
// Accepted forms: "sqlite:///abs/path", "sqlite://relative/path", a
// plain file path, or ":memory:".
func parseConnectionString(s string) (string, error) {
	path := s
	switch {
	case strings.HasPrefix(s, "sqlite:///"):
		path = "/" + strings.TrimPrefix(s, "sqlite:///")
	case strings.HasPrefix(s, "sqlite://"):
		path = strings.TrimPrefix(s, "sqlite://")
	case strings.Contains(s, "://"):
		return "", fmt.Errorf("unsupported connection string %q, only sqlite:// is supported", s)
	}
	// modernc pragma syntax; referential actions in the schema depend
	// on foreign keys being enforced on every connection.
	return path + "?_pragma=foreign_keys(1)", nil
}

// ValidateName reports whether a directory, table or column name is
// acceptable: letters, digits, underscore and dash only.
func ValidateName(name string) bool { return nameRegex.MatchString(name) }

// connectWithDB wires an existing database handle into the provider.
// Used by tests to inject mock connections.
func (p *Provider) connectWithDB(db *sql.DB, connStr string) {
	p.db = db
	p.connStr = connStr
	p.dirs.invalidate()
}
