package ccdb

import "errors"

// Error kinds returned by the provider. Callers are expected to match
// them with errors.Is; every returned error wraps one of these with
// the offending path, name or id.
var (
	// ErrNoConnectionString means no connection string was passed and
	// CCDB_CONNECTION is not set.
	ErrNoConnectionString = errors.New("no connection string")

	// ErrNotConnected means an operation was attempted on a provider
	// without an open connection.
	ErrNotConnected = errors.New("not connected")

	// ErrNotFound means a directory, table, run range, variation or
	// assignment does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists means a directory path or variation name is
	// already occupied.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidName means a directory, table or column name contains
	// characters outside [A-Za-z0-9_-].
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidData means assignment data is empty, ragged, or does
	// not match the declared column count.
	ErrInvalidData = errors.New("invalid data")

	// ErrNotEmpty means a directory still contains subdirectories or
	// type tables.
	ErrNotEmpty = errors.New("not empty")

	// ErrInUse means an entity is still referenced by constant sets or
	// assignments and cannot be deleted.
	ErrInUse = errors.New("in use")

	// ErrAmbiguous means a lookup that must match exactly one row
	// matched several, i.e. a store uniqueness invariant is violated.
	ErrAmbiguous = errors.New("ambiguous match")
)
