// Package ccdb defines the entity model for the calibration constants
// database: directories, type tables, run ranges, variations, constant
// sets and assignments, plus the error kinds shared by all layers.
//
// The types here are plain data holders. They are populated by the
// persistence layer in internal/provider; derived fields such as
// Directory.Path and Directory.Children are only valid on objects
// returned by a connected provider.
package ccdb
