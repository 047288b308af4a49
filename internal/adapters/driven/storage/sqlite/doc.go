// Package sqlite provides a local, versioned implementation of driven.ObjectStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It stands in for the remote Workspace
// service when the tool runs without a KBase deployment.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// Workspaces are created on first save and named "local_<id>". Every save writes a
// new row to object_versions; references without a version resolve to the latest.
//
// # Data Location
//
// By default, the database is stored at ~/.treeutils/data/objects.db
//
// # Thread Safety
//
// All operations are thread-safe. Saves run in a single transaction, so a failing
// batch leaves no partial writes.
package sqlite
