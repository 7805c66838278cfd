package store

import (
	"fmt"
)

// New creates a Store based on the backend name.
//
// Supported backends:
//
//	"csv"    - comma separated file at path (default, library.csv)
//	"sqlite" - SQLite database at path (library.db)
//	"memory" - In-memory (ephemeral, for testing)
//
// An empty path selects the backend's default, see DefaultPath.
func New(backend, path string) (Store, error) {
	if path == "" {
		path = DefaultPath(backend)
	}
	switch backend {
	case "csv", "":
		return NewCSVFileStore(path), nil
	case "sqlite":
		return NewSqliteStore(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: csv, sqlite, memory)", backend)
	}
}

// DefaultPath returns the storage path a backend uses when none is given.
func DefaultPath(backend string) string {
	switch backend {
	case "sqlite":
		return DefaultSqlitePath
	case "memory":
		return ""
	default:
		return DefaultCSVPath
	}
}
