package store

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/stevemurr/bookshelf/book"
)

// DefaultSqlitePath is the database used by the sqlite backend when no path
// is configured.
const DefaultSqlitePath = "library.db"

// SqliteStore keeps the library in a single SQLite table:
//
//	books(position, title, author, isbn, published_year)  PRIMARY KEY (position)
//
// position preserves insertion order. ReplaceAll runs in one transaction.
type SqliteStore struct {
	ops
	path string
	db   *sql.DB
}

func NewSqliteStore(dbPath string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, &IOError{Op: "open", Path: dbPath, Err: err}
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, &IOError{Op: "open", Path: dbPath, Err: err}
	}
	s := &SqliteStore{path: dbPath, db: db}
	s.ops.p = s
	return s, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) tableExists() (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'books'",
	).Scan(&n)
	if err != nil {
		return false, &IOError{Op: "query", Path: s.path, Err: err}
	}
	return n > 0, nil
}

func (s *SqliteStore) EnsureExists() (bool, error) {
	exists, err := s.tableExists()
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS books (
		position INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT NOT NULL,
		published_year TEXT NOT NULL
	)`); err != nil {
		return false, &IOError{Op: "create", Path: s.path, Err: err}
	}
	slog.Debug("library created", "path", s.path)
	return true, nil
}

func (s *SqliteStore) Load() ([]book.Book, error) {
	exists, err := s.tableExists()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &IOError{Op: "open", Path: s.path, Err: fs.ErrNotExist}
	}
	rows, err := s.db.Query("SELECT title, author, isbn, published_year FROM books ORDER BY position")
	if err != nil {
		return nil, &IOError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()
	books := []book.Book{}
	for rows.Next() {
		var b book.Book
		if err := rows.Scan(&b.Title, &b.Author, &b.ISBN, &b.PublishedYear); err != nil {
			return nil, &IOError{Op: "read", Path: s.path, Err: err}
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	slog.Debug("library loaded", "path", s.path, "count", len(books))
	return books, nil
}

func (s *SqliteStore) ReplaceAll(books []book.Book) error {
	if err := checkBooks(books); err != nil {
		return err
	}
	if _, err := s.EnsureExists(); err != nil {
		return err
	}
	if err := s.replaceAll(books); err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	slog.Debug("library written", "path", s.path, "count", len(books))
	return nil
}

func (s *SqliteStore) replaceAll(books []book.Book) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if _, err := tx.Exec("DELETE FROM books"); err != nil {
		return err
	}
	stmt, err := tx.Prepare(
		"INSERT INTO books (position, title, author, isbn, published_year) VALUES (?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, b := range books {
		if _, err := stmt.Exec(i, b.Title, b.Author, b.ISBN, b.PublishedYear); err != nil {
			return fmt.Errorf("insert %q: %w", b.Title, err)
		}
	}
	return tx.Commit()
}
