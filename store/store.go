// Package store defines the library store interface and its backends.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/stevemurr/bookshelf/book"
)

// Store is the interface that all library backends implement.
//
// Every operation works on the full collection: it is loaded from the
// backing storage on each call and never cached between calls. Mutations
// load, change the collection in memory and write it back with ReplaceAll.
type Store interface {
	// EnsureExists creates the backing storage with an empty collection if it
	// does not exist yet. Existing content is never touched. created reports
	// whether anything was created.
	EnsureExists() (created bool, err error)

	// Load returns every book in storage order. It fails with an *IOError if
	// the storage is missing; call EnsureExists first.
	Load() ([]book.Book, error)

	// ReplaceAll replaces the whole collection with books, in order.
	ReplaceAll(books []book.Book) error

	// Exists reports whether a book with the given title is stored.
	Exists(title string) (bool, error)

	// Find returns the first book with the given title. ok is false if there
	// is none.
	Find(title string) (b book.Book, ok bool, err error)

	// Add appends b. It fails with a *DuplicateError if the title is taken.
	Add(b book.Book) error

	// Remove deletes every book whose title or ISBN equals key and returns
	// how many were removed. Removing an unknown key is not an error.
	Remove(key string) (removed int, err error)

	// Close releases resources held by the backend.
	Close() error
}

// primitives is what a backend has to provide; ops derives the rest.
type primitives interface {
	Load() ([]book.Book, error)
	ReplaceAll(books []book.Book) error
}

// ops implements the derived operations on top of Load and ReplaceAll so
// that all backends share the same matching rules.
type ops struct {
	p       primitives
	writeMu sync.Mutex
}

func (o *ops) Exists(title string) (bool, error) {
	_, ok, err := o.Find(title)
	return ok, err
}

func (o *ops) Find(title string) (book.Book, bool, error) {
	books, err := o.p.Load()
	if err != nil {
		return book.Book{}, false, err
	}
	for _, b := range books {
		if book.SameTitle(b.Title, title) {
			return b, true, nil
		}
	}
	return book.Book{}, false, nil
}

func (o *ops) Add(b book.Book) error {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	b = book.Normalize(b)
	books, err := o.p.Load()
	if err != nil {
		return err
	}
	for _, existing := range books {
		if book.SameTitle(existing.Title, b.Title) {
			return &DuplicateError{Title: b.Title}
		}
	}
	if err := o.p.ReplaceAll(append(books, b)); err != nil {
		return fmt.Errorf("add %q: %w", b.Title, err)
	}
	slog.Debug("book added", "title", b.Title, "count", len(books)+1)
	return nil
}

func (o *ops) Remove(key string) (int, error) {
	o.writeMu.Lock()
	defer o.writeMu.Unlock()
	books, err := o.p.Load()
	if err != nil {
		return 0, err
	}
	kept := make([]book.Book, 0, len(books))
	for _, b := range books {
		if !book.Matches(b, key) {
			kept = append(kept, b)
		}
	}
	if err := o.p.ReplaceAll(kept); err != nil {
		return 0, fmt.Errorf("remove %q: %w", key, err)
	}
	removed := len(books) - len(kept)
	slog.Debug("books removed", "key", key, "removed", removed)
	return removed, nil
}

// checkBooks rejects books that no backend could store and read back.
func checkBooks(books []book.Book) error {
	for i, b := range books {
		if err := book.CheckFields(b); err != nil {
			return fmt.Errorf("book %d (%q): %w", i+1, b.Title, err)
		}
	}
	return nil
}

// Copy replaces the content of dst with the content of src and returns the
// number of books copied.
func Copy(dst, src Store) (int, error) {
	books, err := src.Load()
	if err != nil {
		return 0, err
	}
	if err := dst.ReplaceAll(books); err != nil {
		return 0, err
	}
	return len(books), nil
}

var (
	_ Store = (*CSVFileStore)(nil)
	_ Store = (*SqliteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
