package store

import (
	"io/fs"
	"sync"

	"github.com/stevemurr/bookshelf/book"
)

// MemoryStore keeps the library in memory. Data is lost on exit.
type MemoryStore struct {
	ops
	mu      sync.RWMutex
	created bool
	books   []book.Book
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{}
	m.ops.p = m
	return m
}

func (m *MemoryStore) EnsureExists() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.created {
		return false, nil
	}
	m.created = true
	m.books = []book.Book{}
	return true, nil
}

func (m *MemoryStore) Load() ([]book.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.created {
		return nil, &IOError{Op: "open", Path: "memory", Err: fs.ErrNotExist}
	}
	return append([]book.Book{}, m.books...), nil
}

func (m *MemoryStore) ReplaceAll(books []book.Book) error {
	if err := checkBooks(books); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = true
	m.books = append([]book.Book{}, books...)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
