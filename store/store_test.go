package store_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stevemurr/bookshelf/book"
	"github.com/stevemurr/bookshelf/store"
)

var (
	dune    = book.Book{Title: "Dune", Author: "Herbert", ISBN: "123", PublishedYear: "1965"}
	hobbit  = book.Book{Title: "The Hobbit", Author: "Tolkien", ISBN: "456", PublishedYear: "1937"}
	neuro   = book.Book{Title: "Neuromancer", Author: "Gibson", ISBN: "789", PublishedYear: "1984"}
	unicode = book.Book{Title: "L'Étranger, \"roman\"", Author: "Camus\nAlbert", ISBN: "", PublishedYear: ""}
)

func mustLoad(t *testing.T, s store.Store) []book.Book {
	t.Helper()
	books, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	return books
}

func assertBooks(t *testing.T, s store.Store, want []book.Book) {
	t.Helper()
	got := mustLoad(t, s)
	if len(got) == 0 && len(want) == 0 {
		return
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

// runStoreTests runs a common test suite against any Store implementation.
// s must not have been initialised yet.
func runStoreTests(t *testing.T, s store.Store) {
	t.Helper()

	t.Run("Load before EnsureExists", func(t *testing.T) {
		_, err := s.Load()
		if !errors.Is(err, store.ErrIO) {
			t.Fatalf("expected ErrIO, got %v", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected ErrNotExist, got %v", err)
		}
	})

	t.Run("EnsureExists creates", func(t *testing.T) {
		created, err := s.EnsureExists()
		if err != nil {
			t.Fatal(err)
		}
		if !created {
			t.Fatal("expected created=true")
		}
		books := mustLoad(t, s)
		if books == nil || len(books) != 0 {
			t.Fatalf("expected empty non-nil collection, got %#v", books)
		}
	})

	t.Run("Add and Find", func(t *testing.T) {
		if err := s.Add(dune); err != nil {
			t.Fatal(err)
		}
		got, ok, err := s.Find("Dune")
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Fatal("expected to find Dune")
		}
		if got != dune {
			t.Fatalf("expected %+v, got %+v", dune, got)
		}
		assertBooks(t, s, []book.Book{dune})
	})

	t.Run("EnsureExists keeps content", func(t *testing.T) {
		created, err := s.EnsureExists()
		if err != nil {
			t.Fatal(err)
		}
		if created {
			t.Fatal("expected created=false")
		}
		assertBooks(t, s, []book.Book{dune})
	})

	t.Run("Add duplicate", func(t *testing.T) {
		err := s.Add(book.Book{Title: " Dune ", Author: "someone else"})
		if !errors.Is(err, store.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		var dup *store.DuplicateError
		if !errors.As(err, &dup) || dup.Title != "Dune" {
			t.Fatalf("expected DuplicateError for Dune, got %#v", err)
		}
		assertBooks(t, s, []book.Book{dune})
	})

	t.Run("Add trims fields", func(t *testing.T) {
		if err := s.Add(book.Book{Title: " The Hobbit\n", Author: "Tolkien ", ISBN: "456", PublishedYear: "1937\n"}); err != nil {
			t.Fatal(err)
		}
		if err := s.Add(neuro); err != nil {
			t.Fatal(err)
		}
		assertBooks(t, s, []book.Book{dune, hobbit, neuro})
	})

	t.Run("Exists and Find agree", func(t *testing.T) {
		for _, title := range []string{"Dune", " Dune\n", "dune", "The Hobbit", "Neuromancer", "Missing", "", "123"} {
			exists, err := s.Exists(title)
			if err != nil {
				t.Fatal(err)
			}
			_, found, err := s.Find(title)
			if err != nil {
				t.Fatal(err)
			}
			if exists != found {
				t.Fatalf("title %q: Exists=%v Find=%v", title, exists, found)
			}
		}
	})

	t.Run("Find missing", func(t *testing.T) {
		_, ok, err := s.Find("Missing")
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Fatal("expected not found")
		}
	})

	t.Run("Remove unknown key", func(t *testing.T) {
		n, err := s.Remove("Foundation")
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Fatalf("expected 0 removed, got %d", n)
		}
		assertBooks(t, s, []book.Book{dune, hobbit, neuro})
	})

	t.Run("Remove by ISBN", func(t *testing.T) {
		n, err := s.Remove("456")
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("expected 1 removed, got %d", n)
		}
		assertBooks(t, s, []book.Book{dune, neuro})
	})

	t.Run("Remove by title", func(t *testing.T) {
		n, err := s.Remove("Neuromancer\n")
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Fatalf("expected 1 removed, got %d", n)
		}
		assertBooks(t, s, []book.Book{dune})
	})

	t.Run("ReplaceAll round trip", func(t *testing.T) {
		want := []book.Book{neuro, unicode, hobbit, dune, {}}
		if err := s.ReplaceAll(want); err != nil {
			t.Fatal(err)
		}
		assertBooks(t, s, want)
	})

	t.Run("ReplaceAll rejects carriage returns", func(t *testing.T) {
		if err := s.ReplaceAll([]book.Book{dune}); err != nil {
			t.Fatal(err)
		}
		bad := book.Book{Title: "Notes", Author: "line one\r\nline two"}
		if err := s.ReplaceAll([]book.Book{hobbit, bad}); !errors.Is(err, book.ErrCarriageReturn) {
			t.Fatalf("expected ErrCarriageReturn, got %v", err)
		}
		if err := s.Add(bad); !errors.Is(err, book.ErrCarriageReturn) {
			t.Fatalf("Add: expected ErrCarriageReturn, got %v", err)
		}
		assertBooks(t, s, []book.Book{dune})
	})

	t.Run("ReplaceAll keeps duplicates", func(t *testing.T) {
		want := []book.Book{dune, dune}
		if err := s.ReplaceAll(want); err != nil {
			t.Fatal(err)
		}
		assertBooks(t, s, want)
		n, err := s.Remove("Dune")
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Fatalf("expected 2 removed, got %d", n)
		}
	})

	t.Run("ReplaceAll empty", func(t *testing.T) {
		if err := s.ReplaceAll(nil); err != nil {
			t.Fatal(err)
		}
		assertBooks(t, s, nil)
	})

	t.Run("Scenario", func(t *testing.T) {
		assertBooks(t, s, nil)
		if err := s.Add(dune); err != nil {
			t.Fatal(err)
		}
		assertBooks(t, s, []book.Book{dune})
		if err := s.Add(dune); !errors.Is(err, store.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
		assertBooks(t, s, []book.Book{dune})
		if _, err := s.Remove("123"); err != nil {
			t.Fatal(err)
		}
		assertBooks(t, s, nil)
	})
}

func TestMemoryStore(t *testing.T) {
	s := store.NewMemoryStore()
	runStoreTests(t, s)
}

func TestCSVFileStore(t *testing.T) {
	s := store.NewCSVFileStore(filepath.Join(t.TempDir(), "library.csv"))
	runStoreTests(t, s)
}

func TestSqliteStore(t *testing.T) {
	s, err := store.NewSqliteStore(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	runStoreTests(t, s)
}

func TestFactory(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		backend string
		want    any
	}{
		{"csv", &store.CSVFileStore{}},
		{"sqlite", &store.SqliteStore{}},
		{"memory", &store.MemoryStore{}},
		{"", &store.CSVFileStore{}},
	}
	for _, tc := range tests {
		t.Run(tc.backend, func(t *testing.T) {
			s, err := store.New(tc.backend, filepath.Join(dir, tc.backend+".lib"))
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if reflect.TypeOf(s) != reflect.TypeOf(tc.want) {
				t.Fatalf("expected %T, got %T", tc.want, s)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		_, err := store.New("redis", dir)
		if err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})

	t.Run("default path", func(t *testing.T) {
		s, err := store.New("csv", "")
		if err != nil {
			t.Fatal(err)
		}
		if got := s.(*store.CSVFileStore).Path(); got != store.DefaultCSVPath {
			t.Fatalf("expected %s, got %s", store.DefaultCSVPath, got)
		}
		if got := store.DefaultPath("sqlite"); got != store.DefaultSqlitePath {
			t.Fatalf("expected %s, got %s", store.DefaultSqlitePath, got)
		}
	})
}

func TestCopy(t *testing.T) {
	src := store.NewCSVFileStore(filepath.Join(t.TempDir(), "library.csv"))
	if err := src.ReplaceAll([]book.Book{dune, hobbit}); err != nil {
		t.Fatal(err)
	}
	dst, err := store.NewSqliteStore(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer dst.Close()

	n, err := store.Copy(dst, src)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 copied, got %d", n)
	}
	assertBooks(t, dst, []book.Book{dune, hobbit})

	if _, err := store.Copy(dst, store.NewMemoryStore()); !errors.Is(err, store.ErrIO) {
		t.Fatalf("expected ErrIO copying from a missing library, got %v", err)
	}
	assertBooks(t, dst, []book.Book{dune, hobbit})
}
