// Package handler drives the interactive library menu: it collects input
// through a Prompter, runs the matching store operation and prints the
// outcome.
package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/stevemurr/bookshelf/book"
	"github.com/stevemurr/bookshelf/store"
)

// Action is an entry of the main menu, in display order.
type Action int

const (
	AddBook Action = iota
	SearchBook
	ListBooks
	RemoveBook
	Quit
)

var actionLabels = [...]string{
	AddBook:    "Add a book",
	SearchBook: "Search a book",
	ListBooks:  "List books",
	RemoveBook: "Remove a book",
	Quit:       "Quit",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionLabels) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionLabels[a]
}

// Handler holds the menu dependencies.
type Handler struct {
	store   store.Store
	ui      Prompter
	out     io.Writer
	actions map[Action]func() error
}

// New creates a Handler and wires up all menu actions.
func New(s store.Store, ui Prompter, out io.Writer) *Handler {
	h := &Handler{store: s, ui: ui, out: out}
	h.actions = map[Action]func() error{
		AddBook:    h.addBook,
		SearchBook: h.searchBook,
		ListBooks:  h.listBooks,
		RemoveBook: h.removeBook,
	}
	return h
}

// Run makes sure the library exists, then serves menu actions until the user
// quits, aborts input or ctx is cancelled. Failed actions are reported and
// the loop goes on; only a library that cannot be created is fatal.
func (h *Handler) Run(ctx context.Context) error {
	created, err := h.store.EnsureExists()
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}
	if created {
		h.printf("Library created\n")
	} else {
		h.printf("Library already up!\n")
	}

	labels := actionLabels[:]
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		i, err := h.ui.Choose("Choose an action", labels)
		if errors.Is(err, ErrAborted) {
			h.printf("Leaving library\n")
			return nil
		}
		if err != nil {
			return err
		}
		action := Action(i)
		if action == Quit {
			h.printf("Leaving library\n")
			return nil
		}
		slog.Debug("action selected", "action", action.String())
		if err := h.Do(action); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, ErrAborted) {
				h.printf("Leaving library\n")
				return nil
			}
			h.report(err)
		}
	}
}

// Do runs a single menu action.
func (h *Handler) Do(a Action) error {
	fn, ok := h.actions[a]
	if !ok {
		return fmt.Errorf("unknown action %v", a)
	}
	return fn()
}

// ---------- helpers ----------

func (h *Handler) printf(format string, args ...any) {
	fmt.Fprintf(h.out, format, args...)
}

func (h *Handler) report(err error) {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		h.printf("This book is already on the shelf!\n")
	case errors.Is(err, book.ErrEmptyTitle):
		h.printf("A title is required.\n")
	case errors.Is(err, store.ErrFormat):
		h.printf("The library file is malformed: %v\n", err)
	default:
		h.printf("Error: %v\n", err)
	}
	if errors.Is(err, store.ErrDuplicate) || errors.Is(err, book.ErrEmptyTitle) {
		slog.Debug("action refused", "err", err)
		return
	}
	slog.Warn("action failed", "err", err)
}

// RenderBooks formats books as a table with the library header.
func RenderBooks(books []book.Book) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(store.Header...)
	for _, b := range books {
		t.Row(b.Fields()...)
	}
	return t.String()
}

// ---------- actions ----------

func (h *Handler) addBook() error {
	h.printf("Adding a book\n")
	var b book.Book
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Title", &b.Title},
		{"Author", &b.Author},
		{"ISBN", &b.ISBN},
		{"Published year", &b.PublishedYear},
	}
	for _, f := range fields {
		v, err := h.ui.Ask(f.prompt)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	b = book.Normalize(b)
	if err := book.Validate(b); err != nil {
		return err
	}
	if err := h.store.Add(b); err != nil {
		return err
	}
	h.printf("Book added: %s\n", b.Title)
	return nil
}

func (h *Handler) searchBook() error {
	title, err := h.ui.Ask("Which book are you looking for? (title)")
	if err != nil {
		return err
	}
	b, ok, err := h.store.Find(title)
	if err != nil {
		return err
	}
	if !ok {
		h.printf("Book not found!\n")
		return nil
	}
	h.printf("Book found!\n%s\n", RenderBooks([]book.Book{b}))
	return nil
}

func (h *Handler) listBooks() error {
	books, err := h.store.Load()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		h.printf("The library is empty.\n")
		return nil
	}
	h.printf("%s\n%d book(s)\n", RenderBooks(books), len(books))
	return nil
}

func (h *Handler) removeBook() error {
	key, err := h.ui.Ask("Which book do you want to remove? (title or ISBN)")
	if err != nil {
		return err
	}
	n, err := h.store.Remove(key)
	if err != nil {
		return err
	}
	if n == 0 {
		h.printf("No book matched %q.\n", key)
		return nil
	}
	h.printf("Removed %d book(s).\n", n)
	return nil
}
