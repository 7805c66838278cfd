package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/stevemurr/bookshelf/book"
)

// DefaultCSVPath is the backing file used when no path is configured. It is
// relative to the working directory.
const DefaultCSVPath = "library.csv"

// Header is the first row of every file written by CSVFileStore.
var Header = []string{"Title", "Author", "ISBN", "Published Year"}

// legacyHeader was written by earlier versions of the tool. It is accepted on
// load and replaced by Header on the next write.
var legacyHeader = []string{"Titre", "Auteur", "ISBN", "Année de publication"}

// CSVFileStore keeps the library in a single comma separated file:
//
//	Title,Author,ISBN,Published Year
//	Dune,Frank Herbert,9780441013593,1965
//
// Fields use standard CSV quoting. Every write replaces the file atomically
// through a temporary file in the same directory.
type CSVFileStore struct {
	ops
	path string
}

func NewCSVFileStore(path string) *CSVFileStore {
	s := &CSVFileStore{path: path}
	s.ops.p = s
	return s
}

// Path returns the backing file path.
func (s *CSVFileStore) Path() string {
	return s.path
}

func (s *CSVFileStore) Close() error {
	return nil
}

func (s *CSVFileStore) EnsureExists() (bool, error) {
	_, err := os.Stat(s.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, &IOError{Op: "stat", Path: s.path, Err: err}
	}
	if err := s.ReplaceAll(nil); err != nil {
		return false, err
	}
	slog.Debug("library created", "path", s.path)
	return true, nil
}

func (s *CSVFileStore) Load() ([]book.Book, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: s.path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()
	books, err := decodeCSV(f, s.path)
	if err != nil {
		return nil, err
	}
	slog.Debug("library loaded", "path", s.path, "count", len(books))
	return books, nil
}

func (s *CSVFileStore) ReplaceAll(books []book.Book) error {
	if err := checkBooks(books); err != nil {
		return err
	}
	pf, err := renameio.NewPendingFile(s.path,
		renameio.WithTempDir(filepath.Dir(s.path)),
		renameio.WithPermissions(0o644),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return &IOError{Op: "create", Path: s.path, Err: err}
	}
	// No-op once the file has been renamed into place.
	defer func() {
		_ = pf.Cleanup()
	}()

	if err := encodeCSV(pf, books); err != nil {
		return &IOError{Op: "write", Path: s.path, Err: err}
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return &IOError{Op: "replace", Path: s.path, Err: err}
	}
	slog.Debug("library written", "path", s.path, "count", len(books))
	return nil
}

func encodeCSV(w io.Writer, books []book.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, b := range books {
		if err := cw.Write(b.Fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// decodeCSV reads a header and the rows following it. A completely empty
// input decodes as an empty library. The first malformed row stops decoding.
func decodeCSV(r io.Reader, path string) ([]book.Book, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return []book.Book{}, nil
	}
	if err != nil {
		return nil, readError(path, err)
	}
	if !isHeader(header) {
		return nil, &FormatError{
			Path: path,
			Line: 1,
			Msg:  fmt.Sprintf("expected header %q, got %q", strings.Join(Header, ","), strings.Join(header, ",")),
		}
	}

	books := []book.Book{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(path, err)
		}
		if len(row) != book.NumFields {
			line, _ := cr.FieldPos(0)
			return nil, &FormatError{
				Path: path,
				Line: line,
				Msg:  fmt.Sprintf("expected %d columns, got %d", book.NumFields, len(row)),
			}
		}
		b := book.FromFields(row)
		if err := book.CheckFields(b); err != nil {
			line, _ := cr.FieldPos(0)
			return nil, &FormatError{Path: path, Line: line, Msg: err.Error()}
		}
		books = append(books, b)
	}
	return books, nil
}

func isHeader(row []string) bool {
	if len(row) != book.NumFields {
		return false
	}
	// Spreadsheet exports may start with a byte order mark.
	first := append([]string{strings.TrimPrefix(row[0], "\ufeff")}, row[1:]...)
	return headerEqual(first, Header) || headerEqual(first, legacyHeader)
}

func headerEqual(row, want []string) bool {
	for i := range want {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want[i]) {
			return false
		}
	}
	return true
}

func readError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &FormatError{Path: path, Line: pe.Line, Msg: pe.Err.Error()}
	}
	return &IOError{Op: "read", Path: path, Err: err}
}
