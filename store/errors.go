package store

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. The concrete errors below carry the details.
var (
	ErrIO        = errors.New("library i/o error")
	ErrFormat    = errors.New("malformed library file")
	ErrDuplicate = errors.New("book already in library")
)

// IOError reports that the backing storage could not be created, opened,
// read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// FormatError reports a backing file whose content does not decode into the
// header plus four column rows layout. Line is 1-based.
type FormatError struct {
	Path string
	Line int
	Msg  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// DuplicateError is returned by Add when a book with the same title is
// already stored. Nothing is written in that case.
type DuplicateError struct {
	Title string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%q is already in the library", e.Title)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }
