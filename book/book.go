// Package book defines the catalog record and the rules used to compare and
// validate records.
package book

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyTitle is returned by Validate when a record has no title.
	ErrEmptyTitle = errors.New("title is required")
	// ErrCarriageReturn is returned for a field holding a carriage return.
	// The CSV reader folds "\r\n" inside a field into "\n", so such a
	// field would not read back as written.
	ErrCarriageReturn = errors.New("fields cannot contain carriage returns")
)

// Book is a single catalog entry. All fields are free text.
type Book struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	ISBN          string `json:"isbn"`
	PublishedYear string `json:"published_year"`
}

// Fields returns the record as a row in column order.
func (b Book) Fields() []string {
	return []string{b.Title, b.Author, b.ISBN, b.PublishedYear}
}

// FromFields builds a Book from a four column row. It panics if the row has a
// different length; callers check the column count first.
func FromFields(row []string) Book {
	if len(row) != NumFields {
		panic("book: wrong number of fields")
	}
	return Book{
		Title:         row[0],
		Author:        row[1],
		ISBN:          row[2],
		PublishedYear: row[3],
	}
}

// NumFields is the number of columns of a record.
const NumFields = 4

// Normalize returns b with surrounding whitespace removed from every field.
func Normalize(b Book) Book {
	return Book{
		Title:         strings.TrimSpace(b.Title),
		Author:        strings.TrimSpace(b.Author),
		ISBN:          strings.TrimSpace(b.ISBN),
		PublishedYear: strings.TrimSpace(b.PublishedYear),
	}
}

// Validate checks the fields that must be present before a record is added.
func Validate(b Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	return CheckFields(b)
}

// CheckFields reports whether every field of b can be stored. Unlike
// Validate it accepts an empty title.
func CheckFields(b Book) error {
	for _, f := range b.Fields() {
		if strings.ContainsRune(f, '\r') {
			return ErrCarriageReturn
		}
	}
	return nil
}

// SameTitle reports whether two titles identify the same record. Surrounding
// whitespace is ignored, the comparison is otherwise exact and case-sensitive.
func SameTitle(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// Matches reports whether key designates b, either by title or by ISBN.
// An empty key matches nothing.
func Matches(b Book, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	return SameTitle(b.Title, key) || strings.TrimSpace(b.ISBN) == key
}
