package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a fragrance is missing from the catalog.
var ErrNotFound = errors.New("fragrance not found")

// DataIntegrityError reports a malformed or missing workbook field.
type DataIntegrityError struct {
	Sheet  string
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	loc := e.Sheet
	if e.Row > 0 {
		loc = fmt.Sprintf("%s row %d", loc, e.Row)
	}
	if e.Column != "" {
		loc = fmt.Sprintf("%s column %q", loc, e.Column)
	}
	if loc == "" {
		loc = "record"
	}
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (got %q)", loc, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: %s", loc, e.Reason)
}
