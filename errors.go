package main

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth marks a failed login against the Meridian portal.
	ErrAuth = errors.New("meridian authentication failed")
	// ErrFetch marks a failed consumption data download.
	ErrFetch = errors.New("meridian consumption fetch failed")
)

// ParseError reports a row field that could not be parsed. Rows producing a
// ParseError are skipped and counted; they never touch a running sum.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: bad %s %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
