// Package coaching holds the pathway assignment and progress rules.
// Everything here is pure: callers fetch data, pass it in and persist the results.
package coaching

import "errors"

var (
	// ErrInvalidInput reports arguments outside the contract of a rule
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound reports a lesson or pathway missing from the content table
	ErrNotFound = errors.New("not found")
	// ErrIncompleteContent reports a content table that does not define every day of both pathways
	ErrIncompleteContent = errors.New("incomplete pathway content")
)
