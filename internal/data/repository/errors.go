package repository

import "errors"

// Business outcomes surfaced by the data layer. Callers match with errors.Is
// instead of string comparison.
var (
	// ErrSeatsUnavailable means the atomic claim lost to another booking:
	// at least one requested seat already had a holder. Nothing was mutated.
	ErrSeatsUnavailable = errors.New("seats unavailable")
)
