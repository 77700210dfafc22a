package domain

import "errors"

var (
	// Configuration faults. These abort a run before any matching starts.
	ErrEmptyDateRange    = errors.New("date range is empty")
	ErrInvalidDateRange  = errors.New("date range end precedes start")
	ErrInvalidTolerance  = errors.New("tolerance must be positive")
	ErrInvalidDateWindow = errors.New("date window must be positive")

	// Lookup errors
	ErrRunNotFound     = errors.New("reconciliation run not found")
	ErrInvalidFinding  = errors.New("finding kind is not a known value")
	ErrInvalidSeverity = errors.New("severity is not a known value")
)
