package usecase

import "time"

const (
	// IdempotencyKeyTTL is how long run-trigger idempotency keys are cached.
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultFindingsPageSize caps finding listings when no limit is given.
	DefaultFindingsPageSize = 100
	// MaxFindingsPageSize is the hard cap on one findings page.
	MaxFindingsPageSize = 1000
)
