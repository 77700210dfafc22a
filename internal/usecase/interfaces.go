package usecase

import (
	"context"
	"time"

	"github.com/iho/gorecon/internal/domain"
)

// SourceRepository loads the five source record sets for one run.
// Implementations must return each set ordered by (date, id): stage matching
// is greedy and first-fit, so input order decides output.
type SourceRepository interface {
	Load(ctx context.Context, r domain.DateRange) (*domain.SourceSets, error)
}

// MatchRepository persists stage results.
type MatchRepository interface {
	SavePairMatches(ctx context.Context, tx Transaction, batchID string, pairs []domain.PairMatch) error
	SaveChainMatches(ctx context.Context, tx Transaction, batchID string, chains []domain.FullChainMatch) error
}

// FindingRepository persists and reads classifier findings.
type FindingRepository interface {
	SaveAll(ctx context.Context, tx Transaction, batchID string, findings []domain.Finding) error
	ListByBatch(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error)
}

// RunRepository persists and reads run summaries.
type RunRepository interface {
	Save(ctx context.Context, tx Transaction, summary *domain.ReconciliationSummary) error
	GetByBatchID(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error)
	List(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs for persisted rows.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// ReportWriter renders a run into a human-readable artifact and returns its
// location. Report failures never fail the run.
type ReportWriter interface {
	WriteRunReport(summary *domain.ReconciliationSummary, findings []domain.Finding) (string, error)
}

// RunObserver receives completed run summaries for instrumentation.
type RunObserver interface {
	ObserveRun(summary *domain.ReconciliationSummary)
}
