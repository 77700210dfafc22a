package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gorecon/internal/domain"
)

// ReconciliationUseCase orchestrates one reconciliation run: load the five
// source sets, pair TRM to MPR, extend pairs to bank credits, classify
// everything that failed to chain, aggregate the summary and persist the
// results in a single transaction.
type ReconciliationUseCase struct {
	sourceRepo   SourceRepository
	matchRepo    MatchRepository
	findingRepo  FindingRepository
	runRepo      RunRepository
	txManager    TransactionManager
	reportWriter ReportWriter
	observer     RunObserver
	tolerances   domain.MatchTolerances
	logger       zerolog.Logger
	now          func() time.Time
}

// ReconciliationOption customizes optional collaborators.
type ReconciliationOption func(*ReconciliationUseCase)

// WithReportWriter attaches a report writer; the run writes a report after a
// successful commit. Report failures are logged, never returned.
func WithReportWriter(w ReportWriter) ReconciliationOption {
	return func(uc *ReconciliationUseCase) { uc.reportWriter = w }
}

// WithRunObserver attaches an instrumentation observer.
func WithRunObserver(o RunObserver) ReconciliationOption {
	return func(uc *ReconciliationUseCase) { uc.observer = o }
}

// WithClock overrides the wall clock; tests use it to pin batch IDs.
func WithClock(now func() time.Time) ReconciliationOption {
	return func(uc *ReconciliationUseCase) { uc.now = now }
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(
	sourceRepo SourceRepository,
	matchRepo MatchRepository,
	findingRepo FindingRepository,
	runRepo RunRepository,
	txManager TransactionManager,
	tolerances domain.MatchTolerances,
	logger zerolog.Logger,
	opts ...ReconciliationOption,
) *ReconciliationUseCase {
	uc := &ReconciliationUseCase{
		sourceRepo:  sourceRepo,
		matchRepo:   matchRepo,
		findingRepo: findingRepo,
		runRepo:     runRepo,
		txManager:   txManager,
		tolerances:  tolerances,
		logger:      logger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// RunResult is everything one run produced.
type RunResult struct {
	Summary  *domain.ReconciliationSummary
	Pairs    []domain.PairMatch
	Chains   []domain.FullChainMatch
	Findings []domain.Finding
}

// Run executes one reconciliation run over the date range. Configuration
// faults fail before any matching; the run holds no state between calls, so
// concurrent runs over disjoint ranges are safe.
func (uc *ReconciliationUseCase) Run(ctx context.Context, r domain.DateRange) (*RunResult, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := uc.tolerances.Validate(); err != nil {
		return nil, err
	}

	startedAt := uc.now().UTC()
	batchID := domain.NewBatchID(r.Start, startedAt)

	logger := uc.logger.With().Str("batch_id", batchID).Logger()
	logger.Info().
		Time("range_start", r.Start).
		Time("range_end", r.End).
		Msg("reconciliation run started")

	sources, err := uc.sourceRepo.Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load source data: %w", err)
	}
	logger.Info().
		Int("pos", len(sources.POS)).
		Int("trm", len(sources.TRM)).
		Int("mpr_upi", len(sources.MPRUPI)).
		Int("mpr_card", len(sources.MPRCard)).
		Int("bank", len(sources.Bank)).
		Msg("source data loaded")

	// The run is only cancellable between stages; matching never blocks and
	// per-record work is not meaningfully interruptible mid-scan.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage1 := NewPairMatcher(uc.tolerances.TRMMPR, logger).
		Match(sources.TRM, sources.MPRUPI, sources.MPRCard)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stage2 := NewChainMatcher(uc.tolerances.MPRBank, uc.tolerances.BankDateWindowDays, logger).
		Extend(stage1, sources.Bank)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findings, tallies := NewExceptionClassifier(uc.tolerances, startedAt).Classify(ClassifyInput{
		Sources: sources,
		Stage1:  stage1,
		Stage2:  stage2,
	})

	completedAt := uc.now().UTC()
	summary := AggregateSummary(AggregateInput{
		BatchID:     batchID,
		Range:       r,
		Sources:     sources,
		Stage1:      stage1,
		Stage2:      stage2,
		Tallies:     tallies,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	})

	if err := uc.persist(ctx, batchID, summary, stage1, stage2, findings); err != nil {
		return nil, err
	}

	logger.Info().
		Int("full_chains", summary.Matches.FullChain).
		Int("findings", tallies.Total).
		Str("amount_at_risk", tallies.TotalAmountAtRisk.String()).
		Dur("took", summary.ProcessingTime).
		Msg("reconciliation run completed")

	if uc.observer != nil {
		uc.observer.ObserveRun(summary)
	}

	if uc.reportWriter != nil {
		path, err := uc.reportWriter.WriteRunReport(summary, findings)
		if err != nil {
			logger.Warn().Err(err).Msg("report generation failed")
		} else {
			logger.Info().Str("path", path).Msg("report written")
		}
	}

	return &RunResult{
		Summary:  summary,
		Pairs:    stage1.Pairs(),
		Chains:   stage2.Chains,
		Findings: findings,
	}, nil
}

// persist writes matches, findings and the run summary atomically.
func (uc *ReconciliationUseCase) persist(
	ctx context.Context,
	batchID string,
	summary *domain.ReconciliationSummary,
	stage1 PairMatchResult,
	stage2 ChainMatchResult,
	findings []domain.Finding,
) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.matchRepo.SavePairMatches(ctx, tx, batchID, stage1.Pairs()); err != nil {
		return fmt.Errorf("save pair matches: %w", err)
	}
	if err := uc.matchRepo.SaveChainMatches(ctx, tx, batchID, stage2.Chains); err != nil {
		return fmt.Errorf("save chain matches: %w", err)
	}
	if err := uc.findingRepo.SaveAll(ctx, tx, batchID, findings); err != nil {
		return fmt.Errorf("save findings: %w", err)
	}
	if err := uc.runRepo.Save(ctx, tx, summary); err != nil {
		return fmt.Errorf("save run summary: %w", err)
	}

	return tx.Commit(ctx)
}

// GetSummary returns the persisted summary for a batch.
func (uc *ReconciliationUseCase) GetSummary(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error) {
	return uc.runRepo.GetByBatchID(ctx, batchID)
}

// ListRuns returns persisted run summaries, newest first.
func (uc *ReconciliationUseCase) ListRuns(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error) {
	if limit <= 0 {
		limit = DefaultFindingsPageSize
	}
	if limit > MaxFindingsPageSize {
		limit = MaxFindingsPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return uc.runRepo.List(ctx, limit, offset)
}

// ListFindings returns persisted findings for a batch.
func (uc *ReconciliationUseCase) ListFindings(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error) {
	if limit <= 0 {
		limit = DefaultFindingsPageSize
	}
	if limit > MaxFindingsPageSize {
		limit = MaxFindingsPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return uc.findingRepo.ListByBatch(ctx, batchID, limit, offset)
}
