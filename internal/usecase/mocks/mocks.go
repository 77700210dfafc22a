package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

// MockSourceRepository is a mock implementation of SourceRepository.
type MockSourceRepository struct {
	Sources *domain.SourceSets

	LoadFunc func(ctx context.Context, r domain.DateRange) (*domain.SourceSets, error)
}

func NewMockSourceRepository() *MockSourceRepository {
	return &MockSourceRepository{Sources: &domain.SourceSets{}}
}

func (m *MockSourceRepository) Load(ctx context.Context, r domain.DateRange) (*domain.SourceSets, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, r)
	}
	return m.Sources, nil
}

// MockMatchRepository is a mock implementation of MatchRepository.
type MockMatchRepository struct {
	mu     sync.Mutex
	Pairs  map[string][]domain.PairMatch
	Chains map[string][]domain.FullChainMatch

	SavePairMatchesFunc  func(ctx context.Context, tx usecase.Transaction, batchID string, pairs []domain.PairMatch) error
	SaveChainMatchesFunc func(ctx context.Context, tx usecase.Transaction, batchID string, chains []domain.FullChainMatch) error
}

func NewMockMatchRepository() *MockMatchRepository {
	return &MockMatchRepository{
		Pairs:  make(map[string][]domain.PairMatch),
		Chains: make(map[string][]domain.FullChainMatch),
	}
}

func (m *MockMatchRepository) SavePairMatches(ctx context.Context, tx usecase.Transaction, batchID string, pairs []domain.PairMatch) error {
	if m.SavePairMatchesFunc != nil {
		return m.SavePairMatchesFunc(ctx, tx, batchID, pairs)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Pairs[batchID] = pairs
	return nil
}

func (m *MockMatchRepository) SaveChainMatches(ctx context.Context, tx usecase.Transaction, batchID string, chains []domain.FullChainMatch) error {
	if m.SaveChainMatchesFunc != nil {
		return m.SaveChainMatchesFunc(ctx, tx, batchID, chains)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Chains[batchID] = chains
	return nil
}

// MockFindingRepository is a mock implementation of FindingRepository.
type MockFindingRepository struct {
	mu       sync.Mutex
	Findings map[string][]domain.Finding

	SaveAllFunc     func(ctx context.Context, tx usecase.Transaction, batchID string, findings []domain.Finding) error
	ListByBatchFunc func(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error)
}

func NewMockFindingRepository() *MockFindingRepository {
	return &MockFindingRepository{Findings: make(map[string][]domain.Finding)}
}

func (m *MockFindingRepository) SaveAll(ctx context.Context, tx usecase.Transaction, batchID string, findings []domain.Finding) error {
	if m.SaveAllFunc != nil {
		return m.SaveAllFunc(ctx, tx, batchID, findings)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Findings[batchID] = findings
	return nil
}

func (m *MockFindingRepository) ListByBatch(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error) {
	if m.ListByBatchFunc != nil {
		return m.ListByBatchFunc(ctx, batchID, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	findings := m.Findings[batchID]
	if offset >= len(findings) {
		return nil, nil
	}
	end := offset + limit
	if end > len(findings) {
		end = len(findings)
	}
	return findings[offset:end], nil
}

// MockRunRepository is a mock implementation of RunRepository.
type MockRunRepository struct {
	mu   sync.Mutex
	Runs map[string]*domain.ReconciliationSummary

	SaveFunc         func(ctx context.Context, tx usecase.Transaction, summary *domain.ReconciliationSummary) error
	GetByBatchIDFunc func(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error)
	ListFunc         func(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error)
}

func NewMockRunRepository() *MockRunRepository {
	return &MockRunRepository{Runs: make(map[string]*domain.ReconciliationSummary)}
}

func (m *MockRunRepository) Save(ctx context.Context, tx usecase.Transaction, summary *domain.ReconciliationSummary) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, summary)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Runs[summary.BatchID] = summary
	return nil
}

func (m *MockRunRepository) GetByBatchID(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error) {
	if m.GetByBatchIDFunc != nil {
		return m.GetByBatchIDFunc(ctx, batchID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if run, ok := m.Runs[batchID]; ok {
		return run, nil
	}
	return nil, domain.ErrRunNotFound
}

func (m *MockRunRepository) List(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	runs := make([]*domain.ReconciliationSummary, 0, len(m.Runs))
	for _, run := range m.Runs {
		runs = append(runs, run)
	}
	return runs, nil
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	Committed  bool
	RolledBack bool

	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	LastTx *MockTransaction

	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.LastTx = &MockTransaction{}
	return m.LastTx, nil
}

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	GenerateFunc func() string
}

func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	return "mock-id"
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu     sync.Mutex
	values map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{values: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.values[key]; ok {
		return true, existing, nil
	}
	if response == nil {
		response = []byte("processing")
	}
	m.values[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = response
	return nil
}

// MockReportWriter is a mock implementation of ReportWriter.
type MockReportWriter struct {
	Written int

	WriteRunReportFunc func(summary *domain.ReconciliationSummary, findings []domain.Finding) (string, error)
}

func NewMockReportWriter() *MockReportWriter {
	return &MockReportWriter{}
}

func (m *MockReportWriter) WriteRunReport(summary *domain.ReconciliationSummary, findings []domain.Finding) (string, error) {
	if m.WriteRunReportFunc != nil {
		return m.WriteRunReportFunc(summary, findings)
	}
	m.Written++
	return "/tmp/report.xlsx", nil
}
