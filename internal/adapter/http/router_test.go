package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iho/gorecon/internal/adapter/http/handler"
	apimiddleware "github.com/iho/gorecon/internal/adapter/http/middleware"
	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

type routerUseCaseStub struct {
	runFn          func(ctx context.Context, r domain.DateRange) (*usecase.RunResult, error)
	getSummaryFn   func(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error)
	listRunsFn     func(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error)
	listFindingsFn func(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error)
}

func (s *routerUseCaseStub) Run(ctx context.Context, r domain.DateRange) (*usecase.RunResult, error) {
	return s.runFn(ctx, r)
}

func (s *routerUseCaseStub) GetSummary(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error) {
	return s.getSummaryFn(ctx, batchID)
}

func (s *routerUseCaseStub) ListRuns(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error) {
	return s.listRunsFn(ctx, limit, offset)
}

func (s *routerUseCaseStub) ListFindings(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error) {
	return s.listFindingsFn(ctx, batchID, limit, offset)
}

func newTestRouter(stub *routerUseCaseStub) http.Handler {
	return NewRouter(RouterConfig{
		ReconHandler:  handler.NewReconHandler(stub),
		HealthHandler: handler.NewHealthHandler(nil, nil),
	})
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := newTestRouter(&routerUseCaseStub{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_MetricsEndpointAvailable(t *testing.T) {
	router := newTestRouter(&routerUseCaseStub{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected exposition output to contain http_requests_total")
	}
}

func TestNewRouter_TriggerRunRouteWired(t *testing.T) {
	stub := &routerUseCaseStub{
		runFn: func(ctx context.Context, r domain.DateRange) (*usecase.RunResult, error) {
			return &usecase.RunResult{Summary: &domain.ReconciliationSummary{
				BatchID: "MATCH_20241201_143005",
				Range:   r,
			}}, nil
		},
	}
	router := newTestRouter(stub)

	body := strings.NewReader(`{"start_date":"2024-12-01","end_date":"2024-12-08"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/runs", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewRouter_FindingsRouteExtractsBatchID(t *testing.T) {
	var gotBatchID string
	stub := &routerUseCaseStub{
		getSummaryFn: func(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error) {
			return &domain.ReconciliationSummary{BatchID: batchID}, nil
		},
		listFindingsFn: func(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error) {
			gotBatchID = batchID
			return nil, nil
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/runs/MATCH_20241201_143005/findings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotBatchID != "MATCH_20241201_143005" {
		t.Fatalf("expected batch id from path, got %q", gotBatchID)
	}
}

func TestNewRouter_IdempotentTriggerReplays(t *testing.T) {
	runs := 0
	stub := &routerUseCaseStub{
		runFn: func(ctx context.Context, r domain.DateRange) (*usecase.RunResult, error) {
			runs++
			return &usecase.RunResult{Summary: &domain.ReconciliationSummary{
				BatchID: "MATCH_20241201_143005",
				Range:   r,
			}}, nil
		},
	}
	router := NewRouter(RouterConfig{
		ReconHandler:     handler.NewReconHandler(stub),
		HealthHandler:    handler.NewHealthHandler(nil, nil),
		IdempotencyStore: newMemoryIdempotencyStore(),
	})

	for i := 0; i < 2; i++ {
		body := strings.NewReader(`{"start_date":"2024-12-01","end_date":"2024-12-08"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/runs", body)
		req.Header.Set("Idempotency-Key", "trigger-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if i == 1 && rec.Header().Get("X-Idempotency-Replay") != "true" {
			t.Fatalf("expected second request to be replayed")
		}
	}

	if runs != 1 {
		t.Fatalf("expected exactly one run execution, got %d", runs)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	stub := &routerUseCaseStub{
		listRunsFn: func(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error) {
			return nil, nil
		},
	}
	router := NewRouter(RouterConfig{
		ReconHandler:  handler.NewReconHandler(stub),
		HealthHandler: handler.NewHealthHandler(nil, nil),
		RateLimiter:   apimiddleware.NewRateLimiter(1, 1),
	})

	req1 := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/runs", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)

	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/runs", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %d", rec2.Code)
	}
}

type memoryIdempotencyStore struct {
	values map[string][]byte
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{values: make(map[string][]byte)}
}

func (s *memoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if v, ok := s.values[key]; ok {
		return true, v, nil
	}
	s.values[key] = []byte("processing")
	return false, nil, nil
}

func (s *memoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.values[key] = append([]byte(nil), response...)
	return nil
}
