package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/gorecon/internal/adapter/http/dto"
	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/usecase"
)

// ReconUseCase is the part of the reconciliation use case the HTTP layer needs.
type ReconUseCase interface {
	Run(ctx context.Context, r domain.DateRange) (*usecase.RunResult, error)
	GetSummary(ctx context.Context, batchID string) (*domain.ReconciliationSummary, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*domain.ReconciliationSummary, error)
	ListFindings(ctx context.Context, batchID string, limit, offset int) ([]domain.Finding, error)
}

// ReconHandler handles reconciliation API requests.
type ReconHandler struct {
	uc ReconUseCase
}

// NewReconHandler creates a new ReconHandler.
func NewReconHandler(uc ReconUseCase) *ReconHandler {
	return &ReconHandler{uc: uc}
}

// TriggerRun handles POST /api/v1/reconciliation/runs.
func (h *ReconHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req dto.TriggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	dateRange, err := req.ToDateRange()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date range", err.Error())
		return
	}

	result, err := h.uc.Run(r.Context(), dateRange)
	if err != nil {
		writeError(w, mapDomainError(err), "reconciliation run failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RunSummaryFromDomain(result.Summary))
}

// GetRun handles GET /api/v1/reconciliation/runs/{batchID}.
func (h *ReconHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	summary, err := h.uc.GetSummary(r.Context(), batchID)
	if err != nil {
		writeError(w, mapDomainError(err), "run not found", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunSummaryFromDomain(summary))
}

// ListRuns handles GET /api/v1/reconciliation/runs.
func (h *ReconHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	summaries, err := h.uc.ListRuns(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list runs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RunSummariesFromDomain(summaries))
}

// ListFindings handles GET /api/v1/reconciliation/runs/{batchID}/findings.
func (h *ReconHandler) ListFindings(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	limit := parseIntQuery(r, "limit", 100)
	offset := parseIntQuery(r, "offset", 0)

	// 404 for unknown batches rather than an empty list.
	if _, err := h.uc.GetSummary(r.Context(), batchID); err != nil {
		writeError(w, mapDomainError(err), "run not found", err.Error())
		return
	}

	findings, err := h.uc.ListFindings(r.Context(), batchID, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list findings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FindingsFromDomain(findings))
}
