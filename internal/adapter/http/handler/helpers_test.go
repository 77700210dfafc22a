package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/gorecon/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"run not found", domain.ErrRunNotFound, http.StatusNotFound},
		{"wrapped run not found", fmt.Errorf("get run: %w", domain.ErrRunNotFound), http.StatusNotFound},
		{"empty range", domain.ErrEmptyDateRange, http.StatusBadRequest},
		{"reversed range", domain.ErrInvalidDateRange, http.StatusBadRequest},
		{"bad tolerance", domain.ErrInvalidTolerance, http.StatusBadRequest},
		{"bad date window", domain.ErrInvalidDateWindow, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseIntQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"present", "limit=50", 50},
		{"missing", "", 20},
		{"not a number", "limit=abc", 20},
		{"negative passes through", "limit=-1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/runs?"+tt.query, nil)
			if got := parseIntQuery(req, "limit", 20); got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
