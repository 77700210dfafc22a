package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/gorecon/internal/domain"
	"github.com/iho/gorecon/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.ReportDir != "" {
		t.Fatalf("expected reports disabled by default, got %s", cfg.ReportDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("RECON_TRM_MPR_TOLERANCE", "2.50")
	t.Setenv("RECON_BANK_DATE_WINDOW_DAYS", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.TRMMPRTolerance != "2.50" {
		t.Fatalf("expected tolerance override, got %s", cfg.TRMMPRTolerance)
	}

	if cfg.BankDateWindowDays != 5 {
		t.Fatalf("expected date window override, got %d", cfg.BankDateWindowDays)
	}
}

func TestTolerancesDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	tolerances, err := cfg.Tolerances()
	if err != nil {
		t.Fatalf("unexpected error converting tolerances: %v", err)
	}

	want := domain.DefaultTolerances()
	if !tolerances.TRMMPR.Equal(want.TRMMPR) {
		t.Fatalf("expected TRM-MPR tolerance %s, got %s", want.TRMMPR, tolerances.TRMMPR)
	}
	if !tolerances.MPRBank.Equal(want.MPRBank) {
		t.Fatalf("expected MPR-bank tolerance %s, got %s", want.MPRBank, tolerances.MPRBank)
	}
	if tolerances.BankDateWindowDays != want.BankDateWindowDays {
		t.Fatalf("expected date window %d, got %d", want.BankDateWindowDays, tolerances.BankDateWindowDays)
	}
}

func TestTolerancesMalformedAmount(t *testing.T) {
	t.Setenv("RECON_MPR_BANK_TOLERANCE", "ten rupees")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if _, err := cfg.Tolerances(); err == nil {
		t.Fatal("expected error for malformed tolerance")
	}
}

func TestTolerancesRejectsNonPositive(t *testing.T) {
	t.Setenv("RECON_TRM_MPR_TOLERANCE", "0")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	_, err = cfg.Tolerances()
	if !errors.Is(err, domain.ErrInvalidTolerance) {
		t.Fatalf("expected ErrInvalidTolerance, got %v", err)
	}
}

func TestTolerancesCustomValues(t *testing.T) {
	t.Setenv("RECON_CHAIN_MISMATCH_TOLERANCE", "250.00")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	tolerances, err := cfg.Tolerances()
	if err != nil {
		t.Fatalf("unexpected error converting tolerances: %v", err)
	}

	if !tolerances.ChainMismatch.Equal(decimal.RequireFromString("250.00")) {
		t.Fatalf("expected chain mismatch tolerance 250.00, got %s", tolerances.ChainMismatch)
	}
}
