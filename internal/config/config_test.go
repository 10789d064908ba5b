package config

import (
	"testing"

	"github.com/shopspring/decimal"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "postgres://localhost/ledger_test")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.Environment != "development" {
		t.Fatalf("expected development default, got %q", cfg.Environment)
	}
	if cfg.HTTP.Port != 7090 {
		t.Fatalf("expected default port, got %d", cfg.HTTP.Port)
	}
	if !cfg.Ledger.DepositRatio.Equal(decimal.NewFromFloat(0.25)) {
		t.Fatalf("expected default deposit ratio 0.25, got %s", cfg.Ledger.DepositRatio)
	}
	if cfg.Ledger.PayRetryAttempts != 3 {
		t.Fatalf("expected default retry attempts 3, got %d", cfg.Ledger.PayRetryAttempts)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("JWT_ACCESS_SECRET", "secret")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing DB_DSN to fail")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/ledger_test")
	t.Setenv("JWT_ACCESS_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing JWT_ACCESS_SECRET to fail")
	}
}

func TestLoadParsesDepositRatio(t *testing.T) {
	setRequired(t)
	t.Setenv("LEDGER_DEPOSIT_RATIO", "0.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if !cfg.Ledger.DepositRatio.Equal(decimal.NewFromFloat(0.5)) {
		t.Fatalf("expected ratio 0.5, got %s", cfg.Ledger.DepositRatio)
	}
}

func TestLoadRejectsBadDepositRatio(t *testing.T) {
	setRequired(t)

	t.Setenv("LEDGER_DEPOSIT_RATIO", "a-quarter")
	if _, err := Load(); err == nil {
		t.Fatal("expected malformed ratio to fail")
	}

	t.Setenv("LEDGER_DEPOSIT_RATIO", "1.5")
	if _, err := Load(); err == nil {
		t.Fatal("expected out-of-range ratio to fail")
	}
}
