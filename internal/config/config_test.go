package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvOnlyUsesDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Risk.MaxLossPct != 0.10 {
		t.Fatalf("max_loss_pct=%v want=0.10", cfg.Risk.MaxLossPct)
	}
	if cfg.Risk.MaxOpenPositions != 3 || cfg.Risk.MaxPositionsPerSymbol != 1 {
		t.Fatalf("positions=%d/%d want=3/1", cfg.Risk.MaxOpenPositions, cfg.Risk.MaxPositionsPerSymbol)
	}
	if cfg.Risk.VolatilityBufferMult != 2.0 {
		t.Fatalf("volatility_buffer_mult=%v want=2", cfg.Risk.VolatilityBufferMult)
	}
	if cfg.DB.ConnMaxLifetime != 30*time.Minute {
		t.Fatalf("conn_max_lifetime=%s want=30m", cfg.DB.ConnMaxLifetime)
	}
	if cfg.Governor.Lock != "local" {
		t.Fatalf("governor.lock=%q want=local", cfg.Governor.Lock)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("GR_RISK_MAX_LEVERAGE", "20")
	t.Setenv("GR_DB_DRIVER", "sqlite")
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Risk.MaxLeverage != 20 {
		t.Fatalf("max_leverage=%v want=20", cfg.Risk.MaxLeverage)
	}
	if cfg.DB.Driver != "sqlite" {
		t.Fatalf("driver=%q want=sqlite", cfg.DB.Driver)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("GR_DB_DRIVER", "oracle")
	if _, err := Load("", true); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "guardrail.yaml")
	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when file exists")
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("load written file: %v", err)
	}
	if cfg.Risk.MaxDrawdownPct != 0.40 {
		t.Fatalf("max_drawdown_pct=%v want=0.40", cfg.Risk.MaxDrawdownPct)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("shutdown_timeout=%s want=10s", cfg.Server.ShutdownTimeout)
	}
}

func TestRiskConfigValidate(t *testing.T) {
	r := Default().Risk
	if err := r.Validate(); err != nil {
		t.Fatalf("default risk config invalid: %v", err)
	}
	r.MaxDailyLossPct = -0.1
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for negative max_daily_loss_pct")
	}
	r = Default().Risk
	r.VolatilityBufferMult = 0
	if err := r.Validate(); err == nil {
		t.Fatalf("expected error for zero volatility_buffer_mult")
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("GR_TEST_DOTENV_VALUE=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("GR_TEST_DOTENV_VALUE") })
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("GR_TEST_DOTENV_VALUE"); got != "loaded" {
		t.Fatalf("env=%q want=loaded", got)
	}
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}
