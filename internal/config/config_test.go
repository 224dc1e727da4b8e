package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.APIPort != "8080" {
		t.Fatalf("expected default api port 8080, got %s", cfg.APIPort)
	}
	if cfg.NATSSubject != "liquidaciones.documents" {
		t.Fatalf("expected default subject, got %s", cfg.NATSSubject)
	}
	if cfg.RequireNonEmptyTables {
		t.Fatalf("expected non-empty table check off by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_PORT", "9999")
	t.Setenv("API_RATE_LIMIT_RPS", "25")
	t.Setenv("REQUIRE_NONEMPTY_TABLES", "true")

	cfg := Load()
	if cfg.APIPort != "9999" {
		t.Fatalf("expected overridden port, got %s", cfg.APIPort)
	}
	if cfg.APIRateLimitRPS != 25 {
		t.Fatalf("expected rate limit 25, got %d", cfg.APIRateLimitRPS)
	}
	if !cfg.RequireNonEmptyTables {
		t.Fatalf("expected non-empty table check on")
	}
}

func TestLoadRulesDefaultsWhenNoPath(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules.Categories) == 0 {
		t.Fatalf("expected built-in categories")
	}
	if rules.DecimalSeparator != "," {
		t.Fatalf("expected comma decimal separator, got %q", rules.DecimalSeparator)
	}
}

func TestLoadRulesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	raw := []byte("categories:\n  NOV: Novillos\n  XX: Extra\ndecimal_separator: \".\"\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if rules.Categories["XX"] != "Extra" {
		t.Fatalf("expected overlay category, got %v", rules.Categories)
	}
	if rules.DecimalSeparator != "." {
		t.Fatalf("expected overridden separator, got %q", rules.DecimalSeparator)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules("/nonexistent/rules.yaml"); err == nil {
		t.Fatalf("expected error for missing rules file")
	}
}
