package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8081" {
		t.Errorf("Port = %q, want 8081", cfg.Port)
	}
	if cfg.Timezone != "America/Costa_Rica" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.TableSource != "memory" {
		t.Errorf("TableSource = %q, want memory", cfg.TableSource)
	}
	if cfg.RefreshInterval != 15*time.Minute {
		t.Errorf("RefreshInterval = %v", cfg.RefreshInterval)
	}
	if len(cfg.Rules.Rules) == 0 || cfg.Rules.Default == "" {
		t.Errorf("default rule set not loaded: %+v", cfg.Rules)
	}
	if len(cfg.FixedExpenses) != 3 {
		t.Errorf("default fixed expenses = %d, want 3", len(cfg.FixedExpenses))
	}
}

func TestLoad_RuleOverride(t *testing.T) {
	t.Setenv("RESPONSIBLE_RULES", `{"rules":[{"card_key":"1111","responsible":"Ana"},{"card_key":"2222","responsible":"Beto"}],"default":"Casa"}`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Rules.Rules) != 2 {
		t.Fatalf("rules = %d, want 2", len(cfg.Rules.Rules))
	}
	if cfg.Rules.Rules[0].CardKey != "1111" || cfg.Rules.Rules[1].CardKey != "2222" {
		t.Errorf("rule order not preserved: %+v", cfg.Rules.Rules)
	}
	if cfg.Rules.Default != "Casa" {
		t.Errorf("default = %q", cfg.Rules.Default)
	}
}

func TestLoad_BadRuleJSON(t *testing.T) {
	t.Setenv("RESPONSIBLE_RULES", "{not json")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed rule JSON")
	}
}

func TestLoad_FixedExpensesOverride(t *testing.T) {
	t.Setenv("FIXED_EXPENSES", `[{"description":"Internet","amount":25000}]`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.FixedExpenses) != 1 || cfg.FixedExpenses[0].Description != "Internet" {
		t.Errorf("fixed expenses = %+v", cfg.FixedExpenses)
	}
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		cfg.SQLiteDBPath = t.TempDir() + "/test.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = "abc" },
			wantErr: "invalid port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "invalid port",
		},
		{
			name:    "bad timezone",
			mutate:  func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr: "invalid timezone",
		},
		{
			name:    "missing rule default",
			mutate:  func(c *Config) { c.Rules.Default = "" },
			wantErr: "responsible rules",
		},
		{
			name:    "bad table source",
			mutate:  func(c *Config) { c.TableSource = "carrier-pigeon" },
			wantErr: "invalid table source",
		},
		{
			name:    "graph source requires client id",
			mutate:  func(c *Config) { c.TableSource = "graph"; c.GraphClientID = "" },
			wantErr: "MS_CLIENT_ID",
		},
		{
			name:    "sheets source requires spreadsheet id",
			mutate:  func(c *Config) { c.TableSource = "sheets"; c.GoogleSpreadsheetID = "" },
			wantErr: "Spreadsheet ID",
		},
		{
			name:    "bad AMQP scheme",
			mutate:  func(c *Config) { c.AMQPURL = "http://localhost" },
			wantErr: "AMQP URL scheme",
		},
		{
			name:    "refresh interval too small",
			mutate:  func(c *Config) { c.RefreshInterval = 100 * time.Millisecond },
			wantErr: "refresh interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loc := cfg.Location()
	if loc.String() != "America/Costa_Rica" {
		t.Errorf("Location = %v", loc)
	}

	cfg.Timezone = "bogus"
	if cfg.Location() != time.UTC {
		t.Error("bogus timezone should fall back to UTC")
	}
}
