package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/leadradar/internal/scoring"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
thresholds:
  min_pain_score: 70
  min_contacts: 2
source:
  type: file
  path: jobs.json
enrichment:
  provider: mock
  max_contacts: 4
  min_delay: 250ms
  cache:
    type: sqlite
    path: cache.db
    ttl: 72h
export:
  format: xlsx
  dir: out
pipeline:
  call_timeout: 15s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Thresholds.MinPainScore != 70 || cfg.Thresholds.MinContacts != 2 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Thresholds.HighPainScore != 80 {
		t.Errorf("HighPainScore = %d, want default 80", cfg.Thresholds.HighPainScore)
	}
	if cfg.Source.Type != "file" || cfg.Source.Path != "jobs.json" {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Enrichment.Provider != "mock" || cfg.Enrichment.MaxContacts != 4 {
		t.Errorf("Enrichment = %+v", cfg.Enrichment)
	}
	if cfg.Enrichment.MinDelay != 250*time.Millisecond {
		t.Errorf("MinDelay = %v, want 250ms", cfg.Enrichment.MinDelay)
	}
	if cfg.Enrichment.Cache.Type != "sqlite" || cfg.Enrichment.Cache.Path != "cache.db" || cfg.Enrichment.Cache.TTL != 72*time.Hour {
		t.Errorf("Cache = %+v", cfg.Enrichment.Cache)
	}
	if cfg.Export.Format != "xlsx" || cfg.Export.Dir != "out" || cfg.Export.MaxContacts != 5 {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if cfg.Pipeline.CallTimeout != 15*time.Second {
		t.Errorf("CallTimeout = %v, want 15s", cfg.Pipeline.CallTimeout)
	}
}

func TestDefault_Values(t *testing.T) {
	cfg := Default()
	if err := validate(cfg); err != nil {
		t.Fatalf("validate(Default()): %v", err)
	}
	if cfg.Thresholds.MinPainScore != 60 || cfg.Thresholds.HighPainScore != 80 || cfg.Thresholds.MinContacts != 3 {
		t.Errorf("Thresholds = %+v", cfg.Thresholds)
	}
	if cfg.Enrichment.MaxContacts != 5 || cfg.Export.MaxContacts != 5 {
		t.Errorf("max contacts = %d/%d, want 5/5", cfg.Enrichment.MaxContacts, cfg.Export.MaxContacts)
	}
	if cfg.Export.Dir != "outputs" || cfg.Export.Format != "csv" {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if cfg.Enrichment.Provider != "apollo" {
		t.Errorf("Provider = %q, want apollo", cfg.Enrichment.Provider)
	}
	if cfg.Pipeline.CallTimeout != 60*time.Second {
		t.Errorf("CallTimeout = %v, want 60s", cfg.Pipeline.CallTimeout)
	}
	if cfg.AI.Enabled {
		t.Error("AI should be disabled by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Source.Type != "mock" {
		t.Errorf("Source.Type = %q, want mock", cfg.Source.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "thresholds: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_APOLLO_KEY", "secret-123")
	cfg, err := Parse([]byte(`
enrichment:
  api_key: ${TEST_APOLLO_KEY}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Enrichment.APIKey != "secret-123" {
		t.Errorf("APIKey = %q, want secret-123", cfg.Enrichment.APIKey)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown source", "source:\n  type: scraper\n", "invalid config"},
		{"file source without path", "source:\n  type: file\n", "source.path"},
		{"boards source without boards", "source:\n  type: boards\n", "source.boards"},
		{"board with unknown ats", "source:\n  type: boards\n  boards:\n    - ats: workday\n      token: x\n      company: X\n", "source.boards[0]"},
		{"board without company", "source:\n  type: boards\n  boards:\n    - ats: lever\n      token: x\n", "source.boards[0]"},
		{"unknown provider", "enrichment:\n  provider: clearbit\n", "invalid config"},
		{"zero max contacts", "enrichment:\n  max_contacts: 0\n", "invalid config"},
		{"bad format", "export:\n  format: pdf\n", "invalid config"},
		{"bad duration", "pipeline:\n  call_timeout: soon\n", "pipeline.call_timeout"},
		{"zero call timeout", "pipeline:\n  call_timeout: 0s\n", "call_timeout must be positive"},
		{"high below min", "thresholds:\n  min_pain_score: 90\n", "high_pain_score"},
		{"slack bad webhook", "notification:\n  type: slack\n  webhook_url: https://example.com/x\n", "must start with"},
		{"bad rule field", "scoring:\n  signals:\n    - name: x\n      field: location\n      any: [a]\n", "scoring.signals[0].field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			if err == nil {
				t.Fatalf("Parse: expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_Boards(t *testing.T) {
	cfg, err := Parse([]byte(`
source:
  type: boards
  min_delay: 2s
  retries: 0
  boards:
    - ats: greenhouse
      token: acme
      company: Acme GmbH
      website: https://acme.de
    - ats: lever
      token: beta
      company: Beta AG
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Source.Boards) != 2 {
		t.Fatalf("boards = %d, want 2", len(cfg.Source.Boards))
	}
	want := BoardConfig{ATS: "greenhouse", Token: "acme", Company: "Acme GmbH", Website: "https://acme.de"}
	if cfg.Source.Boards[0] != want {
		t.Errorf("board[0] = %+v, want %+v", cfg.Source.Boards[0], want)
	}
	if cfg.Source.MinDelay != 2*time.Second || cfg.Source.Retries != 0 {
		t.Errorf("min_delay=%v retries=%d", cfg.Source.MinDelay, cfg.Source.Retries)
	}
}

func TestParse_ScoringOverrides(t *testing.T) {
	cfg, err := Parse([]byte(`
scoring:
  base: 40
  exclude_b2c: true
  signals:
    - name: fintech
      field: description
      weight: 5
      any: [payments, banking]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Scoring.Base != 40 {
		t.Errorf("Base = %d, want 40", cfg.Scoring.Base)
	}
	if len(cfg.Scoring.Signals) != 1 || cfg.Scoring.Signals[0].Name != "fintech" {
		t.Fatalf("Signals = %+v", cfg.Scoring.Signals)
	}
	if cfg.Scoring.Signals[0].Field != scoring.FieldDescription {
		t.Errorf("Field = %q, want description", cfg.Scoring.Signals[0].Field)
	}
	defaults := scoring.DefaultRules()
	if len(cfg.Scoring.Exclusions) != len(defaults.Exclusions)+1 {
		t.Errorf("Exclusions = %d, want defaults plus b2c", len(cfg.Scoring.Exclusions))
	}
	if len(cfg.Scoring.AgeBands) != len(defaults.AgeBands) {
		t.Errorf("AgeBands should keep defaults, got %+v", cfg.Scoring.AgeBands)
	}
}

func TestParse_AIProviderDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
ai:
  enabled: true
  provider: openai
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.AI.BaseURL != defaultOpenAIBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.AI.BaseURL, defaultOpenAIBaseURL)
	}
	if cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q, want gpt-4o-mini", cfg.AI.Model)
	}
}

func TestResolveSecrets(t *testing.T) {
	t.Run("env wins over keychain", func(t *testing.T) {
		t.Setenv(SecretApollo, "from-env")
		cfg := Default()
		err := cfg.ResolveSecrets(func(string) (string, error) { return "from-keychain", nil })
		if err != nil {
			t.Fatalf("ResolveSecrets: %v", err)
		}
		if cfg.Enrichment.APIKey != "from-env" {
			t.Errorf("APIKey = %q, want from-env", cfg.Enrichment.APIKey)
		}
	})

	t.Run("keychain fallback", func(t *testing.T) {
		t.Setenv(SecretApollo, "")
		cfg := Default()
		var asked string
		err := cfg.ResolveSecrets(func(name string) (string, error) {
			asked = name
			return "from-keychain", nil
		})
		if err != nil {
			t.Fatalf("ResolveSecrets: %v", err)
		}
		if asked != SecretApollo || cfg.Enrichment.APIKey != "from-keychain" {
			t.Errorf("asked = %q, APIKey = %q", asked, cfg.Enrichment.APIKey)
		}
	})

	t.Run("missing apollo key", func(t *testing.T) {
		t.Setenv(SecretApollo, "")
		cfg := Default()
		err := cfg.ResolveSecrets(nil)
		if err == nil || !strings.Contains(err.Error(), SecretApollo) {
			t.Fatalf("err = %v, want missing %s", err, SecretApollo)
		}
	})

	t.Run("mock provider needs no key", func(t *testing.T) {
		t.Setenv(SecretApollo, "")
		cfg := Default()
		cfg.Enrichment.Provider = "mock"
		if err := cfg.ResolveSecrets(nil); err != nil {
			t.Fatalf("ResolveSecrets: %v", err)
		}
	})

	t.Run("lookup error", func(t *testing.T) {
		t.Setenv(SecretApollo, "")
		cfg := Default()
		boom := errors.New("keychain locked")
		err := cfg.ResolveSecrets(func(string) (string, error) { return "", boom })
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped %v", err, boom)
		}
	})

	t.Run("slack webhook from keychain", func(t *testing.T) {
		t.Setenv(SecretSlack, "")
		cfg := Default()
		cfg.Enrichment.Provider = "mock"
		cfg.Notification.Type = "slack"
		err := cfg.ResolveSecrets(func(name string) (string, error) {
			if name == SecretSlack {
				return "https://hooks.slack.com/services/T/B/X", nil
			}
			return "", nil
		})
		if err != nil {
			t.Fatalf("ResolveSecrets: %v", err)
		}
		if cfg.Notification.WebhookURL != "https://hooks.slack.com/services/T/B/X" {
			t.Errorf("WebhookURL = %q", cfg.Notification.WebhookURL)
		}
	})

	t.Run("slack without webhook", func(t *testing.T) {
		t.Setenv(SecretSlack, "")
		cfg := Default()
		cfg.Enrichment.Provider = "mock"
		cfg.Notification.Type = "slack"
		err := cfg.ResolveSecrets(nil)
		if err == nil || !strings.Contains(err.Error(), "webhook_url") {
			t.Fatalf("err = %v, want webhook_url error", err)
		}
	})

	t.Run("ai key required when enabled", func(t *testing.T) {
		t.Setenv(SecretAnthropic, "")
		cfg := Default()
		cfg.Enrichment.Provider = "mock"
		cfg.AI.Enabled = true
		err := cfg.ResolveSecrets(nil)
		if err == nil || !strings.Contains(err.Error(), SecretAnthropic) {
			t.Fatalf("err = %v, want missing %s", err, SecretAnthropic)
		}
	})
}
