package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/leadradar/internal/scoring"
)

// Config is the root configuration for a leadradar run. It is built once by
// Load and treated as read-only afterwards.
type Config struct {
	Thresholds   ThresholdConfig
	Scoring      scoring.Rules
	Source       SourceConfig
	Enrichment   EnrichmentConfig
	AI           AIConfig
	Export       ExportConfig
	Notification NotificationConfig
	Pipeline     PipelineConfig
}

// ThresholdConfig holds the qualification thresholds.
type ThresholdConfig struct {
	MinPainScore  int `validate:"gte=0"`
	HighPainScore int `validate:"gte=0"`
	MinContacts   int `validate:"gte=0"`
}

// SourceConfig selects where the job batch comes from.
type SourceConfig struct {
	Type     string `validate:"oneof=mock file boards"`
	Path     string // JSON feed path, required for "file"
	Boards   []BoardConfig
	MinDelay time.Duration // minimum gap between requests to the same ATS
	Retries  int           `validate:"gte=0,lte=10"`
}

// BoardConfig is one public job board polled when source.type is "boards".
type BoardConfig struct {
	ATS     string `yaml:"ats" validate:"oneof=greenhouse lever"`
	Token   string `yaml:"token" validate:"required"`   // board token or company slug
	Company string `yaml:"company" validate:"required"` // display name
	Website string `yaml:"website"`                     // company site, feeds domain extraction
}

// EnrichmentConfig controls the contact provider and its decorators.
type EnrichmentConfig struct {
	Provider     string `validate:"oneof=apollo mock"`
	BaseURL      string
	APIKey       string        // see ResolveSecrets
	MaxContacts  int           `validate:"gte=1,lte=100"`
	Timeout      time.Duration // HTTP client timeout
	MaxCalls     int           `validate:"gte=0"` // upstream call budget, 0 = unlimited
	MinDelay     time.Duration // minimum gap between upstream calls
	Retries      int           `validate:"gte=0,lte=10"`
	RetryDelay   time.Duration
	VerifyEmails bool
	TargetTitles []string // empty uses the provider's decision-maker titles
	Cache        CacheConfig
}

// CacheConfig selects the enrichment cache backend.
type CacheConfig struct {
	Type string `validate:"oneof=none memory sqlite"`
	Path string        // SQLite DSN or file path
	TTL  time.Duration // sqlite entries older than this are misses, 0 = never expire
}

// AIConfig controls LLM summarization. When disabled, summaries come from
// the local template.
type AIConfig struct {
	Enabled     bool
	Provider    string `validate:"oneof=openai anthropic gemini"`
	BaseURL     string // defaults per provider
	Model       string
	APIKey      string        // see ResolveSecrets
	Timeout     time.Duration // per-request timeout
	MaxTokens   int           `validate:"gte=1"`
	Temperature float64       `validate:"gte=0,lte=2"`
	Retries     int           `validate:"gte=0,lte=10"`
	RetryDelay  time.Duration
	MinDelay    time.Duration
}

// ExportConfig controls the tabular snapshot.
type ExportConfig struct {
	Dir         string `validate:"required"`
	Format      string `validate:"oneof=csv xlsx"`
	MaxContacts int    `validate:"gte=0,lte=20"` // contact column groups per row
}

// NotificationConfig controls which notifier reports the run summary.
type NotificationConfig struct {
	Type       string `yaml:"type" validate:"oneof=log slack"`
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// PipelineConfig holds orchestrator limits.
type PipelineConfig struct {
	CallTimeout time.Duration // per gateway call
}

const (
	defaultApolloBaseURL    = "https://api.apollo.io/v1"
	defaultOpenAIBaseURL    = "https://api.openai.com/v1"
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	slackWebhookPrefix      = "https://hooks.slack.com/"
)

var defaultModels = map[string]string{
	"openai":    "gpt-4o-mini",
	"anthropic": "claude-3-5-haiku-20241022",
	"gemini":    "gemini-2.5-flash",
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Thresholds: ThresholdConfig{MinPainScore: 60, HighPainScore: 80, MinContacts: 3},
		Scoring:    scoring.DefaultRules(),
		Source:     SourceConfig{Type: "mock", MinDelay: time.Second, Retries: 2},
		Enrichment: EnrichmentConfig{
			Provider:    "apollo",
			BaseURL:     defaultApolloBaseURL,
			MaxContacts: 5,
			Timeout:     30 * time.Second,
			MinDelay:    time.Second,
			Retries:     2,
			RetryDelay:  5 * time.Second,
			Cache:       CacheConfig{Type: "memory", Path: ":memory:", TTL: 30 * 24 * time.Hour},
		},
		AI: AIConfig{
			Provider:    "anthropic",
			BaseURL:     defaultAnthropicBaseURL,
			Model:       defaultModels["anthropic"],
			Timeout:     30 * time.Second,
			MaxTokens:   512,
			Temperature: 0.3,
			Retries:     2,
			RetryDelay:  5 * time.Second,
		},
		Export:       ExportConfig{Dir: "outputs", Format: "csv", MaxContacts: 5},
		Notification: NotificationConfig{Type: "log"},
		Pipeline:     PipelineConfig{CallTimeout: 60 * time.Second},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields, durations as strings).
// Pointer fields distinguish "absent" from zero so defaults survive.
type rawConfig struct {
	Thresholds   rawThresholds      `yaml:"thresholds"`
	Scoring      rawScoring         `yaml:"scoring"`
	Source       rawSource          `yaml:"source"`
	Enrichment   rawEnrichment      `yaml:"enrichment"`
	AI           rawAI              `yaml:"ai"`
	Export       rawExport          `yaml:"export"`
	Notification NotificationConfig `yaml:"notification"`
	Pipeline     rawPipeline        `yaml:"pipeline"`
}

type rawThresholds struct {
	MinPainScore  *int `yaml:"min_pain_score"`
	HighPainScore *int `yaml:"high_pain_score"`
	MinContacts   *int `yaml:"min_contacts"`
}

type rawScoring struct {
	Base               *int         `yaml:"base"`
	AgeBands           []rawAgeBand `yaml:"age_bands"`
	Signals            []rawRule    `yaml:"signals"`
	Exclusions         []rawRule    `yaml:"exclusions"`
	ExcludeB2C         bool         `yaml:"exclude_b2c"`
	ApplicationsOver   *int         `yaml:"applications_over"`
	ApplicationsWeight *int         `yaml:"applications_weight"`
}

type rawAgeBand struct {
	OverDays int `yaml:"over_days"`
	Weight   int `yaml:"weight"`
}

type rawRule struct {
	Name   string   `yaml:"name"`
	Field  string   `yaml:"field"`
	Weight int      `yaml:"weight"`
	Any    []string `yaml:"any"`
}

type rawSource struct {
	Type     string        `yaml:"type"`
	Path     string        `yaml:"path"`
	Boards   []BoardConfig `yaml:"boards"`
	MinDelay string        `yaml:"min_delay"`
	Retries  *int          `yaml:"retries"`
}

type rawEnrichment struct {
	Provider     string   `yaml:"provider"`
	BaseURL      string   `yaml:"base_url"`
	APIKey       string   `yaml:"api_key"`
	MaxContacts  *int     `yaml:"max_contacts"`
	Timeout      string   `yaml:"timeout"`
	MaxCalls     *int     `yaml:"max_calls"`
	MinDelay     string   `yaml:"min_delay"`
	Retries      *int     `yaml:"retries"`
	RetryDelay   string   `yaml:"retry_delay"`
	VerifyEmails bool     `yaml:"verify_emails"`
	TargetTitles []string `yaml:"target_titles"`
	Cache        rawCache `yaml:"cache"`
}

type rawCache struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
	TTL  string `yaml:"ttl"`
}

type rawAI struct {
	Enabled     bool     `yaml:"enabled"`
	Provider    string   `yaml:"provider"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key"`
	Timeout     string   `yaml:"timeout"`
	MaxTokens   *int     `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Retries     *int     `yaml:"retries"`
	RetryDelay  string   `yaml:"retry_delay"`
	MinDelay    string   `yaml:"min_delay"`
}

type rawExport struct {
	Dir         string `yaml:"dir"`
	Format      string `yaml:"format"`
	MaxContacts *int   `yaml:"max_contacts"`
}

type rawPipeline struct {
	CallTimeout string `yaml:"call_timeout"`
}

// Load reads and parses the YAML config file at path, applies defaults,
// validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault behaves like Load but falls back to Default when path does
// not exist. Defaults are still validated.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

// SecretLookup resolves a named secret from a secondary store such as the
// OS keychain. It returns "" with a nil error when the secret is absent.
type SecretLookup func(name string) (string, error)

// Secret names used for environment and keychain lookups.
const (
	SecretApollo    = "APOLLO_API_KEY"
	SecretOpenAI    = "OPENAI_API_KEY"
	SecretAnthropic = "ANTHROPIC_API_KEY"
	SecretGemini    = "GEMINI_API_KEY"
	SecretSlack     = "SLACK_WEBHOOK_URL"
)

// AISecretName returns the secret name holding the key for provider.
func AISecretName(provider string) string {
	switch provider {
	case "openai":
		return SecretOpenAI
	case "gemini":
		return SecretGemini
	default:
		return SecretAnthropic
	}
}

// ResolveSecrets fills empty API keys and the Slack webhook from the
// environment and then from lookup (which may be nil). A secret is an error
// only when the selected provider needs it.
func (c *Config) ResolveSecrets(lookup SecretLookup) error {
	if c.Enrichment.Provider == "apollo" {
		key, err := resolveSecret(c.Enrichment.APIKey, SecretApollo, lookup)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("%s is not set (env, .env, config or keychain)", SecretApollo)
		}
		c.Enrichment.APIKey = key
	}

	if c.AI.Enabled {
		name := AISecretName(c.AI.Provider)
		key, err := resolveSecret(c.AI.APIKey, name, lookup)
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("%s is not set; required when ai.enabled is true", name)
		}
		c.AI.APIKey = key
	}

	if c.Notification.Type == "slack" {
		url, err := resolveSecret(c.Notification.WebhookURL, SecretSlack, lookup)
		if err != nil {
			return err
		}
		if url == "" {
			return fmt.Errorf("notification.webhook_url (%s) is required when type is \"slack\"", SecretSlack)
		}
		if !strings.HasPrefix(url, slackWebhookPrefix) {
			return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
		}
		c.Notification.WebhookURL = url
	}
	return nil
}

func resolveSecret(current, name string, lookup SecretLookup) (string, error) {
	if current != "" {
		return current, nil
	}
	if v := os.Getenv(name); v != "" {
		return v, nil
	}
	if lookup == nil {
		return "", nil
	}
	v, err := lookup(name)
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", name, err)
	}
	return v, nil
}

// Parse builds a Config from YAML bytes. Environment variables are expanded
// before parsing.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if err := apply(cfg, raw); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func apply(cfg *Config, raw rawConfig) error {
	setInt(&cfg.Thresholds.MinPainScore, raw.Thresholds.MinPainScore)
	setInt(&cfg.Thresholds.HighPainScore, raw.Thresholds.HighPainScore)
	setInt(&cfg.Thresholds.MinContacts, raw.Thresholds.MinContacts)

	if err := applyScoring(&cfg.Scoring, raw.Scoring); err != nil {
		return err
	}

	setString(&cfg.Source.Type, raw.Source.Type)
	setString(&cfg.Source.Path, raw.Source.Path)
	if len(raw.Source.Boards) > 0 {
		cfg.Source.Boards = raw.Source.Boards
	}
	setInt(&cfg.Source.Retries, raw.Source.Retries)
	if err := setDuration(&cfg.Source.MinDelay, raw.Source.MinDelay, "source.min_delay"); err != nil {
		return err
	}

	e := &cfg.Enrichment
	setString(&e.Provider, raw.Enrichment.Provider)
	setString(&e.BaseURL, raw.Enrichment.BaseURL)
	setString(&e.APIKey, raw.Enrichment.APIKey)
	setInt(&e.MaxContacts, raw.Enrichment.MaxContacts)
	setInt(&e.MaxCalls, raw.Enrichment.MaxCalls)
	setInt(&e.Retries, raw.Enrichment.Retries)
	e.VerifyEmails = raw.Enrichment.VerifyEmails
	if len(raw.Enrichment.TargetTitles) > 0 {
		e.TargetTitles = raw.Enrichment.TargetTitles
	}
	setString(&e.Cache.Type, raw.Enrichment.Cache.Type)
	setString(&e.Cache.Path, raw.Enrichment.Cache.Path)
	if err := setDuration(&e.Cache.TTL, raw.Enrichment.Cache.TTL, "enrichment.cache.ttl"); err != nil {
		return err
	}
	if err := setDuration(&e.Timeout, raw.Enrichment.Timeout, "enrichment.timeout"); err != nil {
		return err
	}
	if err := setDuration(&e.MinDelay, raw.Enrichment.MinDelay, "enrichment.min_delay"); err != nil {
		return err
	}
	if err := setDuration(&e.RetryDelay, raw.Enrichment.RetryDelay, "enrichment.retry_delay"); err != nil {
		return err
	}

	a := &cfg.AI
	a.Enabled = raw.AI.Enabled
	if raw.AI.Provider != "" && raw.AI.Provider != a.Provider {
		a.Provider = raw.AI.Provider
		a.BaseURL = defaultBaseURL(a.Provider)
		a.Model = defaultModels[a.Provider]
	}
	setString(&a.BaseURL, raw.AI.BaseURL)
	setString(&a.Model, raw.AI.Model)
	setString(&a.APIKey, raw.AI.APIKey)
	setInt(&a.MaxTokens, raw.AI.MaxTokens)
	setInt(&a.Retries, raw.AI.Retries)
	if raw.AI.Temperature != nil {
		a.Temperature = *raw.AI.Temperature
	}
	if err := setDuration(&a.Timeout, raw.AI.Timeout, "ai.timeout"); err != nil {
		return err
	}
	if err := setDuration(&a.RetryDelay, raw.AI.RetryDelay, "ai.retry_delay"); err != nil {
		return err
	}
	if err := setDuration(&a.MinDelay, raw.AI.MinDelay, "ai.min_delay"); err != nil {
		return err
	}

	setString(&cfg.Export.Dir, raw.Export.Dir)
	setString(&cfg.Export.Format, raw.Export.Format)
	setInt(&cfg.Export.MaxContacts, raw.Export.MaxContacts)

	setString(&cfg.Notification.Type, raw.Notification.Type)
	setString(&cfg.Notification.WebhookURL, raw.Notification.WebhookURL)

	return setDuration(&cfg.Pipeline.CallTimeout, raw.Pipeline.CallTimeout, "pipeline.call_timeout")
}

func applyScoring(rules *scoring.Rules, raw rawScoring) error {
	setInt(&rules.Base, raw.Base)
	setInt(&rules.ApplicationsOver, raw.ApplicationsOver)
	setInt(&rules.ApplicationsWeight, raw.ApplicationsWeight)

	if len(raw.AgeBands) > 0 {
		rules.AgeBands = nil
		for _, b := range raw.AgeBands {
			rules.AgeBands = append(rules.AgeBands, scoring.AgeBand{OverDays: b.OverDays, Weight: b.Weight})
		}
	}

	if len(raw.Signals) > 0 {
		rules.Signals = nil
		for i, r := range raw.Signals {
			field, err := parseField(r.Field, fmt.Sprintf("scoring.signals[%d]", i))
			if err != nil {
				return err
			}
			rules.Signals = append(rules.Signals, scoring.Signal{Name: r.Name, Field: field, Weight: r.Weight, Keywords: r.Any})
		}
	}

	if len(raw.Exclusions) > 0 {
		rules.Exclusions = nil
		for i, r := range raw.Exclusions {
			field, err := parseField(r.Field, fmt.Sprintf("scoring.exclusions[%d]", i))
			if err != nil {
				return err
			}
			rules.Exclusions = append(rules.Exclusions, scoring.Exclusion{Name: r.Name, Field: field, Keywords: r.Any})
		}
	}

	if raw.ExcludeB2C {
		rules.Exclusions = append(rules.Exclusions, scoring.B2CExclusion())
	}
	return nil
}

func parseField(s, where string) (scoring.Field, error) {
	switch scoring.Field(strings.ToLower(s)) {
	case scoring.FieldTitle:
		return scoring.FieldTitle, nil
	case scoring.FieldDescription, "":
		return scoring.FieldDescription, nil
	default:
		return "", fmt.Errorf("%s.field must be \"title\" or \"description\", got %q", where, s)
	}
}

func defaultBaseURL(provider string) string {
	switch provider {
	case "openai":
		return defaultOpenAIBaseURL
	case "anthropic":
		return defaultAnthropicBaseURL
	default:
		return ""
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v, key string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

var structValidator = validator.New()

func validate(cfg *Config) error {
	for _, s := range []any{cfg.Thresholds, cfg.Source, cfg.Enrichment, cfg.Enrichment.Cache, cfg.AI, cfg.Export, cfg.Notification} {
		if err := structValidator.Struct(s); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	if cfg.Source.Type == "file" && cfg.Source.Path == "" {
		return fmt.Errorf("source.path is required when source.type is \"file\"")
	}
	if cfg.Source.Type == "boards" && len(cfg.Source.Boards) == 0 {
		return fmt.Errorf("source.boards must list at least one board when source.type is \"boards\"")
	}
	for i, b := range cfg.Source.Boards {
		if err := structValidator.Struct(b); err != nil {
			return fmt.Errorf("invalid source.boards[%d]: %w", i, err)
		}
	}

	if cfg.Enrichment.Provider == "apollo" && cfg.Enrichment.BaseURL == "" {
		return fmt.Errorf("enrichment.base_url is required when enrichment.provider is \"apollo\"")
	}
	if cfg.Enrichment.Cache.Type == "sqlite" && cfg.Enrichment.Cache.Path == "" {
		return fmt.Errorf("enrichment.cache.path is required when enrichment.cache.type is \"sqlite\"")
	}

	if cfg.Notification.WebhookURL != "" && !strings.HasPrefix(cfg.Notification.WebhookURL, slackWebhookPrefix) {
		return fmt.Errorf("notification.webhook_url must start with %s", slackWebhookPrefix)
	}

	if cfg.AI.Enabled {
		if cfg.AI.BaseURL == "" && cfg.AI.Provider != "gemini" {
			return fmt.Errorf("ai.base_url is required for provider %q", cfg.AI.Provider)
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	if cfg.Thresholds.HighPainScore < cfg.Thresholds.MinPainScore {
		return fmt.Errorf("thresholds.high_pain_score (%d) must be >= min_pain_score (%d)",
			cfg.Thresholds.HighPainScore, cfg.Thresholds.MinPainScore)
	}
	if cfg.Pipeline.CallTimeout <= 0 {
		return fmt.Errorf("pipeline.call_timeout must be positive, got %v", cfg.Pipeline.CallTimeout)
	}
	for i, b := range cfg.Scoring.AgeBands {
		if b.OverDays < 0 {
			return fmt.Errorf("scoring.age_bands[%d].over_days must be >= 0", i)
		}
	}
	return nil
}
