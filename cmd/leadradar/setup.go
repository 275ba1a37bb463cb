package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/leadradar/internal/ai"
	"github.com/amishk599/leadradar/internal/config"
	"github.com/amishk599/leadradar/internal/enrich"
	"github.com/amishk599/leadradar/internal/export"
	"github.com/amishk599/leadradar/internal/filter"
	"github.com/amishk599/leadradar/internal/jobsource"
	"github.com/amishk599/leadradar/internal/model"
	"github.com/amishk599/leadradar/internal/notifier"
	"github.com/amishk599/leadradar/internal/pipeline"
	"github.com/amishk599/leadradar/internal/ratelimit"
	"github.com/amishk599/leadradar/internal/retry"
	"github.com/amishk599/leadradar/internal/scoring"
	"github.com/amishk599/leadradar/internal/store"
)

// app holds the wired pipeline and everything that must be closed after it.
type app struct {
	orchestrator *pipeline.Orchestrator
	engine       *scoring.Engine
	exporter     *export.FileExporter
	cache        *enrich.CachedEnricher
	closers      []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func setupSource(cfg *config.Config, logger *slog.Logger) (model.JobSource, error) {
	switch cfg.Source.Type {
	case "file":
		logger.Info("using file job source", "path", cfg.Source.Path)
		return jobsource.NewFileSource(cfg.Source.Path, logger), nil
	case "boards":
		boards := make([]jobsource.Board, len(cfg.Source.Boards))
		for i, b := range cfg.Source.Boards {
			boards[i] = jobsource.Board{ATS: b.ATS, Token: b.Token, Company: b.Company, Website: b.Website}
		}
		logger.Info("using job board source", "boards", len(boards))
		client := &http.Client{Timeout: 30 * time.Second}
		return jobsource.NewBoardsSource(boards, client, cfg.Source.MinDelay, cfg.Source.Retries, logger)
	default:
		return jobsource.NewMockSource(time.Now, logger), nil
	}
}

func setupFilter(cfg *config.Config, logger *slog.Logger) (*filter.QualificationFilter, *scoring.Engine) {
	engine := scoring.NewEngine(cfg.Scoring)
	return filter.NewQualificationFilter(engine, cfg.Thresholds.MinPainScore, logger), engine
}

func newApollo(cfg config.EnrichmentConfig, logger *slog.Logger) *enrich.ApolloEnricher {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return enrich.NewApolloEnricher(cfg.BaseURL, cfg.APIKey, httpClient, logger,
		enrich.WithTargetTitles(cfg.TargetTitles),
		enrich.WithEmailVerification(cfg.VerifyEmails),
	)
}

// setupEnricher builds Cache → Budget → RateLimit → Retry → provider.
func setupEnricher(cfg config.EnrichmentConfig, logger *slog.Logger) (*enrich.CachedEnricher, io.Closer, error) {
	var e model.Enricher
	switch cfg.Provider {
	case "apollo":
		e = newApollo(cfg, logger)
		e = retry.NewEnricher(e, cfg.Retries, cfg.RetryDelay, logger)
		e = ratelimit.NewEnricher(e, ratelimit.NewProviderLimiter(cfg.MinDelay), cfg.Provider)
		logger.Info("using apollo enricher", "min_delay", cfg.MinDelay.String(), "retries", cfg.Retries)
	default:
		e = enrich.NewMockEnricher()
		logger.Info("using mock enricher")
	}

	if cfg.MaxCalls > 0 {
		e = enrich.NewBudgetEnricher(e, cfg.MaxCalls, logger)
		logger.Info("enrichment budget configured", "max_calls", cfg.MaxCalls)
	}

	var (
		cache  model.ContactCache
		closer io.Closer
	)
	switch cfg.Cache.Type {
	case "sqlite":
		sc, err := store.NewSQLiteCache(cfg.Cache.Path, cfg.Cache.TTL)
		if err != nil {
			return nil, nil, fmt.Errorf("open contact cache: %w", err)
		}
		if cfg.Cache.TTL > 0 {
			if n, err := sc.Prune(cfg.Cache.TTL); err != nil {
				logger.Warn("pruning contact cache failed", "error", err)
			} else if n > 0 {
				logger.Info("pruned expired cache entries", "count", n)
			}
		}
		cache, closer = sc, sc
	case "memory":
		cache = store.NewMemoryCache()
	default:
		cache = store.NewNopCache()
	}

	return enrich.NewCachedEnricher(e, cache, logger), closer, nil
}

// setupSummarizer builds LLMSummarizer → RateLimit → Retry → provider, or the
// template summarizer when AI is disabled.
func setupSummarizer(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (model.Summarizer, io.Closer, error) {
	if !cfg.Enabled {
		logger.Info("ai disabled, using template summaries")
		return ai.NewTemplateSummarizer(), nil, nil
	}

	opts := ai.Options{Model: cfg.Model, MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var (
		provider ai.LLMProvider
		closer   io.Closer
	)
	switch cfg.Provider {
	case "openai":
		provider = ai.NewOpenAIProvider(cfg.BaseURL, cfg.APIKey, opts, httpClient)
	case "anthropic":
		provider = ai.NewAnthropicProvider(cfg.BaseURL, cfg.APIKey, opts, httpClient)
	case "gemini":
		gp, err := ai.NewGeminiProvider(ctx, cfg.APIKey, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		provider, closer = gp, gp
	default:
		return nil, nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}

	provider = retry.NewProvider(provider, cfg.Retries, cfg.RetryDelay, logger)
	provider = ratelimit.NewProvider(provider, ratelimit.NewProviderLimiter(cfg.MinDelay), cfg.Provider)
	logger.Info("ai summaries enabled", "provider", cfg.Provider, "model", cfg.Model)
	return ai.NewLLMSummarizer(provider, ai.JobSummaryTemplate, logger), closer, nil
}

func setupNotifier(cfg *config.Config, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, &http.Client{Timeout: 30 * time.Second}, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

func settingsFrom(cfg *config.Config) pipeline.Settings {
	return pipeline.Settings{
		Criteria: model.Criteria{
			MinContacts:  cfg.Thresholds.MinContacts,
			MinPainScore: cfg.Thresholds.MinPainScore,
		},
		MaxContacts:   cfg.Enrichment.MaxContacts,
		HighPainScore: cfg.Thresholds.HighPainScore,
	}
}

// setupApp wires the full pipeline. The caller must Close the app.
func setupApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	cached, cacheCloser, err := setupEnricher(cfg.Enrichment, logger)
	if err != nil {
		return nil, err
	}
	a.cache = cached
	if cacheCloser != nil {
		a.closers = append(a.closers, cacheCloser)
	}

	summarizer, aiCloser, err := setupSummarizer(ctx, cfg.AI, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if aiCloser != nil {
		a.closers = append(a.closers, aiCloser)
	}

	a.exporter, err = export.NewFileExporter(cfg.Export.Dir, export.Format(cfg.Export.Format), cfg.Export.MaxContacts, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	source, err := setupSource(cfg, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("job source: %w", err)
	}

	qf, engine := setupFilter(cfg, logger)
	a.engine = engine
	a.orchestrator = pipeline.NewOrchestrator(
		source,
		qf,
		pipeline.NewEnrichmentGateway(cached, cfg.Pipeline.CallTimeout, logger),
		pipeline.NewSummaryGateway(summarizer, cfg.Pipeline.CallTimeout, logger),
		a.exporter,
		settingsFrom(cfg),
		logger,
		pipeline.WithNotifier(setupNotifier(cfg, logger)),
	)
	return a, nil
}

// isExportLocked reports whether err came from a concurrent run holding the
// export directory.
func isExportLocked(err error) bool {
	return errors.Is(err, export.ErrLocked)
}
