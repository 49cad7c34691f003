package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/pugtl"
	"github.com/ZaguanLabs/pugtl/cache"
	"github.com/ZaguanLabs/pugtl/detector"
	"github.com/ZaguanLabs/pugtl/processor"
	"github.com/ZaguanLabs/pugtl/provider"
)

// buildProvider creates the configured backend wrapped, from the inside
// out, in the rate limiter, retries and circuit breaker.
func buildProvider(ctx context.Context, cfg *config, logger zerolog.Logger) (pugtl.Provider, error) {
	var base pugtl.Provider
	switch cfg.Provider {
	case "google":
		base = provider.NewGoogleProvider(provider.GoogleConfig{})
	case "openai":
		base = provider.NewOpenAIProvider(provider.OpenAIConfig{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "gemini":
		p, err := provider.NewGeminiProvider(ctx, provider.GeminiConfig{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
		})
		if err != nil {
			return nil, err
		}
		base = p
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}

	var p pugtl.Provider = pugtl.NewRateLimitedProvider(base, pugtl.RateLimitConfig{
		RequestsPerMinute: cfg.RPM,
		BurstSize:         cfg.Burst,
	})

	if cfg.Retries > 0 {
		retry := pugtl.DefaultRetryConfig()
		retry.MaxRetries = cfg.Retries
		retry.Logger = logger
		p = pugtl.NewRetryableProvider(p, retry)
	}

	if cfg.BreakerFailures > 0 {
		p = pugtl.NewBreakerProvider(p, pugtl.BreakerConfig{
			MaxFailures: uint32(cfg.BreakerFailures),
			Logger:      logger,
		})
	}

	return p, nil
}

// buildCache returns the run's cache and a function releasing it. With a
// Redis URL the in-memory cache sits in front of Redis.
func buildCache(ctx context.Context, cfg *config, logger zerolog.Logger) (cache.Snapshotter, func(), error) {
	memory := cache.NewInMemoryCache(cfg.CacheTTL)
	var store cache.Snapshotter = memory
	closeStore := func() {}

	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:    cfg.RedisURL,
			TTL:    cfg.CacheTTL,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		store = cache.NewTiered(memory, redisCache, logger)
		closeStore = func() { redisCache.Close() }
	}

	if cfg.CacheImport != "" {
		result, err := cache.NewImporter(store).ImportFromFile(cfg.CacheImport)
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("importing cache: %w", err)
		}
		logger.Info().
			Int("imported", result.Imported).
			Int("skipped", result.Skipped).
			Int("failed", result.Failed).
			Str("path", cfg.CacheImport).
			Msg("imported cache")
	}

	return store, closeStore, nil
}

// buildTranslator assembles the translator. A dry run has no backend.
func buildTranslator(ctx context.Context, cfg *config, store cache.Snapshotter, logger zerolog.Logger) (*pugtl.Translator, error) {
	var backend pugtl.Provider
	if !cfg.DryRun {
		p, err := buildProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		backend = p
	}

	var langDetector pugtl.LanguageDetector
	if !cfg.NoDetect {
		started := time.Now()
		langDetector = detector.NewLingua()
		logger.Debug().Dur("took", time.Since(started)).Msg("language detector ready")
	}

	return pugtl.NewTranslator(backend,
		pugtl.WithCache(store),
		pugtl.WithHeuristic(pugtl.NewHeuristic(langDetector).WithKeywords(cfg.Keywords...)),
		pugtl.WithProcessor(processor.NewPugProcessor()),
		pugtl.WithProcessor(processor.NewHTMLProcessor()),
		pugtl.WithContext(cfg.Context),
		pugtl.WithExcludedTerms(cfg.Exclude),
		pugtl.WithDryRun(cfg.DryRun),
		pugtl.WithLogger(logger),
	), nil
}
