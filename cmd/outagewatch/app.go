package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/outagewatch/outagewatch/internal/clock/system"
	"github.com/outagewatch/outagewatch/internal/config"
	"github.com/outagewatch/outagewatch/internal/crowd"
	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/logging"
	"github.com/outagewatch/outagewatch/internal/mirror"
	"github.com/outagewatch/outagewatch/internal/poll"
	"github.com/outagewatch/outagewatch/internal/source"
	"github.com/outagewatch/outagewatch/internal/state"
)

// app holds the long-lived services every subcommand wires the same way.
type app struct {
	cfg        config.Config
	sources    config.SourceSet
	logger     *zap.Logger
	scheduler  *poll.Scheduler
	aggregator *crowd.Aggregator
	store      *state.Store
	clk        *system.Clock
}

// buildApp loads configuration and constructs the service graph.
func buildApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	sources, err := config.LoadSources(sourcesFile)
	if err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	clk := system.New()
	client := fetch.New(fetch.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.FetchTimeout(),
		CacheTTL:  cfg.CacheTTL(),
	}, clk, logger.Named("fetch"))

	resolver, err := mirror.New(client, cfg.Crowd.Mirrors, logger.Named("mirror"))
	if err != nil {
		return nil, fmt.Errorf("init mirror resolver: %w", err)
	}

	registry := source.NewRegistry(client, clk)
	scheduler := poll.New(registry, clk, logger.Named("poll"))
	aggregator := crowd.New(resolver, crowd.Config{
		FeedCount:   cfg.Crowd.FeedCount,
		Concurrency: cfg.Crowd.Concurrency,
	}, clk, logger.Named("crowd"))

	return &app{
		cfg:        cfg,
		sources:    sources,
		logger:     logger,
		scheduler:  scheduler,
		aggregator: aggregator,
		store:      state.NewStore(),
		clk:        clk,
	}, nil
}

// close flushes the logger.
func (a *app) close() {
	_ = a.logger.Sync()
}
