// Package poll fans provider descriptors out to their parsers concurrently
// and collects exactly one result per provider, failures included.
package poll

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/outagewatch/outagewatch/internal/clock"
	"github.com/outagewatch/outagewatch/internal/metrics"
	"github.com/outagewatch/outagewatch/internal/source"
	"github.com/outagewatch/outagewatch/internal/status"
)

const (
	minWorkers = 4
	maxWorkers = 12
)

// Scheduler runs poll cycles over a provider set.
type Scheduler struct {
	registry *source.Registry
	clk      clock.Clock
	logger   *zap.Logger
}

// New builds a Scheduler. A nil logger is replaced with a nop logger.
func New(registry *source.Registry, clk clock.Clock, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{registry: registry, clk: clk, logger: logger}
}

// Cycle polls every provider concurrently and returns exactly one result per
// provider, ranked most severe first. A unit's failure (fetch error, parse
// error, unrecognized kind, even a panic) becomes an unknown-level result
// and never aborts the batch. An empty provider set yields one placeholder
// row so the operator never sees a silent empty state.
func (s *Scheduler) Cycle(ctx context.Context, providers []status.ProviderDescriptor) []status.SourceResult {
	start := time.Now()

	if len(providers) == 0 {
		metrics.ObserveCycle("empty", time.Since(start))
		return []status.SourceResult{{
			Descriptor: status.ProviderDescriptor{Name: "(no providers)"},
			Level:      status.LevelUnknown,
			Details:    []string{"no providers configured; nothing to poll"},
			FetchedAt:  s.clk.Now(),
		}}
	}

	results := make([]status.SourceResult, len(providers))

	g := new(errgroup.Group)
	g.SetLimit(workerCount(len(providers)))
	for i, provider := range providers {
		g.Go(func() error {
			results[i] = s.pollOne(ctx, provider)
			return nil
		})
	}
	// Units never return errors; Wait is the completion barrier.
	_ = g.Wait()

	Rank(results)

	for _, res := range results {
		metrics.ObserveSourceResult(string(res.Descriptor.Kind), string(res.Level))
	}
	metrics.ObserveCycle("ok", time.Since(start))
	s.logger.Info("poll cycle complete",
		zap.Int("providers", len(providers)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return results
}

// pollOne runs a single provider's parser, converting every failure mode
// into an unknown-level result with an explanatory detail.
func (s *Scheduler) pollOne(ctx context.Context, provider status.ProviderDescriptor) (res status.SourceResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("parser panicked",
				zap.String("provider", provider.Name),
				zap.Any("panic", r),
			)
			res = s.unknownResult(provider, fmt.Sprintf("internal error: %v", r))
		}
	}()

	parser, err := s.registry.Lookup(provider.Kind)
	if err != nil {
		return s.unknownResult(provider, err.Error())
	}

	summary, err := parser.Summarize(ctx, provider)
	if err != nil {
		s.logger.Warn("source check failed",
			zap.String("provider", provider.Name),
			zap.String("kind", string(provider.Kind)),
			zap.Error(err),
		)
		return s.unknownResult(provider, err.Error())
	}

	return status.SourceResult{
		Descriptor: provider,
		Level:      summary.Level,
		Details:    status.TrimDetails(summary.Details),
		FetchedAt:  summary.FetchedAt,
	}
}

func (s *Scheduler) unknownResult(provider status.ProviderDescriptor, detail string) status.SourceResult {
	return status.SourceResult{
		Descriptor: provider,
		Level:      status.LevelUnknown,
		Details:    []string{detail},
		FetchedAt:  s.clk.Now(),
	}
}

// workerCount scales the pool to the provider count within a fixed band.
func workerCount(n int) int {
	switch {
	case n < minWorkers:
		return minWorkers
	case n > maxWorkers:
		return maxWorkers
	default:
		return n
	}
}
