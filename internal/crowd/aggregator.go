// Package crowd checks community outage-report volume for entities that have
// no official machine-readable source. Report feeds are served by many
// independently run mirrors, so every fetch goes through the mirror resolver.
package crowd

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/outagewatch/outagewatch/internal/clock"
	"github.com/outagewatch/outagewatch/internal/metrics"
	"github.com/outagewatch/outagewatch/internal/mirror"
	"github.com/outagewatch/outagewatch/internal/status"
)

const (
	defaultFeedCount   = 5
	defaultConcurrency = 4
)

// The two accepted report-count title forms: "<N> report(s)" and
// "report(s): <N>" / "report(s) - <N>", each case-insensitive. The leading
// form is tried first.
var (
	countLeadingPattern  = regexp.MustCompile(`(?i)(\d+)\s+reports?\b`)
	countTrailingPattern = regexp.MustCompile(`(?i)reports?\s*[:\-]\s*(\d+)`)
)

// Config controls Aggregator behavior.
type Config struct {
	// FeedCount is how many recent entries each entity's feed is asked for
	// and scanned.
	FeedCount int
	// Concurrency bounds how many entities are checked at once.
	Concurrency int
}

// Aggregator runs crowd checks over a group of entities.
type Aggregator struct {
	resolver *mirror.Resolver
	cfg      Config
	clk      clock.Clock
	logger   *zap.Logger
}

// New builds an Aggregator. A nil logger is replaced with a nop logger.
func New(resolver *mirror.Resolver, cfg Config, clk clock.Clock, logger *zap.Logger) *Aggregator {
	if cfg.FeedCount <= 0 {
		cfg.FeedCount = defaultFeedCount
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{resolver: resolver, cfg: cfg, clk: clk, logger: logger}
}

// Run checks every entity in the group concurrently, producing exactly one
// check result per entity and the alerts that breached their thresholds,
// sorted by report count descending. Per-entity failure never aborts the run.
func (a *Aggregator) Run(ctx context.Context, group string, entities []status.CrowdEntityDescriptor) status.CrowdRun {
	checks := make([]status.CrowdCheckResult, len(entities))
	alerts := make([]status.CrowdAlert, 0)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(a.cfg.Concurrency)

	for i, entity := range entities {
		g.Go(func() error {
			check, alert := a.CheckEntity(ctx, entity)
			checks[i] = check
			if alert != nil {
				mu.Lock()
				alerts = append(alerts, *alert)
				mu.Unlock()
			}
			return nil
		})
	}
	// Units never return errors; Wait is just the completion barrier.
	_ = g.Wait()

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].ReportCount > alerts[j].ReportCount
	})

	return status.CrowdRun{
		ID:     uuid.NewString(),
		Group:  group,
		At:     a.clk.Now(),
		Alerts: alerts,
		Checks: checks,
	}
}

// CheckEntity fetches one entity's report feed and compares the maximum
// report count in the recent entries against the entity's threshold.
func (a *Aggregator) CheckEntity(ctx context.Context, entity status.CrowdEntityDescriptor) (status.CrowdCheckResult, *status.CrowdAlert) {
	res, err := a.resolver.Resolve(ctx, func(base string) string {
		return feedPath(base, entity.Slug, a.cfg.FeedCount)
	})
	if err != nil {
		metrics.ObserveCrowdCheck("fetch_failed")
		a.logger.Warn("crowd check failed",
			zap.String("entity", entity.Name),
			zap.Error(err),
		)
		return status.CrowdCheckResult{
			Descriptor:  entity,
			OK:          false,
			FetchedAt:   a.clk.Now(),
			Err:         err.Error(),
			ReportCount: -1,
		}, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(res.Body))
	if err != nil {
		metrics.ObserveCrowdCheck("parse_failed")
		return status.CrowdCheckResult{
			Descriptor:  entity,
			OK:          false,
			MirrorUsed:  res.Mirror,
			FetchedAt:   res.FetchedAt,
			Err:         (&status.ParseError{URL: res.URL, Err: err}).Error(),
			ReportCount: -1,
		}, nil
	}

	metrics.ObserveCrowdCheck("ok")

	check := status.CrowdCheckResult{
		Descriptor: entity,
		OK:         true,
		MirrorUsed: res.Mirror,
		FetchedAt:  res.FetchedAt,
	}
	alert := scanEntries(feed.Items, a.cfg.FeedCount, entity, res.URL, &check)
	if alert != nil {
		metrics.ObserveCrowdAlert()
	}
	return check, alert
}

// scanEntries finds the maximum report count among the recent entries and
// returns an alert when it reaches the threshold. When no title carries a
// count, the newest entry becomes the representative headline and no alert
// can fire. The check result's diagnostics are filled in either way.
func scanEntries(items []*gofeed.Item, window int, entity status.CrowdEntityDescriptor, feedURL string, check *status.CrowdCheckResult) *status.CrowdAlert {
	if len(items) > window {
		items = items[:window]
	}

	maxCount := -1
	var maxItem *gofeed.Item
	for _, item := range items {
		if item == nil {
			continue
		}
		count, ok := extractReportCount(item.Title)
		if !ok {
			continue
		}
		if count > maxCount {
			maxCount = count
			maxItem = item
		}
	}

	check.ReportCount = maxCount
	if maxItem != nil {
		check.Headline = maxItem.Title
	} else if len(items) > 0 && items[0] != nil {
		check.Headline = items[0].Title
	}

	if maxItem == nil || maxCount < entity.Threshold {
		return nil
	}

	alert := &status.CrowdAlert{
		Name:        entity.Name,
		ReportCount: maxCount,
		Threshold:   entity.Threshold,
		Headline:    maxItem.Title,
		SourceLink:  maxItem.Link,
		FeedURL:     feedURL,
	}
	if maxItem.PublishedParsed != nil {
		alert.ObservedAt = maxItem.PublishedParsed.UTC()
	}
	return alert
}

// extractReportCount pulls a numeric report count out of a feed entry title,
// trying the "<N> report(s)" form first and falling back to
// "report(s): <N>" / "report(s) - <N>".
func extractReportCount(title string) (int, bool) {
	for _, pattern := range []*regexp.Regexp{countLeadingPattern, countTrailingPattern} {
		m := pattern.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		count, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return count, true
	}
	return 0, false
}

func feedPath(base, slug string, count int) string {
	return fmt.Sprintf("%s/outagereport/%s/%d", strings.TrimRight(base, "/"), slug, count)
}
