// Package mirror resolves a logical feed served by several independently
// operated endpoints of varying uptime. No single mirror may be assumed
// available, so every failure advances to the next candidate.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

// transientStatuses are HTTP codes that individual mirrors serve routinely
// (rate limits, bot walls, flaky upstreams) without implying the others will.
var transientStatuses = map[int]struct{}{
	403: {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// Result is the first successful mirror response.
type Result struct {
	Body      []byte
	FetchedAt time.Time
	// Mirror is the base endpoint that answered.
	Mirror string
	// URL is the full URL that was fetched.
	URL string
}

// Resolver tries candidate endpoints in a fixed preference order.
type Resolver struct {
	client  *fetch.Client
	mirrors []string
	logger  *zap.Logger
}

// New builds a Resolver over the given base endpoints, in preference order.
func New(client *fetch.Client, mirrors []string, logger *zap.Logger) (*Resolver, error) {
	if len(mirrors) == 0 {
		return nil, fmt.Errorf("mirror: at least one endpoint required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, mirrors: mirrors, logger: logger}, nil
}

// Mirrors returns the configured endpoints in preference order.
func (r *Resolver) Mirrors() []string {
	out := make([]string, len(r.mirrors))
	copy(out, r.mirrors)
	return out
}

// Resolve fetches buildPath(base) from each mirror in order and returns the
// first success. Transient failures are expected; non-transient ones still
// advance to the next candidate, since upstream mirrors vary in reliability.
// Exhausting every candidate yields AllMirrorsFailed with the last error.
func (r *Resolver) Resolve(ctx context.Context, buildPath func(base string) string) (Result, error) {
	var lastErr error
	for _, base := range r.mirrors {
		url := buildPath(base)
		res, err := r.client.Fetch(ctx, url)
		if err == nil {
			return Result{Body: res.Body, FetchedAt: res.FetchedAt, Mirror: base, URL: url}, nil
		}
		lastErr = err
		r.logger.Debug("mirror failed",
			zap.String("mirror", base),
			zap.Bool("transient", isTransient(err)),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	return Result{}, &status.AllMirrorsFailed{Attempts: len(r.mirrors), LastErr: lastErr}
}

// isTransient reports whether the error belongs to the retry-next class:
// a transient HTTP status or any transport-level failure.
func isTransient(err error) bool {
	var fe *status.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	if fe.Cause != status.FetchStatus {
		return true
	}
	_, ok := transientStatuses[fe.StatusCode]
	return ok
}
