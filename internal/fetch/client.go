// Package fetch implements the memoizing HTTP client used by every source.
// A fetch is a single bounded GET with a fixed identifying header set; the
// body bytes are cached per key for a freshness window so a cycle's worth of
// parsers hitting the same URL costs one network round-trip.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/outagewatch/outagewatch/internal/clock"
	"github.com/outagewatch/outagewatch/internal/metrics"
	"github.com/outagewatch/outagewatch/internal/status"
)

const (
	defaultTimeout  = 12 * time.Second
	defaultCacheTTL = 60 * time.Second
	defaultAccept   = "application/json, application/rss+xml, application/atom+xml, text/html;q=0.9, */*;q=0.8"

	// maxBodyBytes bounds how much of a response is read; status payloads
	// are small and anything larger is not worth caching.
	maxBodyBytes = 4 << 20
)

// Config controls client behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
	CacheTTL  time.Duration
}

// Result carries the body bytes and the moment they were actually fetched.
// Cache hits return the original fetch timestamp, not the lookup time.
type Result struct {
	Body      []byte
	FetchedAt time.Time
}

type cacheEntry struct {
	body      []byte
	fetchedAt time.Time
	expiresAt time.Time
}

// Client performs memoized HTTP GETs.
type Client struct {
	httpClient *http.Client
	cfg        Config
	clk        clock.Clock
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// New builds a Client. A nil logger is replaced with a nop logger.
func New(cfg Config, clk clock.Clock, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "outagewatch/1.0"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		clk:        clk,
		logger:     logger,
		cache:      make(map[string]cacheEntry),
	}
}

// Fetch performs a memoized GET against url with the standard header set.
func (c *Client) Fetch(ctx context.Context, url string) (Result, error) {
	return c.FetchWithHeaders(ctx, url, nil)
}

// FetchWithHeaders performs a memoized GET with extra headers layered over
// the standard set. The cache key covers the URL and the extra headers so
// variant header sets never alias each other.
func (c *Client) FetchWithHeaders(ctx context.Context, url string, extra map[string]string) (Result, error) {
	key := cacheKey(url, extra)

	if res, ok := c.lookup(key); ok {
		metrics.ObserveCacheLookup(true)
		return res, nil
	}
	metrics.ObserveCacheLookup(false)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another flight may have populated the entry between the lookup
		// above and acquiring the flight.
		if res, ok := c.lookup(key); ok {
			return res, nil
		}
		res, err := c.doFetch(ctx, url, extra)
		if err != nil {
			return Result{}, err
		}
		c.store(key, res)
		return res, nil
	})
	if err != nil {
		return Result{}, err
	}
	return v.(Result), nil
}

// FetchJSON fetches url and unmarshals the body into v. Bytes that are not
// valid UTF-8 are replaced before decoding; a malformed document yields a
// ParseError.
func (c *Client) FetchJSON(ctx context.Context, url string, v any) (time.Time, error) {
	res, err := c.Fetch(ctx, url)
	if err != nil {
		return time.Time{}, err
	}
	clean := strings.ToValidUTF8(string(res.Body), "�")
	if err := json.Unmarshal([]byte(clean), v); err != nil {
		return time.Time{}, &status.ParseError{URL: url, Err: err}
	}
	return res.FetchedAt, nil
}

func (c *Client) lookup(key string) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || c.clk.Now().After(entry.expiresAt) {
		return Result{}, false
	}
	return Result{Body: entry.body, FetchedAt: entry.fetchedAt}, true
}

func (c *Client) store(key string, res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{
		body:      res.Body,
		fetchedAt: res.FetchedAt,
		expiresAt: res.FetchedAt.Add(c.cfg.CacheTTL),
	}
}

func (c *Client) doFetch(ctx context.Context, url string, extra map[string]string) (Result, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, &status.FetchError{URL: url, Cause: status.FetchConnection, Err: err}
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", defaultAccept)
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveFetch("error")
		return Result{}, classifyTransportError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ObserveFetch(fmt.Sprintf("status_%d", resp.StatusCode))
		return Result{}, &status.FetchError{URL: url, Cause: status.FetchStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ObserveFetch("error")
		return Result{}, &status.FetchError{URL: url, Cause: status.FetchConnection, Err: err}
	}

	metrics.ObserveFetch("ok")
	fetchedAt := c.clk.Now()
	c.logger.Debug("fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.Int("status", resp.StatusCode),
	)
	return Result{Body: body, FetchedAt: fetchedAt}, nil
}

func classifyTransportError(url string, err error) *status.FetchError {
	cause := status.FetchConnection
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		cause = status.FetchTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		cause = status.FetchTimeout
	}
	return &status.FetchError{URL: url, Cause: cause, Err: err}
}

func cacheKey(url string, extra map[string]string) string {
	if len(extra) == 0 {
		return url
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteByte('\n')
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(extra[k])
	}
	return b.String()
}
