package mirror

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/outagewatch/outagewatch/internal/fetch"
	"github.com/outagewatch/outagewatch/internal/status"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func newClient() *fetch.Client {
	return fetch.New(fetch.Config{}, &fixedClock{now: time.Now().UTC()}, nil)
}

func failingServer(t *testing.T, code int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", code)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func okServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolver_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	a := failingServer(t, http.StatusServiceUnavailable)
	b := failingServer(t, http.StatusTooManyRequests)
	c := okServer(t, "feed body")

	resolver, err := New(newClient(), []string{a.URL, b.URL, c.URL}, nil)
	require.NoError(t, err)

	res, err := resolver.Resolve(context.Background(), func(base string) string { return base + "/feed" })
	require.NoError(t, err)
	require.Equal(t, "feed body", string(res.Body))
	require.Equal(t, c.URL, res.Mirror)
	require.Equal(t, c.URL+"/feed", res.URL)
}

func TestResolver_AllFailedCarriesLastError(t *testing.T) {
	t.Parallel()

	a := failingServer(t, http.StatusServiceUnavailable)
	b := failingServer(t, http.StatusTooManyRequests)
	c := failingServer(t, http.StatusInternalServerError)

	resolver, err := New(newClient(), []string{a.URL, b.URL, c.URL}, nil)
	require.NoError(t, err)

	_, err = resolver.Resolve(context.Background(), func(base string) string { return base + "/feed" })

	var amf *status.AllMirrorsFailed
	require.ErrorAs(t, err, &amf)
	require.Equal(t, 3, amf.Attempts)

	// The retained error is the last mirror's.
	var fe *status.FetchError
	require.ErrorAs(t, amf.LastErr, &fe)
	require.Equal(t, http.StatusInternalServerError, fe.StatusCode)
}

func TestResolver_NonTransientFailureStillAdvances(t *testing.T) {
	t.Parallel()

	// 404 is not in the transient set, but mirrors vary in reliability so
	// the resolver must not fail fast.
	a := failingServer(t, http.StatusNotFound)
	b := okServer(t, "served by b")

	resolver, err := New(newClient(), []string{a.URL, b.URL}, nil)
	require.NoError(t, err)

	res, err := resolver.Resolve(context.Background(), func(base string) string { return base + "/feed" })
	require.NoError(t, err)
	require.Equal(t, b.URL, res.Mirror)
}

func TestResolver_RequiresAtLeastOneMirror(t *testing.T) {
	t.Parallel()

	_, err := New(newClient(), nil, nil)
	require.Error(t, err)
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	require.True(t, isTransient(&status.FetchError{Cause: status.FetchStatus, StatusCode: 503}))
	require.True(t, isTransient(&status.FetchError{Cause: status.FetchStatus, StatusCode: 429}))
	require.True(t, isTransient(&status.FetchError{Cause: status.FetchTimeout}))
	require.True(t, isTransient(&status.FetchError{Cause: status.FetchConnection}))
	require.False(t, isTransient(&status.FetchError{Cause: status.FetchStatus, StatusCode: 404}))
	require.False(t, isTransient(context.Canceled))
}
