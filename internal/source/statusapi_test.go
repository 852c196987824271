package source

import (
	"context"
	"encoding/json"
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

func testClock() *fixedClock {
	return &fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func testClient() *fetch.Client {
	return fetch.New(fetch.Config{}, testClock(), nil)
}

func decodePayload(t *testing.T, raw string) statusAPIPayload {
	t.Helper()
	var payload statusAPIPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestSummarizeStatusAPI_CriticalIndicator(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{"status":{"indicator":"critical"},"incidents":[]}`)
	level, _ := summarizeStatusAPI(payload)
	require.Equal(t, status.LevelMajor, level)
}

func TestSummarizeStatusAPI_MinorIncidentDegrades(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{"status":{"indicator":"none"},"incidents":[{"impact":"minor"}]}`)
	level, details := summarizeStatusAPI(payload)
	require.Equal(t, status.LevelDegraded, level)
	require.Len(t, details, 1)
}

func TestSummarizeStatusAPI_MajorIncidentImpactWins(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{"status":{"indicator":"none"},"incidents":[{"impact":"major","name":"API errors"}]}`)
	level, _ := summarizeStatusAPI(payload)
	require.Equal(t, status.LevelMajor, level)
}

func TestSummarizeStatusAPI_CleanIsOK(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{"status":{"indicator":"none"},"incidents":[]}`)
	level, details := summarizeStatusAPI(payload)
	require.Equal(t, status.LevelOK, level)
	require.Empty(t, details)
}

func TestSummarizeStatusAPI_DetailsCappedAtThree(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{"status":{"indicator":"minor"},"incidents":[
		{"name":"a","impact":"minor","updated_at":"2025-06-01"},
		{"name":"b","impact":"minor"},
		{"name":"c","impact":"minor"},
		{"name":"d","impact":"minor"}]}`)
	level, details := summarizeStatusAPI(payload)
	require.Equal(t, status.LevelDegraded, level)
	require.Len(t, details, status.MaxDetails)
	require.Equal(t, "a — minor — 2025-06-01", details[0])
}

func TestSummarizeStatusAPI_ToleratesMissingFields(t *testing.T) {
	t.Parallel()

	payload := decodePayload(t, `{}`)
	level, details := summarizeStatusAPI(payload)
	require.Equal(t, status.LevelOK, level)
	require.Empty(t, details)
}

func TestStatusAPIParser_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"indicator":"major"},"incidents":[{"name":"Outage","impact":"major","updated_at":"now"}]}`))
	}))
	defer srv.Close()

	parser := NewStatusAPIParser(testClient())
	summary, err := parser.Summarize(context.Background(), status.ProviderDescriptor{
		Name: "Example", Kind: status.KindStatusAPI, URL: srv.URL,
	})
	require.NoError(t, err)
	require.Equal(t, status.LevelMajor, summary.Level)
	require.False(t, summary.FetchedAt.IsZero())
}

func TestStatusAPIParser_MalformedPayloadIsParseError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	parser := NewStatusAPIParser(testClient())
	_, err := parser.Summarize(context.Background(), status.ProviderDescriptor{
		Name: "Example", Kind: status.KindStatusAPI, URL: srv.URL,
	})
	var pe *status.ParseError
	require.ErrorAs(t, err, &pe)
}
