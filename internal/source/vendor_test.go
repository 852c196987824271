package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outagewatch/outagewatch/internal/status"
)

func TestSummarizeVendorJSON_ExplicitMajor(t *testing.T) {
	t.Parallel()

	level, details := summarizeVendorJSON(map[string]any{"indicator": "major"})
	require.Equal(t, status.LevelMajor, level)
	require.Equal(t, "indicator: major", details[0])
}

func TestSummarizeVendorJSON_ExplicitDegraded(t *testing.T) {
	t.Parallel()

	level, _ := summarizeVendorJSON(map[string]any{"status": "degraded", "message": "elevated errors\nmore text"})
	require.Equal(t, status.LevelDegraded, level)
}

func TestSummarizeVendorJSON_NestedStatusObject(t *testing.T) {
	t.Parallel()

	level, _ := summarizeVendorJSON(map[string]any{
		"status": map[string]any{"indicator": "minor"},
	})
	require.Equal(t, status.LevelDegraded, level)
}

func TestSummarizeVendorJSON_ConservativeByDesign(t *testing.T) {
	t.Parallel()

	// Unrelated fields never escalate, even with alarming words in them.
	level, details := summarizeVendorJSON(map[string]any{
		"news": "we had a major outage last year",
	})
	require.Equal(t, status.LevelOK, level)
	require.Empty(t, details)

	// An indicator outside the known vocabulary is treated as healthy.
	level, _ = summarizeVendorJSON(map[string]any{"indicator": "rainbows"})
	require.Equal(t, status.LevelOK, level)
}

func TestSummarizeVendorJSON_EmptyPayloadIsOK(t *testing.T) {
	t.Parallel()

	level, details := summarizeVendorJSON(map[string]any{})
	require.Equal(t, status.LevelOK, level)
	require.Empty(t, details)
}
