package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outagewatch/outagewatch/internal/status"
)

func TestSummarizeIncidents_NoActiveIsOK(t *testing.T) {
	t.Parallel()

	incidents := []map[string]any{
		{"name": "old trouble", "end": "2024-01-01"},
		{"name": "older trouble", "resolved": true},
	}
	level, details := summarizeIncidents(incidents)
	require.Equal(t, status.LevelOK, level)
	require.Empty(t, details)
}

func TestSummarizeIncidents_ActiveDegrades(t *testing.T) {
	t.Parallel()

	incidents := []map[string]any{
		{"name": "elevated errors", "severity": "medium"},
	}
	level, details := summarizeIncidents(incidents)
	require.Equal(t, status.LevelDegraded, level)
	require.Equal(t, []string{"elevated errors"}, details)
}

func TestSummarizeIncidents_TerminationFieldValueIrrelevant(t *testing.T) {
	t.Parallel()

	// Presence of the key marks resolution, whatever the value.
	incidents := []map[string]any{
		{"name": "x", "end": nil},
		{"name": "y", "resolved": ""},
	}
	level, _ := summarizeIncidents(incidents)
	require.Equal(t, status.LevelOK, level)
}

func TestSummarizeIncidents_HighSeverityEscalates(t *testing.T) {
	t.Parallel()

	incidents := []map[string]any{
		{"name": "regional trouble", "severity": "medium"},
		{"name": "big one", "impact": "Critical service outage"},
	}
	level, _ := summarizeIncidents(incidents)
	require.Equal(t, status.LevelMajor, level)
}

func TestSummarizeIncidents_EndFieldFlipsBatchToOK(t *testing.T) {
	t.Parallel()

	active := []map[string]any{{"name": "only incident", "severity": "medium"}}
	level, _ := summarizeIncidents(active)
	require.Equal(t, status.LevelDegraded, level)

	ended := []map[string]any{{"name": "only incident", "severity": "medium", "end": "2024-01-01"}}
	level, _ = summarizeIncidents(ended)
	require.Equal(t, status.LevelOK, level)
}

func TestSummarizeIncidents_ToleratesWrongTypes(t *testing.T) {
	t.Parallel()

	incidents := []map[string]any{
		{"severity": 42, "impact": []any{"weird"}},
	}
	level, details := summarizeIncidents(incidents)
	require.Equal(t, status.LevelDegraded, level)
	require.Equal(t, []string{"active incident"}, details)
}

func TestSummarizeIncidents_DetailsCapped(t *testing.T) {
	t.Parallel()

	incidents := []map[string]any{
		{"name": "a"}, {"name": "b"}, {"name": "c"}, {"name": "d"},
	}
	_, details := summarizeIncidents(incidents)
	require.Len(t, details, status.MaxDetails)
}
