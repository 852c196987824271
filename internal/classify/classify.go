// Package classify maps free-form status text onto severity levels. The same
// keyword tables back every text-based parser so feed titles and HTML bodies
// classify consistently.
package classify

import (
	"strings"

	"github.com/outagewatch/outagewatch/internal/status"
)

// Keyword tables checked in precedence order. A resolution announcement wins
// over alarming words that may appear in a recap ("the outage was resolved").
var (
	resolutionKeywords = []string{
		"resolved",
		"operating normally",
		"recovered",
		"restored",
	}

	majorKeywords = []string{
		"major outage",
		"outage",
		"unavailable",
		"down",
	}

	degradedKeywords = []string{
		"degraded",
		"investigating",
		"identified",
		"monitoring",
		"issue",
		"error",
		"latency",
		"impact",
		"connectivity",
		"disruption",
		"partial",
	}
)

// Classify maps text to a severity level. It is total: every input yields
// exactly one level, defaulting to ok when nothing matches.
func Classify(text string) status.Level {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, resolutionKeywords):
		return status.LevelOK
	case containsAny(lower, majorKeywords):
		return status.LevelMajor
	case containsAny(lower, degradedKeywords):
		return status.LevelDegraded
	default:
		return status.LevelOK
	}
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
