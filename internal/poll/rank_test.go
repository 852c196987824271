package poll

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outagewatch/outagewatch/internal/status"
)

func resultRow(name string, level status.Level) status.SourceResult {
	return status.SourceResult{
		Descriptor: status.ProviderDescriptor{Name: name},
		Level:      level,
	}
}

func TestRank_SeverityFirst(t *testing.T) {
	t.Parallel()

	results := []status.SourceResult{
		resultRow("AWS", status.LevelOK),
		resultRow("Stripe", status.LevelMajor),
		resultRow("Azure", status.LevelDegraded),
		resultRow("AT&T", status.LevelInfo),
		resultRow("PayPal", status.LevelUnknown),
	}
	Rank(results)

	var order []string
	for _, res := range results {
		order = append(order, res.Descriptor.Name)
	}
	require.Equal(t, []string{"Stripe", "Azure", "PayPal", "AT&T", "AWS"}, order)
}

func TestRank_NameBreaksTiesCaseInsensitively(t *testing.T) {
	t.Parallel()

	results := []status.SourceResult{
		resultRow("stripe", status.LevelOK),
		resultRow("AWS", status.LevelOK),
		resultRow("Fastly", status.LevelOK),
	}
	Rank(results)

	require.Equal(t, "AWS", results[0].Descriptor.Name)
	require.Equal(t, "Fastly", results[1].Descriptor.Name)
	require.Equal(t, "stripe", results[2].Descriptor.Name)
}

func TestRank_UnrecognizedLevelSortsWithUnknown(t *testing.T) {
	t.Parallel()

	results := []status.SourceResult{
		resultRow("AWS", status.LevelOK),
		resultRow("Mystery", status.Level("glitched")),
	}
	Rank(results)
	require.Equal(t, "Mystery", results[0].Descriptor.Name)
}
