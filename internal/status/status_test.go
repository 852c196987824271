package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevel_RankOrdering(t *testing.T) {
	t.Parallel()

	levels := Levels()
	for i := 1; i < len(levels); i++ {
		require.Less(t, levels[i-1].Rank(), levels[i].Rank(),
			"%s must rank above %s", levels[i-1], levels[i])
	}
}

func TestLevel_UnrecognizedRanksWithUnknown(t *testing.T) {
	t.Parallel()

	require.Equal(t, LevelUnknown.Rank(), Level("bogus").Rank())
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	lvl, ok := ParseLevel("major")
	require.True(t, ok)
	require.Equal(t, LevelMajor, lvl)

	_, ok = ParseLevel("catastrophic")
	require.False(t, ok)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	kind, ok := ParseKind("statusapi")
	require.True(t, ok)
	require.Equal(t, KindStatusAPI, kind)

	_, ok = ParseKind("grpc")
	require.False(t, ok)
}

func TestTrimDetails(t *testing.T) {
	t.Parallel()

	require.Len(t, TrimDetails([]string{"a", "b", "c", "d"}), MaxDetails)
	require.Len(t, TrimDetails([]string{"a"}), 1)
	require.Nil(t, TrimDetails(nil))
}

func TestFetchError_Messages(t *testing.T) {
	t.Parallel()

	statusErr := &FetchError{URL: "https://x.test", Cause: FetchStatus, StatusCode: 503}
	require.Contains(t, statusErr.Error(), "503")

	timeoutErr := &FetchError{URL: "https://x.test", Cause: FetchTimeout}
	require.Contains(t, timeoutErr.Error(), "timed out")

	inner := errors.New("connection refused")
	connErr := &FetchError{URL: "https://x.test", Cause: FetchConnection, Err: inner}
	require.ErrorIs(t, connErr, inner)
}

func TestAllMirrorsFailed_WrapsLastError(t *testing.T) {
	t.Parallel()

	last := &FetchError{URL: "https://c.test", Cause: FetchStatus, StatusCode: 500}
	err := &AllMirrorsFailed{Attempts: 3, LastErr: last}

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, 500, fe.StatusCode)
	require.Contains(t, err.Error(), "3 mirrors")
}
