package status

import "fmt"

// FetchCause classifies why a fetch failed.
type FetchCause string

const (
	// FetchTimeout marks a deadline exceeded while contacting the source.
	FetchTimeout FetchCause = "timeout"
	// FetchConnection marks transport-level failures (DNS, TLS, refused).
	FetchConnection FetchCause = "connection"
	// FetchStatus marks a non-2xx HTTP response.
	FetchStatus FetchCause = "status"
)

// FetchError reports a failed HTTP fetch.
type FetchError struct {
	URL        string
	Cause      FetchCause
	StatusCode int
	Err        error
}

// Error implements error.
func (e *FetchError) Error() string {
	switch e.Cause {
	case FetchStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	case FetchTimeout:
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

// Unwrap exposes the underlying transport error, if any.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a payload that was fetched but could not be decoded.
type ParseError struct {
	URL string
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

// Unwrap exposes the decoder error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// AllMirrorsFailed reports that every candidate mirror was exhausted. The
// most recent per-mirror error is retained for diagnostics.
type AllMirrorsFailed struct {
	Attempts int
	LastErr  error
}

// Error implements error.
func (e *AllMirrorsFailed) Error() string {
	return fmt.Sprintf("all %d mirrors failed, last error: %v", e.Attempts, e.LastErr)
}

// Unwrap exposes the last mirror's error.
func (e *AllMirrorsFailed) Unwrap() error {
	return e.LastErr
}

// UnsupportedKindError reports a provider row whose kind no parser claims.
type UnsupportedKindError struct {
	Kind SourceKind
}

// Error implements error.
func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported source kind %q", e.Kind)
}
