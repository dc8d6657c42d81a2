package domain

import "errors"

// Failure taxonomy surfaced at the conversation boundary. Providers and
// the download layer wrap these so handlers can map each one to its
// user-visible message without inspecting provider internals.
var (
	// ErrProviderUnavailable means the upstream call itself failed
	// (auth, network, quota). Distinct from an empty result set, which
	// is not an error.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrStaleSelection means a callback token no longer matches the
	// session's current result page.
	ErrStaleSelection = errors.New("stale selection")

	// ErrTooManyDownloads means the per-user concurrent job ceiling
	// was reached.
	ErrTooManyDownloads = errors.New("too many simultaneous downloads")

	// ErrUnsupported means the provider does not implement the
	// requested capability.
	ErrUnsupported = errors.New("operation not supported by provider")
)
