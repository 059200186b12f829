package mbta

import "errors"

var (
	// ErrAuthentication means the API rejected our credentials. Fatal for
	// the whole update cycle; callers should surface it, not retry.
	ErrAuthentication = errors.New("mbta: invalid API key or credentials")

	// ErrRateLimited means the API returned HTTP 429. Transient; the caller
	// decides how to back off, the client never retries internally.
	ErrRateLimited = errors.New("mbta: rate limit exceeded")

	// ErrNotModifiedWithoutCache means the API answered 304 for a key we
	// hold no cached payload for. A contract violation, treated as a
	// generic fetch failure.
	ErrNotModifiedWithoutCache = errors.New("mbta: not modified response with empty cache")
)
