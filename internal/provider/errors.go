package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the upstream failure taxonomy. Callers match with
// errors.Is; the HTTP layer maps them to external status codes.
var (
	// ErrUnauthorized means the upstream credential is missing or invalid.
	// Never retried.
	ErrUnauthorized = errors.New("upstream unauthorized")

	// ErrRateLimited means retries were exhausted against HTTP 429.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrMalformed means a 2xx body failed to decode or lacked expected
	// fields. Fatal for the current stage, never retried.
	ErrMalformed = errors.New("malformed upstream response")

	// ErrTeamNotFound is raised where no reasonable continuation exists
	// (e.g. roster fetch for an unknown abbreviation).
	ErrTeamNotFound = errors.New("team not found")
)

// UpstreamError carries the upstream HTTP status code so the caller can map
// it to its own external status.
type UpstreamError struct {
	StatusCode int
	URL        string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned %d for %s", e.StatusCode, e.URL)
}

// Is lets errors.Is(err, ErrUnauthorized/ErrRateLimited) match on status.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// StatusCode extracts the upstream HTTP status from an error chain.
// Returns 0 when the error carries no upstream status.
func StatusCode(err error) int {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode
	}
	return 0
}
