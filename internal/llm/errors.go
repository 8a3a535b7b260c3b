package llm

import (
	"errors"
	"fmt"
)

// ErrMissingDeployment reports that the managed-cloud convention was
// selected by the endpoint host but no deployment identifier was
// configured. Retrying cannot fix a missing identifier, so this fails fast
// before any network attempt.
var ErrMissingDeployment = errors.New("llm: managed-cloud endpoint requires a deployment identifier")

// TransientError is a retryable HTTP-level failure (429 or 5xx). Callers
// see it only wrapped in the exhaustion error after the retry budget is
// spent.
type TransientError struct {
	Status int
	Detail string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("retryable status %d: %s", e.Status, e.Detail)
}

// PermanentError is a failure that will not change on retry: a
// non-retryable status, a malformed success payload, or quota exhaustion.
// Detail carries the response body for diagnostics.
type PermanentError struct {
	Status int
	Detail string
	// Quota marks quota exhaustion, which is permanent regardless of the
	// status code the service chose to send it with.
	Quota bool
}

func (e *PermanentError) Error() string {
	if e.Quota {
		return fmt.Sprintf("quota exhausted (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("permanent failure (status %d): %s", e.Status, e.Detail)
}
