package nvapi

import (
	"errors"
	"fmt"
)

// ErrNoResult means the upstream answered but had nothing usable.
var ErrNoResult = errors.New("upstream returned no result")

// UpstreamUnavailableError covers timeouts, transport failures and non-2xx
// answers. Status is zero when no response arrived.
type UpstreamUnavailableError struct {
	Endpoint string
	Status   int
	Message  string // upstream "message" field, if any
	Err      error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s unavailable: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s unavailable (status %d): %v", e.Endpoint, e.Status, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }

// StatusCode lets retry logic classify the failure.
func (e *UpstreamUnavailableError) StatusCode() int { return e.Status }
