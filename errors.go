package coax

import (
	"fmt"
	"time"
)

// ConnectionError reports that the chat endpoint could not be reached at all
// (connection refused, host unreachable). It is terminal: the retry budget is
// reserved for content quality, not for dead connections.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError reports that the transport exceeded its deadline. Timeout is
// the deadline that was in force for the attempt.
type TimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %s", e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ModelNotFoundError reports that the server does not know the requested
// model.
type ModelNotFoundError struct {
	Model   string
	Message string
}

func (e *ModelNotFoundError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("model %q not found: %s", e.Model, e.Message)
	}
	return fmt.Sprintf("model %q not found", e.Model)
}

// APIError reports a non-2xx response that is not a model lookup failure. It
// carries the raw body so callers can surface server-side detail.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// IncompleteError is raised in strict mode when the retry budget is exhausted
// and the response still fails the completeness check. Missing holds the
// ordered defect descriptors; Partial is the last parsed content, preserved
// verbatim.
type IncompleteError struct {
	Missing []string
	Partial any
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("response incomplete after retries, missing: %v", e.Missing)
}

// MalformedError is raised in strict mode when the response body never
// parsed as JSON within the retry budget. Raw holds the last response text.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("response is not valid JSON: %v", e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }
