package rest

import (
	"fmt"
	"net/http"
)

// HTTPDoer is a minimal interface for HTTP clients
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPError is a non-2xx report response
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string // first bytes of the response, for diagnostics
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Status, e.Body)
}
