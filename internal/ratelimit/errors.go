package ratelimit

import (
	"fmt"
	"net/http"
)

// UpstreamError reports a non-2xx response from an upstream API.
type UpstreamError struct {
	Service string
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s api error: %d: %s", e.Service, e.Status, e.Message)
	}
	return fmt.Sprintf("%s api error: %d %s", e.Service, e.Status, http.StatusText(e.Status))
}
