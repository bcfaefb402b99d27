package lidarr

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"recordstore/internal/ratelimit"
)

var (
	// ErrNotConfigured means the URL or API key setting is missing.
	ErrNotConfigured = errors.New("lidarr is not configured")
	// ErrConfigurationIncomplete means no root folder, quality profile or
	// metadata profile could be resolved.
	ErrConfigurationIncomplete = errors.New("could not determine lidarr configuration")
	// ErrNotFoundUpstream means the artist lookup returned nothing.
	ErrNotFoundUpstream = errors.New("artist not found in lidarr lookup")
)

// upstreamError builds a *ratelimit.UpstreamError from a failed response,
// keeping whatever message Lidarr returned.
func upstreamError(status int, body []byte) error {
	return &ratelimit.UpstreamError{
		Service: "lidarr",
		Status:  status,
		Message: errorMessage(body),
	}
}

// errorMessage extracts the message from either {"message": ...} or a list
// of validation failures.
func errorMessage(body []byte) string {
	var single struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &single); err == nil && single.Message != "" {
		return single.Message
	}

	var validation []struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &validation); err == nil {
		msgs := make([]string, 0, len(validation))
		for _, v := range validation {
			if v.ErrorMessage != "" {
				msgs = append(msgs, v.ErrorMessage)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// IsUnauthorized reports whether err is a rejected API key.
func IsUnauthorized(err error) bool {
	var upstream *ratelimit.UpstreamError
	return errors.As(err, &upstream) && upstream.Status == http.StatusUnauthorized
}
