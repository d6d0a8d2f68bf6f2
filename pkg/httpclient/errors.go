package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/Pritam-devloper/shophub/pkg/errors"
)

// ParseResponseError reads the body of a non-2xx HTTP response and translates
// it into an appropriate AppError. The demo storefront API returns plain-text
// or loosely structured bodies, so only the status code and raw message are
// used for translation.
//
// The caller should only invoke this when resp.StatusCode indicates an error
// (i.e., not 2xx). The response body is fully consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB limit
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", serviceName, resp.StatusCode, err)
	}

	message := strings.TrimSpace(string(bodyBytes))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	qualifiedMsg := fmt.Sprintf("%s: %s", serviceName, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(serviceName, message)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualifiedMsg)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return apperrors.Unavailable(qualifiedMsg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s server error (%d): %s", serviceName, resp.StatusCode, message)
	default:
		return &apperrors.AppError{
			Code:    "UPSTREAM_ERROR",
			Message: qualifiedMsg,
			Status:  resp.StatusCode,
		}
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
// Client errors (e.g., bad credentials) should not be retried.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
