// internal/common/errors/upstream.go
package errors

import (
	"context"
	"errors"
	"time"

	commonhttp "healing-guide/internal/common/http"
)

// FromUpstream maps a vendor client failure to a StandardError. Vendor
// statuses pass through, timeouts become 504 and anything else 502.
func FromUpstream(provider string, err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}

	var statusErr *commonhttp.StatusError
	switch {
	case errors.As(err, &statusErr):
		return NewUpstreamError(provider, statusErr.StatusCode, statusErr.Body)
	case errors.Is(err, commonhttp.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return NewUpstreamTimeoutError(provider, err)
	default:
		return &StandardError{
			Code:      ErrCodeUpstreamError,
			Message:   provider + " API request failed",
			Details:   errDetails(err),
			Retryable: true,
			Metadata:  map[string]interface{}{"provider": provider},
			Timestamp: time.Now().UTC(),
		}
	}
}
