package helpers

import (
	"context"
	"fmt"
	"time"

	"series-proxy/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ProxyError struct {
	Message string
	Cause   error
}

func (e *ProxyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ProxyError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks at the HTTP boundary
type ConfigurationError struct{ ProxyError }
type ValidationError struct{ ProxyError }
type NetworkError struct{ ProxyError }
type DatabaseError struct{ ProxyError }

// UpstreamStatusError is a non-2xx answer from the upstream API.
type UpstreamStatusError struct {
	ProxyError
	StatusCode int
}

func NewConfigurationError(msg string) *ConfigurationError {
	return &ConfigurationError{ProxyError{Message: msg}}
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{ProxyError{Message: msg}}
}

func NewNetworkError(msg string, cause error) *NetworkError {
	return &NetworkError{ProxyError{Message: msg, Cause: cause}}
}

func NewDatabaseError(msg string, cause error) *DatabaseError {
	return &DatabaseError{ProxyError{Message: msg, Cause: cause}}
}

func NewUpstreamStatusError(code int) *UpstreamStatusError {
	return &UpstreamStatusError{
		ProxyError: ProxyError{Message: fmt.Sprintf("upstream status %d", code)},
		StatusCode: code,
	}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with
// exponential backoff. Waiting stops early when ctx is done.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		if log != nil {
			log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s aborted: %w", operation, ctx.Err())
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries, lastErr)
}
