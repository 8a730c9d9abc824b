package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// RetryGenerator retries transient failures of the wrapped generator with
// exponential backoff. Blocked results are final and never retried.
type RetryGenerator struct {
	next           Generator
	maxRetries     int
	initialBackoff time.Duration
	sleep          func(ctx context.Context, d time.Duration) error
}

// NewRetryGenerator wraps next; maxRetries counts every attempt, so values
// below 1 mean a single attempt.
func NewRetryGenerator(next Generator, maxRetries int, initialBackoff time.Duration) *RetryGenerator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryGenerator{
		next:           next,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		sleep:          sleepContext,
	}
}

// Generate implements Generator
func (r *RetryGenerator) Generate(ctx context.Context, messages []Message) (*Result, error) {
	backoff := r.initialBackoff
	var lastErr error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff *= 2
		}

		res, err := r.next.Generate(ctx, messages)
		if err == nil {
			return res, nil
		}
		if !retryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("generation failed after %d attempts: %w", r.maxRetries, lastErr)
}

// retryable reports whether err may succeed on a later attempt.
// Client errors such as a bad request or an invalid key are final.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrEmptyPrompt) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
