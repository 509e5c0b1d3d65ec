package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

// RetryingExtractor wraps another Extractor with bounded attempts, backing
// off between failures. The underlying client already retries transport
// errors; this layer additionally covers malformed model output.
type RetryingExtractor struct {
	log      *logger.Logger
	inner    Extractor
	attempts int
	delay    time.Duration
}

func WithRetry(log *logger.Logger, inner Extractor, attempts int, delay time.Duration) *RetryingExtractor {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingExtractor{
		log:      log.With("service", "RetryingExtractor"),
		inner:    inner,
		attempts: attempts,
		delay:    delay,
	}
}

func (r *RetryingExtractor) Extract(ctx context.Context, entityType EntityType, title string, fullText string) ([]string, error) {
	var lastErr error
	delay := r.delay
	for attempt := 1; attempt <= r.attempts; attempt++ {
		values, err := r.inner.Extract(ctx, entityType, title, fullText)
		if err == nil {
			return values, nil
		}
		lastErr = err
		if attempt == r.attempts {
			break
		}
		r.log.Warn("extraction attempt failed, retrying",
			"entity_type", string(entityType),
			"attempt", attempt,
			"error", err.Error(),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("extraction: %s: %d attempts exhausted: %w", entityType, r.attempts, lastErr)
}
