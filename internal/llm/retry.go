package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries failed Generate calls with exponential backoff
// and jitter. Cancellation and truncation fail at once. A response that
// breaks its contract is retried once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
}

// WithRetry wraps a Provider with retry logic. MaxAttempts below one
// means a single attempt.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(r.config.MaxAttempts, 1)
	purpose := PurposeFrom(ctx)
	invalidSeen := false

	for attempt := 1; ; attempt++ {
		resp, err := r.inner.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}

		kind := classify(err)
		switch {
		case kind == failFatal, attempt == attempts:
			return nil, err
		case kind == failInvalid && invalidSeen:
			return nil, err
		case kind == failInvalid:
			invalidSeen = true
		}

		wait := r.backoff(attempt-1, err)
		slog.Warn("llm retry",
			"purpose", purpose,
			"model", r.inner.ModelID(),
			"attempt", attempt,
			"of", attempts,
			"reason", string(kind),
			"wait", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// backoff is the wait after the given zero-based attempt. A rate limit
// with a Retry-After hint overrides the schedule.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}

	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = min(wait, float64(r.config.MaxWait))

	// ±20% jitter.
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(max(wait, 0))
}
