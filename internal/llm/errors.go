package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider. Reformat calls fan out one per
// passage, so a multi-passage drill is the usual trigger.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the provider answered but the body cannot be
// used: empty text, or JSON that fails the request schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable means the provider could not be reached or
// refused to serve the request.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the answer was cut off. For a question set
// that leaves unterminated JSON; raise the question token limit instead
// of retrying.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// failure classifies a Generate error for the retry decorator.
type failure string

const (
	failFatal       failure = "fatal"
	failRateLimit   failure = "rate-limit"
	failUnavailable failure = "unavailable"
	failInvalid     failure = "invalid-response"
	failTransient   failure = "transient"
)

func classify(err error) failure {
	var (
		rl      *ErrRateLimit
		unavail *ErrProviderUnavailable
		invalid *ErrInvalidResponse
		maxTok  *ErrMaxTokensExceeded
	)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return failFatal
	case errors.As(err, &maxTok):
		return failFatal
	case errors.As(err, &invalid):
		return failInvalid
	case errors.As(err, &rl):
		return failRateLimit
	case errors.As(err, &unavail):
		return failUnavailable
	default:
		// Network errors from the SDKs arrive unwrapped.
		return failTransient
	}
}
