package session

import "context"

// ResultSink receives every StoredResult exactly once, at submission.
type ResultSink interface {
	Append(ctx context.Context, r StoredResult) error
}

// DiscardSink drops results. Offline bundles play against it so their
// results never reach history.
type DiscardSink struct{}

// Append implements ResultSink.
func (DiscardSink) Append(context.Context, StoredResult) error { return nil }

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, r StoredResult) error

// Append implements ResultSink.
func (f SinkFunc) Append(ctx context.Context, r StoredResult) error { return f(ctx, r) }
