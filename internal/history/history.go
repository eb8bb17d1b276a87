// Package history keeps every submitted attempt as one JSON document in a
// durable key-value store and indexes attempts by local calendar date.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/abhisek/rcdrill/internal/session"
)

// DocumentKey is the key the full history document is stored under.
const DocumentKey = "catRcTestResults"

// KV is the persistence boundary the store writes through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// PersistError reports that the in-memory history could not be written.
// The in-memory collection stays authoritative for the rest of the run.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("history %s not persisted: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithKey overrides the document key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// Store is the append-only collection of stored results.
type Store struct {
	mu      sync.RWMutex
	kv      KV
	key     string
	logger  *slog.Logger
	results []session.StoredResult
}

// Open loads the history document. A missing or undecodable document yields
// an empty history; only a failing read is logged, never returned.
func Open(ctx context.Context, kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		key:    DocumentKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, ok, err := kv.Get(ctx, s.key)
	switch {
	case err != nil:
		s.logger.Warn("history unreadable, starting empty", "error", err)
	case !ok:
	default:
		var results []session.StoredResult
		if err := json.Unmarshal(raw, &results); err != nil {
			s.logger.Warn("history document corrupt, starting empty", "error", err, "bytes", len(raw))
			break
		}
		s.results = results
	}

	s.logger.Debug("history loaded", "results", len(s.results))
	return s
}

// Append adds r to the collection and rewrites the whole document. On a
// write failure r is still kept in memory and a *PersistError is returned.
func (s *Store) Append(ctx context.Context, r session.StoredResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, r)
	return s.persistLocked(ctx, "append")
}

// Clear removes every stored result.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = nil
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return &PersistError{Op: "clear", Err: err}
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context, op string) error {
	doc, err := json.Marshal(s.results)
	if err != nil {
		return &PersistError{Op: op, Err: err}
	}
	if err := s.kv.Put(ctx, s.key, doc); err != nil {
		s.logger.Warn("history write failed", "op", op, "results", len(s.results), "error", err)
		return &PersistError{Op: op, Err: err}
	}
	return nil
}

// All returns every result, oldest first.
func (s *Store) All() []session.StoredResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]session.StoredResult(nil), s.results...)
}

// Len returns the number of stored results.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Get finds a result by id.
func (s *Store) Get(id string) (session.StoredResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, true
		}
	}
	return session.StoredResult{}, false
}

// FindDuplicatePassage returns the first stored result with a raw passage
// whose trimmed text equals the trimmed candidate.
func (s *Store) FindDuplicatePassage(candidate string) (session.StoredResult, bool) {
	want := strings.TrimSpace(candidate)
	if want == "" {
		return session.StoredResult{}, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		for _, p := range r.RawInputPassages {
			if strings.TrimSpace(p) == want {
				return r, true
			}
		}
	}
	return session.StoredResult{}, false
}
