// Package intake validates the passages a learner submits before any
// generation call is made.
package intake

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/rcdrill/internal/session"
)

// ErrPassageCount is returned when the number of passages is outside
// [session.MinPassages, session.MaxPassages].
var ErrPassageCount = fmt.Errorf("number of passages must be between %d and %d",
	session.MinPassages, session.MaxPassages)

// ErrIncomplete is wrapped by IncompleteError.
var ErrIncomplete = errors.New("passage is empty")

// IncompleteError reports an empty passage. PassageIndex is 0-based.
type IncompleteError struct {
	PassageIndex int
	Count        int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("passage %d of %d is empty", e.PassageIndex+1, e.Count)
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// DuplicateError reports a passage already used in a stored attempt.
type DuplicateError struct {
	PassageIndex int // 0-based
	ResultID     string
	Date         time.Time
	Snippet      string

	// Location is the calendar the message names the day in. UTC when nil.
	Location *time.Location
}

func (e *DuplicateError) Error() string {
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	return fmt.Sprintf("passage %d (%q) duplicates a passage from the test taken on %s",
		e.PassageIndex+1, e.Snippet, e.Date.In(loc).Format("2006-01-02"))
}

// History finds stored attempts by passage text. *history.Store satisfies it.
type History interface {
	FindDuplicatePassage(text string) (session.StoredResult, bool)
}

// snippetRunes bounds DuplicateError.Snippet.
const snippetRunes = 50

// ValidCount reports whether n passages can be practised in one test.
func ValidCount(n int) bool {
	return n >= session.MinPassages && n <= session.MaxPassages
}

// Check validates exactly n passages against hist and returns them
// trimmed. Passages are checked in order; the first problem is returned.
//
// A DuplicateError from Check names its day in UTC; set Location to use
// the learner's calendar.
func Check(passages []string, n int, hist History) ([]string, error) {
	if !ValidCount(n) {
		return nil, ErrPassageCount
	}
	if len(passages) < n {
		return nil, &IncompleteError{PassageIndex: len(passages), Count: n}
	}

	out := make([]string, n)
	for i := range n {
		p := strings.TrimSpace(passages[i])
		if p == "" {
			return nil, &IncompleteError{PassageIndex: i, Count: n}
		}
		out[i] = p
	}

	if hist == nil {
		return out, nil
	}
	for i, p := range out {
		if r, ok := hist.FindDuplicatePassage(p); ok {
			return nil, &DuplicateError{
				PassageIndex: i,
				ResultID:     r.ID,
				Date:         r.Date,
				Snippet:      snippet(p),
			}
		}
	}
	return out, nil
}

func snippet(s string) string {
	r := []rune(s)
	if len(r) <= snippetRunes {
		return s
	}
	return string(r[:snippetRunes]) + "..."
}
