package session

import (
	"github.com/abhisek/rcdrill/internal/screen"
	"github.com/abhisek/rcdrill/internal/screens/env"
	"github.com/abhisek/rcdrill/internal/screens/results"
	sess "github.com/abhisek/rcdrill/internal/session"
)

// newResultsScreenAdapter creates the results screen for a finished attempt.
func newResultsScreenAdapter(e *env.Env, r sess.StoredResult, timeUp bool, persistErr error) screen.Screen {
	return results.New(e, r, results.Finished(timeUp, persistErr))
}
