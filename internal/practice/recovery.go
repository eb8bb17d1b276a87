package practice

import (
	"errors"

	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/intake"
)

// Recovery is the single action offered after a failure.
type Recovery int

const (
	// RecoverNone means no action is needed; the error is a warning.
	RecoverNone Recovery = iota
	// RecoverEditInput returns to passage entry with the input kept.
	RecoverEditInput
	// RecoverReset discards everything and returns to configuration.
	RecoverReset
)

func (r Recovery) String() string {
	switch r {
	case RecoverEditInput:
		return "edit-input"
	case RecoverReset:
		return "reset"
	default:
		return "none"
	}
}

// MessageID is the i18n message describing the action.
func (r Recovery) MessageID() string {
	switch r {
	case RecoverEditInput:
		return "RecoverEditInput"
	case RecoverReset:
		return "RecoverReset"
	default:
		return ""
	}
}

// RecoveryFor maps an error to its recovery action. Input problems go back
// to editing, persistence failures are warnings, everything else resets.
func RecoveryFor(err error) Recovery {
	if err == nil {
		return RecoverNone
	}

	var (
		dup  *intake.DuplicateError
		inc  *intake.IncompleteError
		perr *history.PersistError
	)
	switch {
	case errors.As(err, &dup), errors.As(err, &inc), errors.Is(err, intake.ErrPassageCount):
		return RecoverEditInput
	case errors.As(err, &perr):
		return RecoverNone
	default:
		return RecoverReset
	}
}
