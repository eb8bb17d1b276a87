package session

import (
	"context"
	"sync/atomic"
	"time"
)

// CountdownID identifies one running countdown. The zero value means none.
type CountdownID uint64

var countdownSeq atomic.Uint64

func nextCountdownID() CountdownID {
	return CountdownID(countdownSeq.Add(1))
}

// TickFunc is called after every tick delivered by RunCountdown.
type TickFunc func(expired bool, err error)

// RunCountdown ticks s once per interval until the countdown expires, the
// session leaves PhaseTakingTest, or ctx is done. It blocks; run it in its
// own goroutine when the caller is not event-driven.
func RunCountdown(ctx context.Context, s *Session, id CountdownID, interval time.Duration, onTick TickFunc) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s.Countdown() != id {
				return
			}
			expired, err := s.Tick(ctx, id)
			if onTick != nil {
				onTick(expired, err)
			}
			if expired {
				return
			}
		}
	}
}
