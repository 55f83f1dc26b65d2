package app

import (
	"sync"
	"time"

	"movie-trivia-service/internal/domain"
)

// roundTimer is the cancellation handle for one round's countdown goroutine.
// stop is synchronous and idempotent.
type roundTimer struct {
	cancelled chan struct{}
	once      sync.Once
}

func newRoundTimer() *roundTimer {
	return &roundTimer{cancelled: make(chan struct{})}
}

func (t *roundTimer) stop() {
	t.once.Do(func() { close(t.cancelled) })
}

// startTimerLocked arms the countdown for the current round, cancelling any
// prior timer first. Only one timer runs per session.
func (s *Session) startTimerLocked() {
	s.stopTimerLocked()
	t := newRoundTimer()
	s.timer = t
	go s.runTimer(t)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.stop()
		s.timer = nil
	}
}

// runTimer decrements the countdown once per tick. When it reaches zero it
// waits one grace period, then forces the round closed as a wrong answer.
// Every callback re-checks that this timer is still the session's current one,
// so a cancelled timer can never touch a later round.
func (s *Session) runTimer(t *roundTimer) {
	ticker := time.NewTicker(s.opts.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancelled:
			return
		case <-ticker.C:
			expired, stale := s.tick(t)
			if stale {
				return
			}
			if expired {
				select {
				case <-t.cancelled:
					return
				case <-time.After(s.opts.TimeoutGrace):
				}
				s.expire(t)
				return
			}
		}
	}
}

func (s *Session) tick(t *roundTimer) (expired, stale bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != t || s.phase != domain.PhaseReady {
		return false, true
	}
	if s.timeLeft > 0 {
		s.timeLeft--
		s.broadcastLocked()
	}
	return s.timeLeft <= 0, false
}

// expire closes the round as if a non-matching answer had been selected:
// questionsAnswered advances by one, score does not.
func (s *Session) expire(t *roundTimer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != t || s.phase != domain.PhaseReady {
		return
	}
	s.closeRoundLocked(false)
}
