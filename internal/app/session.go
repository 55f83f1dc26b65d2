package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"movie-trivia-service/internal/domain"
)

// Session is the state machine for one user's daily trivia run: up to
// BatchSize rounds, each bounded by a countdown, gated to once per calendar
// day. All mutable state is guarded by mu; timer and advance callbacks verify
// the round generation before touching anything.
type Session struct {
	userID      string
	source      QuestionSource
	translator  Translator
	eligibility EligibilityStore
	opts        Options
	now         func() time.Time

	mu                sync.Mutex
	phase             domain.Phase
	questions         []domain.Question
	choices           []string
	currentIndex      int
	score             int
	questionsAnswered int
	timeLeft          int
	wait              time.Duration
	errMsg            string
	fetching          bool
	marked            bool
	round             int
	timer             *roundTimer
	rnd               *rand.Rand
	subscribers       map[chan domain.Snapshot]struct{}
}

func newSession(userID string, source QuestionSource, translator Translator, eligibility EligibilityStore, opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		userID:      userID,
		source:      source,
		translator:  translator,
		eligibility: eligibility,
		opts:        opts,
		now:         opts.Now,
		phase:       domain.PhaseIdle,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
}

// Start checks the daily gate and, when allowed, fetches and translates the
// batch, then opens round one. Only one fetch may be in flight: a Start that
// arrives while another is loading is a no-op. A blocked or completed session
// is not dead: Start re-runs the gate, so the same call grants a fresh run
// once the calendar date advances. Fetch failures leave the session in the
// error phase and are returned for the caller to surface.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	switch s.phase {
	case domain.PhaseReady, domain.PhaseAnswered:
		// Session already running.
		s.mu.Unlock()
		return nil
	}
	if s.fetching {
		s.mu.Unlock()
		return nil
	}
	s.fetching = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.fetching = false
		s.mu.Unlock()
	}()

	allowed, wait, err := s.checkDailyLimit(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	if !allowed {
		s.mu.Lock()
		s.phase = domain.PhaseBlocked
		s.wait = wait
		s.broadcastLocked()
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.phase = domain.PhaseLoading
	s.errMsg = ""
	s.wait = 0
	s.broadcastLocked()
	s.mu.Unlock()

	questions, err := s.loadBatch(ctx)
	if err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = questions
	s.currentIndex = 0
	s.score = 0
	s.questionsAnswered = 0
	s.marked = false
	s.openRoundLocked()
	return nil
}

// Answer closes the current round with the player's choice. Correctness is
// judged by text equality against the (possibly translated) correct answer.
// Exactly one scoring event happens per round; the round timer is cancelled
// before scoring so a late timeout cannot double-count.
func (s *Session) Answer(answer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.phase {
	case domain.PhaseReady:
	case domain.PhaseComplete, domain.PhaseBlocked:
		return false, domain.ErrSessionComplete
	default:
		return false, domain.ErrNoActiveRound
	}
	correct := answer == s.questions[s.currentIndex].CorrectAnswer
	s.closeRoundLocked(correct)
	return correct, nil
}

// StopTimer cancels any running round timer. Safe to call at any time,
// including when no timer is active; it never touches the countdown value.
func (s *Session) StopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// Snapshot returns a point-in-time copy of the session state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a snapshot after every state
// change, starting with the current one. The caller must invoke the returned
// cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	// Registration and the initial send happen under the lock so no broadcast
	// can slip in between and land ahead of the older snapshot.
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// openRoundLocked resets the countdown, shuffles the choices, and arms a
// fresh timer for the question at currentIndex.
func (s *Session) openRoundLocked() {
	s.round++
	s.timeLeft = s.opts.RoundSeconds
	s.choices = s.shuffledChoicesLocked()
	s.phase = domain.PhaseReady
	s.startTimerLocked()
	s.broadcastLocked()
}

// closeRoundLocked records one completed round, answered or timed out.
func (s *Session) closeRoundLocked(correct bool) {
	s.stopTimerLocked()
	s.round++
	if correct {
		s.score++
	}
	s.questionsAnswered++
	s.phase = domain.PhaseAnswered
	s.broadcastLocked()
	go s.advanceAfterDelay(s.round)
}

// advanceAfterDelay moves to the next round (or completion) after the fixed
// between-rounds pause. The generation check discards it if the session moved
// on in the meantime.
func (s *Session) advanceAfterDelay(generation int) {
	time.Sleep(s.opts.AdvanceDelay)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round != generation || s.phase != domain.PhaseAnswered {
		return
	}
	if s.questionsAnswered >= s.opts.BatchSize || s.currentIndex >= len(s.questions)-1 {
		s.completeLocked()
		return
	}
	s.currentIndex++
	s.openRoundLocked()
}

func (s *Session) completeLocked() {
	s.phase = domain.PhaseComplete
	if !s.marked {
		s.marked = true
		if err := s.eligibility.MarkPlayed(context.Background(), s.userID, s.now()); err != nil {
			log.Printf("mark played for %s failed: %v", s.userID, err)
		}
	}
	s.broadcastLocked()
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.phase = domain.PhaseError
	s.errMsg = err.Error()
	s.broadcastLocked()
	s.mu.Unlock()
}

func (s *Session) shuffledChoicesLocked() []string {
	q := s.questions[s.currentIndex]
	choices := make([]string, 0, len(q.IncorrectAnswers)+1)
	choices = append(choices, q.CorrectAnswer)
	choices = append(choices, q.IncorrectAnswers...)
	s.rnd.Shuffle(len(choices), func(i, j int) {
		choices[i], choices[j] = choices[j], choices[i]
	})
	return choices
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		UserID:            s.userID,
		Phase:             s.phase,
		Score:             s.score,
		QuestionsAnswered: s.questionsAnswered,
		TimeLeft:          s.timeLeft,
		GameOver:          s.phase == domain.PhaseComplete || s.phase == domain.PhaseBlocked,
		WaitUntilTomorrow: s.wait,
		Error:             s.errMsg,
	}
	if s.phase == domain.PhaseReady || s.phase == domain.PhaseAnswered {
		snap.Round = &domain.RoundView{
			Index:   s.currentIndex,
			Prompt:  s.questions[s.currentIndex].Prompt,
			Choices: append([]string(nil), s.choices...),
		}
	}
	return snap
}

func (s *Session) broadcastLocked() {
	snap := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the stale update so a slow subscriber never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
