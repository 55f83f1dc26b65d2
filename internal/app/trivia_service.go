package app

import (
	"context"
	"sync"
	"time"

	"movie-trivia-service/internal/domain"
)

// QuestionSource fetches a batch of multiple-choice questions from the
// trivia provider.
type QuestionSource interface {
	FetchBatch(ctx context.Context, amount int) ([]domain.Question, error)
}

// Translator converts provider text into the display language. Implementations
// are best-effort; callers fall back to the original text on error.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// EligibilityStore persists the per-user last-played timestamp backing the
// once-per-day gate (in-memory, SQLite, Redis, Postgres, etc).
type EligibilityStore interface {
	LastPlayed(ctx context.Context, userID string) (time.Time, bool, error)
	MarkPlayed(ctx context.Context, userID string, playedAt time.Time) error
}

// Options tune session sizing and timing. Zero values select the defaults;
// tests shrink the durations to keep runs fast.
type Options struct {
	BatchSize    int           // questions per session, default 10
	RoundSeconds int           // countdown per round, default 30
	Tick         time.Duration // countdown resolution, default 1s
	TimeoutGrace time.Duration // pause after the countdown hits zero, default 1.5s
	AdvanceDelay time.Duration // pause between rounds, default 500ms
	Now          func() time.Time
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.RoundSeconds <= 0 {
		o.RoundSeconds = 30
	}
	if o.Tick <= 0 {
		o.Tick = time.Second
	}
	if o.TimeoutGrace <= 0 {
		o.TimeoutGrace = 1500 * time.Millisecond
	}
	if o.AdvanceDelay <= 0 {
		o.AdvanceDelay = 500 * time.Millisecond
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// TriviaService owns one live trivia session per user id.
type TriviaService struct {
	source      QuestionSource
	translator  Translator
	eligibility EligibilityStore
	opts        Options

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewTriviaService(source QuestionSource, translator Translator, eligibility EligibilityStore, opts Options) *TriviaService {
	return &TriviaService{
		source:      source,
		translator:  translator,
		eligibility: eligibility,
		opts:        opts.withDefaults(),
		sessions:    make(map[string]*Session),
	}
}

// GetOrCreate returns the user's session, creating it on first use. An empty
// user id is a fatal precondition: no identity, no session.
func (s *TriviaService) GetOrCreate(userID string) (*Session, error) {
	if userID == "" {
		return nil, domain.ErrIdentityMissing
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[userID]; ok {
		return session, nil
	}
	session := newSession(userID, s.source, s.translator, s.eligibility, s.opts)
	s.sessions[userID] = session
	return session, nil
}

// Get looks up an existing session without creating one. A user who never
// started gets domain.ErrNoSession.
func (s *TriviaService) Get(userID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[userID]
	if !ok {
		return nil, domain.ErrNoSession
	}
	return session, nil
}

// Start runs the eligibility gate and, when allowed, loads the batch and opens
// the first round. It blocks until the session is Ready, Blocked, or Error.
func (s *TriviaService) Start(ctx context.Context, userID string) (*Session, error) {
	session, err := s.GetOrCreate(userID)
	if err != nil {
		return nil, err
	}
	if err := session.Start(ctx); err != nil {
		return session, err
	}
	return session, nil
}

// Drop evicts a session from the registry, stopping its timer. Day rollover
// does not need it (Start re-gates terminal sessions); it exists for callers
// that want to shed idle per-user state.
func (s *TriviaService) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[userID]; ok {
		session.StopTimer()
		delete(s.sessions, userID)
	}
}
