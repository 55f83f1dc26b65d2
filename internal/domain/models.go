package domain

import "time"

// Question is one multiple-choice trivia question. Values are immutable once
// built; the loader replaces whole questions when substituting translations.
type Question struct {
	Prompt           string   `json:"prompt"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
}

// Phase identifies where a trivia session is in its lifecycle.
type Phase string

const (
	// PhaseIdle means the session exists but Start has not been called.
	PhaseIdle Phase = "idle"
	// PhaseBlocked means the daily limit stops play until tomorrow.
	PhaseBlocked Phase = "blocked"
	// PhaseLoading means the question batch is being fetched and translated.
	PhaseLoading Phase = "loading"
	// PhaseReady means a round is live and the countdown is running.
	PhaseReady Phase = "ready"
	// PhaseAnswered means the current round just closed; the next one starts
	// after a short delay.
	PhaseAnswered Phase = "answered"
	// PhaseComplete means all rounds finished; the session is read-only.
	PhaseComplete Phase = "complete"
	// PhaseError means the batch fetch failed; a fresh Start is required.
	PhaseError Phase = "error"
)

// RoundView is the player-facing slice of the current round. Choices are
// pre-shuffled; the correct answer is never marked.
type RoundView struct {
	Index   int      `json:"index"`
	Prompt  string   `json:"prompt"`
	Choices []string `json:"choices"`
}

// Snapshot is a point-in-time view of a trivia session, safe to hand to
// transports and UIs.
type Snapshot struct {
	UserID            string        `json:"userId"`
	Phase             Phase         `json:"phase"`
	Round             *RoundView    `json:"round,omitempty"`
	Score             int           `json:"score"`
	QuestionsAnswered int           `json:"questionsAnswered"`
	TimeLeft          int           `json:"timeLeft"`
	GameOver          bool          `json:"gameOver"`
	WaitUntilTomorrow time.Duration `json:"waitUntilTomorrow,omitempty"`
	Error             string        `json:"error,omitempty"`
}
