package domain

import "errors"

var (
	// ErrIdentityMissing is returned when no stable user id is available; no
	// session may start without one.
	ErrIdentityMissing = errors.New("user identity missing")
	// ErrFetchFailed wraps question-provider failures. The session does not
	// retry on its own; a fresh Start call is required.
	ErrFetchFailed = errors.New("question fetch failed")
	// ErrNoActiveRound is returned when an answer arrives outside a live round.
	ErrNoActiveRound = errors.New("no active round")
	// ErrSessionComplete is returned for actions on a finished or blocked session.
	ErrSessionComplete = errors.New("trivia session already over")
	// ErrNoSession is returned when a session lookup misses.
	ErrNoSession = errors.New("trivia session not found")
)
