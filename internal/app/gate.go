package app

import (
	"context"
	"fmt"
	"time"
)

// checkDailyLimit reads the user's last-played record and decides whether a
// new session may start. A record on today's calendar date blocks play; the
// reported wait runs until lastPlayed+24h, not until midnight. The two rules
// intentionally disagree near midnight and are both kept as-is.
func (s *Session) checkDailyLimit(ctx context.Context) (allowed bool, wait time.Duration, err error) {
	last, ok, err := s.eligibility.LastPlayed(ctx, s.userID)
	if err != nil {
		return false, 0, fmt.Errorf("read eligibility: %w", err)
	}
	if !ok {
		return true, 0, nil
	}
	now := s.now()
	if sameCalendarDay(last, now) {
		return false, last.Add(24 * time.Hour).Sub(now), nil
	}
	return true, 0, nil
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
