package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sqlmentor/config"
	"sqlmentor/internal/gateway"
	"sqlmentor/internal/model"
)

// StreakService maintains the per-user consecutive-correct-day counter.
// At most one increment lands per reference-timezone calendar day.
type StreakService interface {
	// RecordCorrectAnswer updates the streak for a correct answer at `now`
	// and returns the resulting day count. Idempotent within one day.
	RecordCorrectAnswer(ctx context.Context, userID int64, now time.Time) (int, error)
	// Current returns the live streak: the stored count if the last counted
	// day is today or yesterday, otherwise 0 (the streak is broken but the
	// row is only rewritten on the next correct answer).
	Current(ctx context.Context, userID int64, now time.Time) (int, error)
}

type streakService struct {
	gw  gateway.Gateway
	loc *time.Location

	// Per-user read-modify-write guard. The core is single-process, so an
	// in-process keyed mutex is enough to prevent lost updates.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewStreakService(gw gateway.Gateway, cfg *config.Config) StreakService {
	return &streakService{
		gw:    gw,
		loc:   cfg.Location(),
		locks: make(map[int64]*sync.Mutex),
	}
}

func (s *streakService) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

func (s *streakService) RecordCorrectAnswer(ctx context.Context, userID int64, now time.Time) (int, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	today := dayStart(now, s.loc)
	yesterday := today.AddDate(0, 0, -1)

	streak, err := s.gw.Streak(ctx, userID)
	switch {
	case isNotFound(err):
		streak = &model.Streak{UserID: userID}
	case err != nil:
		return 0, infraError("streak_read", err)
	}

	last := dayStart(streak.LastDate, s.loc)
	switch {
	case streak.Days > 0 && last.Equal(today):
		return streak.Days, nil
	case streak.Days > 0 && last.Equal(yesterday):
		streak.Days++
	default:
		streak.Days = 1
	}
	streak.LastDate = today

	if err := s.gw.SaveStreak(ctx, streak); err != nil {
		return 0, infraError("streak_write", err)
	}
	log.Debug().Int64("userID", userID).Int("days", streak.Days).Msg("Streak updated")
	return streak.Days, nil
}

func (s *streakService) Current(ctx context.Context, userID int64, now time.Time) (int, error) {
	streak, err := s.gw.Streak(ctx, userID)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, infraError("streak_read", err)
	}
	today := dayStart(now, s.loc)
	last := dayStart(streak.LastDate, s.loc)
	if last.Equal(today) || last.Equal(today.AddDate(0, 0, -1)) {
		return streak.Days, nil
	}
	return 0, nil
}
