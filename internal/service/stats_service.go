package service

import (
	"context"
	"time"

	"github.com/jinzhu/copier"

	"sqlmentor/config"
	"sqlmentor/internal/dto"
	"sqlmentor/internal/gateway"
)

const leaderboardSize = 10

// StatsService answers the read-only score queries: a user's own scores,
// the all-time top list, and the weekly heroes board.
type StatsService interface {
	Scores(ctx context.Context, userID int64) (*dto.ScoresResponse, error)
	TopTotals(ctx context.Context) ([]dto.LeaderboardRow, error)
	WeeklyHeroes(ctx context.Context) ([]dto.WeeklyHeroRow, error)
}

type statsService struct {
	gw      gateway.Gateway
	streaks StreakService
	loc     *time.Location
	now     func() time.Time
}

func NewStatsService(gw gateway.Gateway, streaks StreakService, cfg *config.Config) StatsService {
	return &statsService{
		gw:      gw,
		streaks: streaks,
		loc:     cfg.Location(),
		now:     time.Now,
	}
}

func (s *statsService) Scores(ctx context.Context, userID int64) (*dto.ScoresResponse, error) {
	now := s.now()

	total, err := s.gw.TotalPoints(ctx, userID)
	if err != nil {
		return nil, infraError("total_points", err)
	}
	weekly, err := s.gw.WeeklyPoints(ctx, userID, weekStart(now, s.loc))
	if err != nil {
		return nil, infraError("weekly_points", err)
	}
	streak, err := s.streaks.Current(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &dto.ScoresResponse{
		UserID:       userID,
		TotalPoints:  total,
		WeeklyPoints: weekly,
		StreakDays:   streak,
	}, nil
}

func (s *statsService) TopTotals(ctx context.Context) ([]dto.LeaderboardRow, error) {
	entries, err := s.gw.TopTotals(ctx, leaderboardSize)
	if err != nil {
		return nil, infraError("top_totals", err)
	}

	rows := make([]dto.LeaderboardRow, len(entries))
	for i := range entries {
		if err := copier.Copy(&rows[i], &entries[i]); err != nil {
			return nil, infraError("top_totals_copy", err)
		}
		rows[i].Rank = i + 1
	}
	return rows, nil
}

func (s *statsService) WeeklyHeroes(ctx context.Context) ([]dto.WeeklyHeroRow, error) {
	now := s.now()
	heroes, err := s.gw.WeeklyHeroes(ctx, weekStart(now, s.loc), leaderboardSize)
	if err != nil {
		return nil, infraError("weekly_heroes", err)
	}

	rows := make([]dto.WeeklyHeroRow, len(heroes))
	for i := range heroes {
		if err := copier.Copy(&rows[i], &heroes[i]); err != nil {
			return nil, infraError("weekly_heroes_copy", err)
		}
		rows[i].Rank = i + 1
		streak, err := s.streaks.Current(ctx, heroes[i].UserID, now)
		if err != nil {
			return nil, err
		}
		rows[i].StreakDays = streak
	}
	return rows, nil
}
