package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"sqlmentor/config"
	"sqlmentor/internal/gateway"
	"sqlmentor/internal/model"
)

// UserStats is the aggregate snapshot achievements are derived from.
type UserStats struct {
	TotalPoints int
	StreakDays  int
}

// DeriveAchievements is a pure function: the full set of achievement codes
// the given stats merit. Callers diff it against what is already stored.
func DeriveAchievements(stats UserStats) []string {
	var codes []string
	if stats.TotalPoints >= 100 {
		codes = append(codes, "points_100")
	}
	if stats.TotalPoints >= 500 {
		codes = append(codes, "points_500")
	}
	if stats.TotalPoints >= 1000 {
		codes = append(codes, "points_1000")
	}
	if stats.StreakDays >= 3 {
		codes = append(codes, "streak_3")
	}
	if stats.StreakDays >= 7 {
		codes = append(codes, "streak_7")
	}
	if stats.StreakDays >= 30 {
		codes = append(codes, "streak_30")
	}
	return codes
}

// AchievementService re-derives a user's achievements after a scoring
// update and persists the newly earned ones.
type AchievementService interface {
	Refresh(ctx context.Context, userID int64, now time.Time) ([]string, error)
}

type achievementService struct {
	gw      gateway.Gateway
	streaks StreakService
}

func NewAchievementService(gw gateway.Gateway, streaks StreakService, _ *config.Config) AchievementService {
	return &achievementService{gw: gw, streaks: streaks}
}

func (s *achievementService) Refresh(ctx context.Context, userID int64, now time.Time) ([]string, error) {
	total, err := s.gw.TotalPoints(ctx, userID)
	if err != nil {
		return nil, infraError("achievement_stats", err)
	}
	streak, err := s.streaks.Current(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	earned := DeriveAchievements(UserStats{TotalPoints: total, StreakDays: streak})
	if len(earned) == 0 {
		return nil, nil
	}

	existing, err := s.gw.AchievementCodes(ctx, userID)
	if err != nil {
		return nil, infraError("achievement_codes", err)
	}
	have := make(map[string]bool, len(existing))
	for _, code := range existing {
		have[code] = true
	}

	var awarded []string
	for _, code := range earned {
		if have[code] {
			continue
		}
		if err := s.gw.AwardAchievement(ctx, &model.Achievement{UserID: userID, Code: code}); err != nil {
			return awarded, infraError("award_achievement", err)
		}
		awarded = append(awarded, code)
	}
	if len(awarded) > 0 {
		log.Info().Int64("userID", userID).Strs("codes", awarded).Msg("Achievements awarded")
	}
	return awarded, nil
}
