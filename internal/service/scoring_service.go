package service

import (
	"sqlmentor/config"
	"sqlmentor/internal/model"
)

// ScoringService computes signed point deltas. Pure configuration-driven
// arithmetic; unit-testable without any I/O.
type ScoringService interface {
	// Score returns the delta for a regular practice submission.
	// Correct: base(difficulty) + min(streakDays*unit, cap).
	// Incorrect: the fixed penalty, regardless of streak.
	Score(difficulty string, correct bool, streakDays int) int
	// ChallengeScore applies the challenge multiplier to the base points;
	// no streak bonus inside challenges.
	ChallengeScore(difficulty string, correct bool) int
	BasePoints(difficulty string) int
}

type scoringService struct {
	cfg config.Scoring
}

func NewScoringService(cfg *config.Config) ScoringService {
	return &scoringService{cfg: cfg.Scoring}
}

func (s *scoringService) BasePoints(difficulty string) int {
	switch difficulty {
	case model.DifficultyEasy:
		return s.cfg.BaseEasy
	case model.DifficultyMedium:
		return s.cfg.BaseMedium
	case model.DifficultyHard:
		return s.cfg.BaseHard
	}
	return 0
}

func (s *scoringService) Score(difficulty string, correct bool, streakDays int) int {
	if !correct {
		return s.cfg.IncorrectPenalty
	}
	bonus := streakDays * s.cfg.StreakUnit
	if bonus > s.cfg.StreakCap {
		bonus = s.cfg.StreakCap
	}
	return s.BasePoints(difficulty) + bonus
}

func (s *scoringService) ChallengeScore(difficulty string, correct bool) int {
	if !correct {
		return s.cfg.IncorrectPenalty
	}
	return s.BasePoints(difficulty) * s.cfg.ChallengeMultiplier
}
