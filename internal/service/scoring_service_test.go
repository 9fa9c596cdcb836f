package service

import (
	"testing"

	"sqlmentor/config"
	"sqlmentor/internal/model"
)

func newTestScoring() ScoringService {
	return &scoringService{cfg: config.Scoring{
		BaseEasy:            60,
		BaseMedium:          80,
		BaseHard:            120,
		IncorrectPenalty:    -10,
		StreakUnit:          5,
		StreakCap:           50,
		ChallengeMultiplier: 2,
	}}
}

func TestScoreBaseByDifficulty(t *testing.T) {
	s := newTestScoring()
	cases := []struct {
		difficulty string
		want       int
	}{
		{model.DifficultyEasy, 60},
		{model.DifficultyMedium, 80},
		{model.DifficultyHard, 120},
	}
	for _, tc := range cases {
		if got := s.Score(tc.difficulty, true, 0); got != tc.want {
			t.Fatalf("Score(%s, correct, streak 0) = %d, want %d", tc.difficulty, got, tc.want)
		}
	}
}

func TestScoreStreakBonus(t *testing.T) {
	s := newTestScoring()

	if got := s.Score(model.DifficultyEasy, true, 3); got != 75 {
		t.Fatalf("easy with 3-day streak = %d, want 75", got)
	}
	// Bonus caps at 50 no matter how long the streak runs.
	if got := s.Score(model.DifficultyEasy, true, 10); got != 110 {
		t.Fatalf("easy with 10-day streak = %d, want 110", got)
	}
	if got := s.Score(model.DifficultyEasy, true, 365); got != 110 {
		t.Fatalf("easy with 365-day streak = %d, want capped 110", got)
	}
}

func TestScoreMonotonicInStreak(t *testing.T) {
	s := newTestScoring()
	prev := s.Score(model.DifficultyHard, true, 0)
	for days := 1; days <= 20; days++ {
		got := s.Score(model.DifficultyHard, true, days)
		if got < prev {
			t.Fatalf("score decreased from %d to %d at streak %d", prev, got, days)
		}
		prev = got
	}
}

func TestScoreIncorrectPenaltyIgnoresStreak(t *testing.T) {
	s := newTestScoring()
	for _, days := range []int{0, 1, 30} {
		if got := s.Score(model.DifficultyHard, false, days); got != -10 {
			t.Fatalf("incorrect with streak %d = %d, want -10", days, got)
		}
	}
}

func TestChallengeScore(t *testing.T) {
	s := newTestScoring()
	if got := s.ChallengeScore(model.DifficultyMedium, true); got != 160 {
		t.Fatalf("challenge medium correct = %d, want 160", got)
	}
	// No streak bonus in challenges; incorrect takes the same flat penalty.
	if got := s.ChallengeScore(model.DifficultyHard, false); got != -10 {
		t.Fatalf("challenge incorrect = %d, want -10", got)
	}
}
