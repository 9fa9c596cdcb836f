// Package gateway is the only component allowed to talk to durable storage.
// It bounds concurrent storage access with an admission semaphore that is
// independent of the driver's pool, and retries transient failures with a
// fixed-delay policy. Permanent errors propagate on the first attempt.
package gateway

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"

	"sqlmentor/config"
	"sqlmentor/internal/model"
	"sqlmentor/internal/repository"
)

// QuestionFilter narrows question selection; nil fields mean "any".
type QuestionFilter struct {
	Difficulty *string
	Topic      *string
	Company    *string
}

// PointsGrant carries one user's point delta together with the reference-tz
// period keys it accrues to.
type PointsGrant struct {
	UserID    int64
	Points    int
	DayStart  time.Time
	WeekStart time.Time
}

type Gateway interface {
	EnsureUser(ctx context.Context, user *model.User) error

	QuestionForUser(ctx context.Context, userID int64, filter QuestionFilter) (*model.Question, error)
	IncorrectAttempts(ctx context.Context, userID int64, questionID uint) (int, error)

	// RecordSubmission appends the submission and applies its points grant
	// to the total/daily/weekly aggregates in one transaction.
	RecordSubmission(ctx context.Context, submission *model.Submission, grant PointsGrant) error
	SetSubmissionFeedback(ctx context.Context, submissionID uint, feedback string) error

	Streak(ctx context.Context, userID int64) (*model.Streak, error)
	SaveStreak(ctx context.Context, streak *model.Streak) error

	ActiveChallenge(ctx context.Context) (*model.Challenge, error)
	ChallengeCandidate(ctx context.Context) (*model.Question, error)
	OpenChallenge(ctx context.Context, challenge *model.Challenge) error
	SubmitChallengeAnswer(ctx context.Context, submission *model.ChallengeSubmission) (bool, error)
	ChallengeSubmissions(ctx context.Context, challengeID uint) ([]model.ChallengeSubmission, error)
	// FinalizeChallenge marks the challenge closed and persists all graded
	// results in a single transaction. Returns false without writing
	// anything if the challenge was already closed, so a replayed close
	// tick can never award points twice.
	FinalizeChallenge(ctx context.Context, challengeID uint, graded []model.ChallengeSubmission, results []model.Submission, grants []PointsGrant, closedAt time.Time) (bool, error)

	TotalPoints(ctx context.Context, userID int64) (int, error)
	WeeklyPoints(ctx context.Context, userID int64, weekStart time.Time) (int, error)
	TopTotals(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	WeeklyHeroes(ctx context.Context, weekStart time.Time, limit int) ([]repository.WeeklyHero, error)

	AchievementCodes(ctx context.Context, userID int64) ([]string, error)
	AwardAchievement(ctx context.Context, achievement *model.Achievement) error
}

// RetryPolicy is passed into the gateway constructor so retry behaviour
// stays out of business-logic call sites.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

type storageGateway struct {
	db           *gorm.DB
	sem          *semaphore.Weighted
	policy       RetryPolicy
	users        repository.UserRepository
	questions    repository.QuestionRepository
	submissions  repository.SubmissionRepository
	streaks      repository.StreakRepository
	challenges   repository.ChallengeRepository
	points       repository.PointsRepository
	achievements repository.AchievementRepository
}

func New(db *gorm.DB, cfg *config.Config) Gateway {
	return &storageGateway{
		db:           db,
		sem:          semaphore.NewWeighted(cfg.Gateway.MaxConcurrent),
		policy:       RetryPolicy{MaxAttempts: cfg.Gateway.RetryAttempts, Delay: cfg.Gateway.RetryDelay},
		users:        repository.NewUserRepository(db),
		questions:    repository.NewQuestionRepository(db),
		submissions:  repository.NewSubmissionRepository(db),
		streaks:      repository.NewStreakRepository(db),
		challenges:   repository.NewChallengeRepository(db),
		points:       repository.NewPointsRepository(db),
		achievements: repository.NewAchievementRepository(db),
	}
}

// do runs one storage operation under the admission semaphore, retrying
// transient failures per the policy.
func (g *storageGateway) do(ctx context.Context, op string, fn func() error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)

	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || !isTransient(err) || attempt >= g.policy.MaxAttempts {
			break
		}
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("Transient storage error, retrying")
		select {
		case <-time.After(g.policy.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (g *storageGateway) EnsureUser(ctx context.Context, user *model.User) error {
	return g.do(ctx, "ensure_user", func() error { return g.users.Ensure(user) })
}

func (g *storageGateway) QuestionForUser(ctx context.Context, userID int64, filter QuestionFilter) (*model.Question, error) {
	var question *model.Question
	err := g.do(ctx, "question_for_user", func() error {
		var err error
		question, err = g.questions.FindRandomForUser(userID, filter.Difficulty, filter.Topic, filter.Company)
		return err
	})
	return question, err
}

func (g *storageGateway) IncorrectAttempts(ctx context.Context, userID int64, questionID uint) (int, error) {
	var count int64
	err := g.do(ctx, "incorrect_attempts", func() error {
		var err error
		count, err = g.submissions.CountIncorrect(userID, questionID)
		return err
	})
	return int(count), err
}

func (g *storageGateway) RecordSubmission(ctx context.Context, submission *model.Submission, grant PointsGrant) error {
	return g.do(ctx, "record_submission", func() error {
		return g.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(submission).Error; err != nil {
				return err
			}
			return applyGrantTx(tx, grant)
		})
	})
}

func (g *storageGateway) SetSubmissionFeedback(ctx context.Context, submissionID uint, feedback string) error {
	return g.do(ctx, "set_submission_feedback", func() error {
		return g.submissions.SetFeedback(submissionID, feedback)
	})
}

func (g *storageGateway) Streak(ctx context.Context, userID int64) (*model.Streak, error) {
	var streak *model.Streak
	err := g.do(ctx, "streak", func() error {
		var err error
		streak, err = g.streaks.Find(userID)
		return err
	})
	return streak, err
}

func (g *storageGateway) SaveStreak(ctx context.Context, streak *model.Streak) error {
	return g.do(ctx, "save_streak", func() error { return g.streaks.Save(streak) })
}

func (g *storageGateway) ActiveChallenge(ctx context.Context) (*model.Challenge, error) {
	var challenge *model.Challenge
	err := g.do(ctx, "active_challenge", func() error {
		var err error
		challenge, err = g.challenges.Active()
		return err
	})
	return challenge, err
}

func (g *storageGateway) ChallengeCandidate(ctx context.Context) (*model.Question, error) {
	var question *model.Question
	err := g.do(ctx, "challenge_candidate", func() error {
		var err error
		question, err = g.questions.FindChallengeCandidate()
		return err
	})
	return question, err
}

func (g *storageGateway) OpenChallenge(ctx context.Context, challenge *model.Challenge) error {
	return g.do(ctx, "open_challenge", func() error { return g.challenges.Create(challenge) })
}

func (g *storageGateway) SubmitChallengeAnswer(ctx context.Context, submission *model.ChallengeSubmission) (bool, error) {
	var created bool
	err := g.do(ctx, "submit_challenge_answer", func() error {
		var err error
		created, err = g.challenges.CreateSubmission(submission)
		return err
	})
	return created, err
}

func (g *storageGateway) ChallengeSubmissions(ctx context.Context, challengeID uint) ([]model.ChallengeSubmission, error) {
	var submissions []model.ChallengeSubmission
	err := g.do(ctx, "challenge_submissions", func() error {
		var err error
		submissions, err = g.challenges.SubmissionsFor(challengeID)
		return err
	})
	return submissions, err
}

func (g *storageGateway) FinalizeChallenge(ctx context.Context, challengeID uint, graded []model.ChallengeSubmission, results []model.Submission, grants []PointsGrant, closedAt time.Time) (bool, error) {
	closed := false
	err := g.do(ctx, "finalize_challenge", func() error {
		closed = false
		return g.db.Transaction(func(tx *gorm.DB) error {
			// The closed_at guard makes the whole close idempotent: a
			// replayed tick updates zero rows and writes nothing.
			res := tx.Model(&model.Challenge{}).
				Where("id = ? AND closed_at IS NULL", challengeID).
				Update("closed_at", closedAt)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return nil
			}
			for i := range graded {
				if err := tx.Model(&model.ChallengeSubmission{}).
					Where("id = ?", graded[i].ID).
					Update("correct", graded[i].Correct).Error; err != nil {
					return err
				}
			}
			for i := range results {
				if err := tx.Create(&results[i]).Error; err != nil {
					return err
				}
			}
			for _, grant := range grants {
				if err := applyGrantTx(tx, grant); err != nil {
					return err
				}
			}
			closed = true
			return nil
		})
	})
	return closed, err
}

func (g *storageGateway) TotalPoints(ctx context.Context, userID int64) (int, error) {
	var total int
	err := g.do(ctx, "total_points", func() error {
		var err error
		total, err = g.points.TotalFor(userID)
		return err
	})
	return total, err
}

func (g *storageGateway) WeeklyPoints(ctx context.Context, userID int64, weekStart time.Time) (int, error) {
	var points int
	err := g.do(ctx, "weekly_points", func() error {
		var err error
		points, err = g.points.WeeklyFor(userID, weekStart)
		return err
	})
	return points, err
}

func (g *storageGateway) TopTotals(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	var entries []model.LeaderboardEntry
	err := g.do(ctx, "top_totals", func() error {
		var err error
		entries, err = g.points.TopTotals(limit)
		return err
	})
	return entries, err
}

func (g *storageGateway) WeeklyHeroes(ctx context.Context, weekStart time.Time, limit int) ([]repository.WeeklyHero, error) {
	var heroes []repository.WeeklyHero
	err := g.do(ctx, "weekly_heroes", func() error {
		var err error
		heroes, err = g.points.WeeklyHeroes(weekStart, limit)
		return err
	})
	return heroes, err
}

func (g *storageGateway) AchievementCodes(ctx context.Context, userID int64) ([]string, error) {
	var codes []string
	err := g.do(ctx, "achievement_codes", func() error {
		var err error
		codes, err = g.achievements.Codes(userID)
		return err
	})
	return codes, err
}

func (g *storageGateway) AwardAchievement(ctx context.Context, achievement *model.Achievement) error {
	return g.do(ctx, "award_achievement", func() error { return g.achievements.Award(achievement) })
}

func applyGrantTx(tx *gorm.DB, grant PointsGrant) error {
	if err := repository.AddTotalTx(tx, grant.UserID, grant.Points); err != nil {
		return err
	}
	if err := repository.AddDailyTx(tx, grant.UserID, grant.DayStart, grant.Points); err != nil {
		return err
	}
	return repository.AddWeeklyTx(tx, grant.UserID, grant.WeekStart, grant.Points)
}
