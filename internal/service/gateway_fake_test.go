package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"sqlmentor/internal/gateway"
	"sqlmentor/internal/model"
	"sqlmentor/internal/repository"
)

// fakeGateway is an in-memory gateway.Gateway for service tests. Methods are
// safe for concurrent use; err knobs force failures per operation name.
type fakeGateway struct {
	mu sync.Mutex

	users        map[int64]model.User
	questions    map[uint]model.Question
	questionSeq  []uint // issue order for QuestionForUser
	submissions  []model.Submission
	streaks      map[int64]model.Streak
	challenges   map[uint]*model.Challenge
	challengeSeq uint
	chSubs       []model.ChallengeSubmission
	chSubSeq     uint
	totals       map[int64]int
	daily        map[string]int
	weekly       map[string]int
	achievements map[int64][]string

	errs map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		users:        make(map[int64]model.User),
		questions:    make(map[uint]model.Question),
		streaks:      make(map[int64]model.Streak),
		challenges:   make(map[uint]*model.Challenge),
		totals:       make(map[int64]int),
		daily:        make(map[string]int),
		weekly:       make(map[string]int),
		achievements: make(map[int64][]string),
		errs:         make(map[string]error),
	}
}

func (f *fakeGateway) failWith(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[op] = err
}

func (f *fakeGateway) addQuestion(q model.Question) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions[q.ID] = q
	f.questionSeq = append(f.questionSeq, q.ID)
}

func (f *fakeGateway) EnsureUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["ensure_user"]; err != nil {
		return err
	}
	if _, ok := f.users[user.UserID]; !ok {
		f.users[user.UserID] = *user
	}
	return nil
}

func (f *fakeGateway) QuestionForUser(_ context.Context, userID int64, filter gateway.QuestionFilter) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["question_for_user"]; err != nil {
		return nil, err
	}
	solved := make(map[uint]bool)
	for _, sub := range f.submissions {
		if sub.UserID == userID && sub.Correct {
			solved[sub.QuestionID] = true
		}
	}
	for _, id := range f.questionSeq {
		q := f.questions[id]
		if solved[q.ID] {
			continue
		}
		if filter.Difficulty != nil && q.Difficulty != *filter.Difficulty {
			continue
		}
		if filter.Topic != nil && (q.Topic == nil || *q.Topic != *filter.Topic) {
			continue
		}
		if filter.Company != nil && (q.Company == nil || *q.Company != *filter.Company) {
			continue
		}
		out := q
		return &out, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGateway) IncorrectAttempts(_ context.Context, userID int64, questionID uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["incorrect_attempts"]; err != nil {
		return 0, err
	}
	count := 0
	for _, sub := range f.submissions {
		if sub.UserID == userID && sub.QuestionID == questionID && !sub.Correct {
			count++
		}
	}
	return count, nil
}

func (f *fakeGateway) RecordSubmission(_ context.Context, submission *model.Submission, grant gateway.PointsGrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["record_submission"]; err != nil {
		return err
	}
	submission.ID = uint(len(f.submissions) + 1)
	f.submissions = append(f.submissions, *submission)
	f.applyGrant(grant)
	return nil
}

func (f *fakeGateway) applyGrant(grant gateway.PointsGrant) {
	f.totals[grant.UserID] += grant.Points
	f.daily[grantKey(grant.UserID, grant.DayStart)] += grant.Points
	f.weekly[grantKey(grant.UserID, grant.WeekStart)] += grant.Points
}

func grantKey(userID int64, t time.Time) string {
	return t.Format("2006-01-02") + "/" + strconv.FormatInt(userID, 10)
}

func (f *fakeGateway) SetSubmissionFeedback(_ context.Context, submissionID uint, feedback string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.submissions {
		if f.submissions[i].ID == submissionID {
			f.submissions[i].AIFeedback = &feedback
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeGateway) Streak(_ context.Context, userID int64) (*model.Streak, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["streak"]; err != nil {
		return nil, err
	}
	streak, ok := f.streaks[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := streak
	return &out, nil
}

func (f *fakeGateway) SaveStreak(_ context.Context, streak *model.Streak) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["save_streak"]; err != nil {
		return err
	}
	f.streaks[streak.UserID] = *streak
	return nil
}

func (f *fakeGateway) ActiveChallenge(_ context.Context) (*model.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["active_challenge"]; err != nil {
		return nil, err
	}
	for _, ch := range f.challenges {
		if ch.ClosedAt == nil {
			out := *ch
			out.Question = f.questions[ch.QuestionID]
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGateway) ChallengeCandidate(_ context.Context) (*model.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["challenge_candidate"]; err != nil {
		return nil, err
	}
	used := make(map[uint]bool)
	for _, ch := range f.challenges {
		used[ch.QuestionID] = true
	}
	for _, id := range f.questionSeq {
		if !used[id] {
			out := f.questions[id]
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGateway) OpenChallenge(_ context.Context, challenge *model.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["open_challenge"]; err != nil {
		return err
	}
	f.challengeSeq++
	challenge.ID = f.challengeSeq
	stored := *challenge
	f.challenges[challenge.ID] = &stored
	return nil
}

func (f *fakeGateway) SubmitChallengeAnswer(_ context.Context, submission *model.ChallengeSubmission) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["submit_challenge_answer"]; err != nil {
		return false, err
	}
	for _, sub := range f.chSubs {
		if sub.ChallengeID == submission.ChallengeID && sub.UserID == submission.UserID {
			return false, nil
		}
	}
	f.chSubSeq++
	submission.ID = f.chSubSeq
	f.chSubs = append(f.chSubs, *submission)
	return true, nil
}

func (f *fakeGateway) ChallengeSubmissions(_ context.Context, challengeID uint) ([]model.ChallengeSubmission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["challenge_submissions"]; err != nil {
		return nil, err
	}
	var out []model.ChallengeSubmission
	for _, sub := range f.chSubs {
		if sub.ChallengeID == challengeID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeGateway) FinalizeChallenge(_ context.Context, challengeID uint, graded []model.ChallengeSubmission, results []model.Submission, grants []gateway.PointsGrant, closedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["finalize_challenge"]; err != nil {
		return false, err
	}
	ch, ok := f.challenges[challengeID]
	if !ok || ch.ClosedAt != nil {
		return false, nil
	}
	at := closedAt
	ch.ClosedAt = &at
	for _, g := range graded {
		for i := range f.chSubs {
			if f.chSubs[i].ID == g.ID {
				f.chSubs[i].Correct = g.Correct
			}
		}
	}
	for i := range results {
		results[i].ID = uint(len(f.submissions) + 1)
		f.submissions = append(f.submissions, results[i])
	}
	for _, grant := range grants {
		f.applyGrant(grant)
	}
	return true, nil
}

func (f *fakeGateway) TotalPoints(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["total_points"]; err != nil {
		return 0, err
	}
	return f.totals[userID], nil
}

func (f *fakeGateway) WeeklyPoints(_ context.Context, userID int64, weekStart time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["weekly_points"]; err != nil {
		return 0, err
	}
	return f.weekly[grantKey(userID, weekStart)], nil
}

func (f *fakeGateway) TopTotals(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["top_totals"]; err != nil {
		return nil, err
	}
	var entries []model.LeaderboardEntry
	for userID, points := range f.totals {
		entries = append(entries, model.LeaderboardEntry{UserID: userID, Points: points})
	}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[j].Points > entries[i].Points {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeGateway) WeeklyHeroes(_ context.Context, weekStart time.Time, limit int) ([]repository.WeeklyHero, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["weekly_heroes"]; err != nil {
		return nil, err
	}
	byUser := make(map[int64]*repository.WeeklyHero)
	var order []int64
	for _, sub := range f.submissions {
		if sub.SubmittedAt.Before(weekStart) {
			continue
		}
		hero, ok := byUser[sub.UserID]
		if !ok {
			hero = &repository.WeeklyHero{UserID: sub.UserID}
			byUser[sub.UserID] = hero
			order = append(order, sub.UserID)
		}
		hero.Submissions++
		hero.Points += sub.Points
	}
	var heroes []repository.WeeklyHero
	for _, userID := range order {
		heroes = append(heroes, *byUser[userID])
	}
	for i := 0; i < len(heroes); i++ {
		for j := i + 1; j < len(heroes); j++ {
			if heroes[j].Submissions > heroes[i].Submissions {
				heroes[i], heroes[j] = heroes[j], heroes[i]
			}
		}
	}
	if len(heroes) > limit {
		heroes = heroes[:limit]
	}
	return heroes, nil
}

func (f *fakeGateway) AchievementCodes(_ context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["achievement_codes"]; err != nil {
		return nil, err
	}
	return append([]string(nil), f.achievements[userID]...), nil
}

func (f *fakeGateway) AwardAchievement(_ context.Context, achievement *model.Achievement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs["award_achievement"]; err != nil {
		return err
	}
	for _, code := range f.achievements[achievement.UserID] {
		if code == achievement.Code {
			return nil
		}
	}
	f.achievements[achievement.UserID] = append(f.achievements[achievement.UserID], achievement.Code)
	return nil
}
