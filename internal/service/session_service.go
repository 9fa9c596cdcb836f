package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sqlmentor/config"
	"sqlmentor/internal/dto"
	"sqlmentor/internal/gateway"
	"sqlmentor/internal/model"
)

// SessionService owns the one-active-question-per-user state machine:
// Issued -> Correct | Exhausted | TimedOut | Skipped, all terminal. Session
// state lives only in memory; everything durable goes through the gateway,
// and the session lock is never held across a gateway call.
type SessionService interface {
	Issue(ctx context.Context, userID int64, username string, filter gateway.QuestionFilter) (*dto.IssuedQuestionResponse, error)
	Submit(ctx context.Context, userID int64, answer string) (*dto.SubmitResultResponse, error)
	Skip(ctx context.Context, userID int64) (*dto.SkipResultResponse, error)
	// Timeout is fired by the session's own timer. It validates that the
	// given question is still the current session before acting, so a timer
	// that lost the race to a submit, skip or re-issue is a no-op.
	Timeout(userID int64, questionID uint)
}

type sessionState int

const (
	stateIssued sessionState = iota
	// stateExhausted keeps a terminal tombstone in the map so a repeat
	// submit answers "attempts exhausted" instead of re-grading. Replaced
	// by the next Issue.
	stateExhausted
)

type session struct {
	question     model.Question
	issuedAt     time.Time
	expiresAt    time.Time
	attemptsLeft int
	budget       int
	state        sessionState
	timer        *time.Timer
}

type sessionService struct {
	gw           gateway.Gateway
	grader       GraderService
	scoring      ScoringService
	streaks      StreakService
	achievements AchievementService
	coach        CoachService
	cfg          config.Session
	loc          *time.Location
	now          func() time.Time

	mu       sync.Mutex
	sessions map[int64]*session
}

func NewSessionService(
	gw gateway.Gateway,
	grader GraderService,
	scoring ScoringService,
	streaks StreakService,
	achievements AchievementService,
	coach CoachService,
	cfg *config.Config,
) SessionService {
	return &sessionService{
		gw:           gw,
		grader:       grader,
		scoring:      scoring,
		streaks:      streaks,
		achievements: achievements,
		coach:        coach,
		cfg:          cfg.Session,
		loc:          cfg.Location(),
		now:          time.Now,
		sessions:     make(map[int64]*session),
	}
}

func (s *sessionService) timeLimit(difficulty string) time.Duration {
	switch difficulty {
	case model.DifficultyMedium:
		return s.cfg.TimeLimitMedium
	case model.DifficultyHard:
		return s.cfg.TimeLimitHard
	}
	return s.cfg.TimeLimitEasy
}

func (s *sessionService) Issue(ctx context.Context, userID int64, username string, filter gateway.QuestionFilter) (*dto.IssuedQuestionResponse, error) {
	if err := s.gw.EnsureUser(ctx, &model.User{UserID: userID, Username: username}); err != nil {
		return nil, infraError("ensure_user", err)
	}

	question, err := s.gw.QuestionForUser(ctx, userID, filter)
	if isNotFound(err) {
		return nil, ErrNoQuestionsAvailable
	}
	if err != nil {
		return nil, infraError("question_for_user", err)
	}

	prior, err := s.gw.IncorrectAttempts(ctx, userID, question.ID)
	if err != nil {
		return nil, infraError("incorrect_attempts", err)
	}
	budget := s.cfg.AttemptBase - prior
	if budget < 1 {
		budget = 1
	}

	limit := s.timeLimit(question.Difficulty)
	now := s.now()
	questionID := question.ID

	s.mu.Lock()
	if old, ok := s.sessions[userID]; ok && old.timer != nil {
		// Replacing a session must cancel its watchdog, or a stale timeout
		// fires against a session that no longer exists.
		old.timer.Stop()
	}
	sess := &session{
		question:     *question,
		issuedAt:     now,
		expiresAt:    now.Add(limit),
		attemptsLeft: budget,
		budget:       budget,
		state:        stateIssued,
	}
	sess.timer = time.AfterFunc(limit, func() { s.Timeout(userID, questionID) })
	s.sessions[userID] = sess
	s.mu.Unlock()

	log.Info().Int64("userID", userID).Uint("questionID", questionID).
		Str("difficulty", question.Difficulty).Int("budget", budget).Msg("Question issued")

	return &dto.IssuedQuestionResponse{
		QuestionID:       questionID,
		Prompt:           question.Prompt,
		Difficulty:       question.Difficulty,
		Dataset:          question.Dataset,
		Topic:            question.Topic,
		Company:          question.Company,
		PointsAvailable:  s.scoring.BasePoints(question.Difficulty),
		AttemptBudget:    budget,
		TimeLimitSeconds: int(limit.Seconds()),
		ExpiresAt:        sess.expiresAt,
	}, nil
}

func (s *sessionService) Submit(ctx context.Context, userID int64, answer string) (*dto.SubmitResultResponse, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	if sess.state == stateExhausted {
		s.mu.Unlock()
		return nil, ErrAttemptsExhausted
	}
	question := sess.question
	issuedAt := sess.issuedAt
	s.mu.Unlock()

	correct, similarity, err := s.grader.Grade(answer, question.Answer)
	if err != nil {
		log.Error().Err(err).Uint("questionID", question.ID).Msg("Question is ungradeable")
		return nil, ErrServiceUnavailable
	}

	now := s.now()
	streakDays := 0
	if correct {
		streakDays, err = s.streaks.Current(ctx, userID, now)
		if err != nil {
			return nil, err
		}
	}
	points := s.scoring.Score(question.Difficulty, correct, streakDays)

	// Transition: first to transition wins. If the session changed while we
	// were grading (timeout, skip, re-issue), this submit lost the race.
	s.mu.Lock()
	cur, ok := s.sessions[userID]
	if !ok || cur.state != stateIssued || cur.question.ID != question.ID || !cur.issuedAt.Equal(issuedAt) {
		s.mu.Unlock()
		log.Debug().Int64("userID", userID).Uint("questionID", question.ID).Msg("Submit lost the transition race")
		return nil, ErrNoActiveSession
	}
	status := dto.SubmitStatusIncorrect
	attemptsLeft := 0
	switch {
	case correct:
		cur.timer.Stop()
		delete(s.sessions, userID)
		status = dto.SubmitStatusCorrect
	default:
		cur.attemptsLeft--
		attemptsLeft = cur.attemptsLeft
		if cur.attemptsLeft <= 0 {
			cur.timer.Stop()
			cur.state = stateExhausted
			status = dto.SubmitStatusExhausted
		}
	}
	s.mu.Unlock()

	submission := &model.Submission{
		UserID:      userID,
		QuestionID:  question.ID,
		Correct:     correct,
		Points:      points,
		Similarity:  similarity,
		SubmittedAt: now,
	}
	grant := gateway.PointsGrant{
		UserID:    userID,
		Points:    points,
		DayStart:  dayStart(now, s.loc),
		WeekStart: weekStart(now, s.loc),
	}
	if err := s.gw.RecordSubmission(ctx, submission, grant); err != nil {
		return nil, infraError("record_submission", err)
	}

	streak := streakDays
	if correct {
		streak, err = s.streaks.RecordCorrectAnswer(ctx, userID, now)
		if err != nil {
			return nil, err
		}
	}

	go s.refreshAchievements(userID, now)

	result := &dto.SubmitResultResponse{
		Status:       status,
		Correct:      correct,
		Similarity:   similarity,
		Points:       points,
		AttemptsLeft: attemptsLeft,
		StreakDays:   streak,
	}
	switch status {
	case dto.SubmitStatusIncorrect:
		result.Hint = question.Hint
	case dto.SubmitStatusExhausted:
		reference := question.Answer
		result.ReferenceAnswer = &reference
		if s.coach != nil && s.coach.Enabled() {
			go s.reviewExhausted(question, answer, submission.ID)
		}
	}

	// Aggregate readbacks are display data; a failed read degrades the
	// response rather than failing a submission that is already durable.
	if total, err := s.gw.TotalPoints(ctx, userID); err == nil {
		result.TotalPoints = total
	} else {
		log.Warn().Err(err).Int64("userID", userID).Msg("Failed to read total points")
	}
	if weekly, err := s.gw.WeeklyPoints(ctx, userID, grant.WeekStart); err == nil {
		result.WeeklyPoints = weekly
	} else {
		log.Warn().Err(err).Int64("userID", userID).Msg("Failed to read weekly points")
	}

	log.Info().Int64("userID", userID).Uint("questionID", question.ID).
		Str("status", status).Float64("similarity", similarity).Int("points", points).Msg("Submission graded")
	return result, nil
}

func (s *sessionService) Skip(ctx context.Context, userID int64) (*dto.SkipResultResponse, error) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || sess.state != stateIssued {
		s.mu.Unlock()
		return nil, ErrNoActiveSession
	}
	sess.timer.Stop()
	questionID := sess.question.ID
	delete(s.sessions, userID)
	s.mu.Unlock()

	// A skip is free: no grading, no penalty, no submission row.
	log.Info().Int64("userID", userID).Uint("questionID", questionID).Msg("Question skipped")
	return &dto.SkipResultResponse{QuestionID: questionID, Skipped: true}, nil
}

func (s *sessionService) Timeout(userID int64, questionID uint) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok || sess.state != stateIssued || sess.question.ID != questionID {
		s.mu.Unlock()
		log.Debug().Int64("userID", userID).Uint("questionID", questionID).Msg("Stale timeout ignored")
		return
	}
	delete(s.sessions, userID)
	s.mu.Unlock()

	log.Info().Int64("userID", userID).Uint("questionID", questionID).Msg("Session timed out")
}

func (s *sessionService) refreshAchievements(userID int64, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := s.achievements.Refresh(ctx, userID, now); err != nil {
		log.Warn().Err(err).Int64("userID", userID).Msg("Achievement refresh failed")
	}
}

func (s *sessionService) reviewExhausted(question model.Question, answer string, submissionID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	feedback, err := s.coach.ReviewSubmission(ctx, &question, answer)
	if err != nil {
		log.Warn().Uint("questionID", question.ID).Err(err).Msg("Coach review failed")
		return
	}
	if err := s.gw.SetSubmissionFeedback(ctx, submissionID, feedback); err != nil {
		log.Warn().Err(err).Uint("submissionID", submissionID).Msg("Failed to store coach feedback")
	}
}
