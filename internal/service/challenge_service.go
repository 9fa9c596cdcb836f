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
	"sqlmentor/internal/notifier"
)

// ChallengeService coordinates the daily challenge lifecycle:
// Idle -> Open -> Closed. The open row in storage is the source of truth, so
// a restart mid-window resumes cleanly. Submissions during the window are
// stored ungraded; all grading happens once, at close.
type ChallengeService interface {
	// OpenTick opens a new challenge if none is active. Safe to call
	// repeatedly; extra ticks inside the window are no-ops.
	OpenTick(ctx context.Context) error
	// CloseTick grades and closes the active challenge once its window has
	// elapsed. Safe to call repeatedly after the deadline.
	CloseTick(ctx context.Context) error
	Active(ctx context.Context) (*dto.ChallengeView, error)
	Submit(ctx context.Context, userID int64, username, answer string) (*dto.ChallengeSubmitResponse, error)
}

type challengeService struct {
	gw       gateway.Gateway
	grader   GraderService
	scoring  ScoringService
	notifier notifier.Notifier
	cfg      config.Challenge
	loc      *time.Location
	now      func() time.Time

	// mu serializes the ticks so an open and a close cannot interleave.
	mu sync.Mutex
}

func NewChallengeService(
	gw gateway.Gateway,
	grader GraderService,
	scoring ScoringService,
	n notifier.Notifier,
	cfg *config.Config,
) ChallengeService {
	return &challengeService{
		gw:       gw,
		grader:   grader,
		scoring:  scoring,
		notifier: n,
		cfg:      cfg.Challenge,
		loc:      cfg.Location(),
		now:      time.Now,
	}
}

func (s *challengeService) OpenTick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.gw.ActiveChallenge(ctx)
	if err == nil {
		return nil // already open
	}
	if !isNotFound(err) {
		return infraError("active_challenge", err)
	}

	question, err := s.gw.ChallengeCandidate(ctx)
	if isNotFound(err) {
		// Every question has been used. Stay idle rather than repeat one.
		log.Warn().Msg("No unused challenge candidates, staying idle")
		return nil
	}
	if err != nil {
		return infraError("challenge_candidate", err)
	}

	now := s.now()
	challenge := &model.Challenge{
		QuestionID: question.ID,
		OpenedAt:   now,
		ClosesAt:   now.Add(s.cfg.Duration),
	}
	if err := s.gw.OpenChallenge(ctx, challenge); err != nil {
		return infraError("open_challenge", err)
	}

	log.Info().Uint("challengeID", challenge.ID).Uint("questionID", question.ID).
		Time("closesAt", challenge.ClosesAt).Msg("Challenge opened")

	event := notifier.ChallengeOpenedEvent{
		ChallengeID:     challenge.ID,
		QuestionID:      question.ID,
		Prompt:          question.Prompt,
		Difficulty:      question.Difficulty,
		Dataset:         question.Dataset,
		PointsAvailable: s.scoring.ChallengeScore(question.Difficulty, true),
		ClosesAt:        challenge.ClosesAt,
	}
	if err := s.notifier.ChallengeOpened(ctx, event); err != nil {
		// The challenge exists either way; announcement failure is not a
		// reason to fail the tick.
		log.Error().Err(err).Uint("challengeID", challenge.ID).Msg("Failed to announce challenge open")
	}
	return nil
}

func (s *challengeService) CloseTick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	challenge, err := s.gw.ActiveChallenge(ctx)
	if isNotFound(err) {
		log.Debug().Msg("Close tick with no active challenge")
		return nil
	}
	if err != nil {
		return infraError("active_challenge", err)
	}

	now := s.now()
	if now.Before(challenge.ClosesAt) {
		return nil // window still open
	}

	submissions, err := s.gw.ChallengeSubmissions(ctx, challenge.ID)
	if err != nil {
		return infraError("challenge_submissions", err)
	}

	graded := make([]model.ChallengeSubmission, 0, len(submissions))
	results := make([]model.Submission, 0, len(submissions))
	grants := make([]gateway.PointsGrant, 0, len(submissions))
	var correctUsers, incorrectUsers []int64
	day := dayStart(now, s.loc)
	week := weekStart(now, s.loc)

	for _, sub := range submissions {
		correct, similarity, err := s.grader.Grade(sub.Answer, challenge.Question.Answer)
		if err != nil {
			log.Error().Err(err).Uint("challengeID", challenge.ID).Msg("Challenge question is ungradeable")
			return ErrServiceUnavailable
		}
		points := s.scoring.ChallengeScore(challenge.Question.Difficulty, correct)

		verdict := correct
		sub.Correct = &verdict
		graded = append(graded, sub)
		results = append(results, model.Submission{
			UserID:      sub.UserID,
			QuestionID:  challenge.QuestionID,
			Correct:     correct,
			Points:      points,
			Similarity:  similarity,
			SubmittedAt: now,
		})
		grants = append(grants, gateway.PointsGrant{
			UserID:    sub.UserID,
			Points:    points,
			DayStart:  day,
			WeekStart: week,
		})
		if correct {
			correctUsers = append(correctUsers, sub.UserID)
		} else {
			incorrectUsers = append(incorrectUsers, sub.UserID)
		}
	}

	closed, err := s.gw.FinalizeChallenge(ctx, challenge.ID, graded, results, grants, now)
	if err != nil {
		return infraError("finalize_challenge", err)
	}
	if !closed {
		log.Debug().Uint("challengeID", challenge.ID).Msg("Challenge already closed, skipping")
		return nil
	}

	log.Info().Uint("challengeID", challenge.ID).
		Int("correct", len(correctUsers)).Int("incorrect", len(incorrectUsers)).Msg("Challenge closed")

	event := notifier.ChallengeClosedEvent{
		ChallengeID:     challenge.ID,
		QuestionID:      challenge.QuestionID,
		CorrectUsers:    correctUsers,
		IncorrectUsers:  incorrectUsers,
		ReferenceAnswer: challenge.Question.Answer,
	}
	if err := s.notifier.ChallengeClosed(ctx, event); err != nil {
		log.Error().Err(err).Uint("challengeID", challenge.ID).Msg("Failed to announce challenge close")
	}
	return nil
}

func (s *challengeService) Active(ctx context.Context) (*dto.ChallengeView, error) {
	challenge, err := s.gw.ActiveChallenge(ctx)
	if isNotFound(err) {
		return nil, ErrNoActiveChallenge
	}
	if err != nil {
		return nil, infraError("active_challenge", err)
	}
	if !s.now().Before(challenge.ClosesAt) {
		// Past the deadline but not yet swept by a close tick. Treat as
		// closed so late viewers and late submitters agree.
		return nil, ErrNoActiveChallenge
	}
	return &dto.ChallengeView{
		ChallengeID:     challenge.ID,
		QuestionID:      challenge.QuestionID,
		Prompt:          challenge.Question.Prompt,
		Difficulty:      challenge.Question.Difficulty,
		Dataset:         challenge.Question.Dataset,
		PointsAvailable: s.scoring.ChallengeScore(challenge.Question.Difficulty, true),
		OpenedAt:        challenge.OpenedAt,
		ClosesAt:        challenge.ClosesAt,
	}, nil
}

func (s *challengeService) Submit(ctx context.Context, userID int64, username, answer string) (*dto.ChallengeSubmitResponse, error) {
	if err := s.gw.EnsureUser(ctx, &model.User{UserID: userID, Username: username}); err != nil {
		return nil, infraError("ensure_user", err)
	}

	challenge, err := s.gw.ActiveChallenge(ctx)
	if isNotFound(err) {
		return nil, ErrNoActiveChallenge
	}
	if err != nil {
		return nil, infraError("active_challenge", err)
	}
	now := s.now()
	if !now.Before(challenge.ClosesAt) {
		return nil, ErrNoActiveChallenge
	}

	created, err := s.gw.SubmitChallengeAnswer(ctx, &model.ChallengeSubmission{
		ChallengeID: challenge.ID,
		UserID:      userID,
		Answer:      answer,
		SubmittedAt: now,
	})
	if err != nil {
		return nil, infraError("submit_challenge_answer", err)
	}
	if !created {
		// First write wins; later answers from the same user are rejected.
		return nil, ErrAlreadySubmitted
	}

	log.Info().Int64("userID", userID).Uint("challengeID", challenge.ID).Msg("Challenge answer accepted")
	return &dto.ChallengeSubmitResponse{
		ChallengeID: challenge.ID,
		Accepted:    true,
		GradedAt:    challenge.ClosesAt,
	}, nil
}
