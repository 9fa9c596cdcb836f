package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sqlmentor/config"
	"sqlmentor/internal/model"
	"sqlmentor/internal/notifier"
)

type fakeNotifier struct {
	mu     sync.Mutex
	opened []notifier.ChallengeOpenedEvent
	closed []notifier.ChallengeClosedEvent
}

func (f *fakeNotifier) ChallengeOpened(_ context.Context, event notifier.ChallengeOpenedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, event)
	return nil
}

func (f *fakeNotifier) ChallengeClosed(_ context.Context, event notifier.ChallengeClosedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, event)
	return nil
}

func newTestChallenge(f *fakeGateway, n *fakeNotifier, clock *time.Time) *challengeService {
	return &challengeService{
		gw:       f,
		grader:   newTestGrader(0.65),
		scoring:  newTestScoring(),
		notifier: n,
		cfg:      config.Challenge{OpenTime: "18:00", Duration: 4 * time.Hour},
		loc:      time.UTC,
		now:      func() time.Time { return *clock },
	}
}

func TestOpenTickOpensExactlyOneChallenge(t *testing.T) {
	f := newFakeGateway()
	f.addQuestion(easyQuestion(1, "SELECT * FROM employees"))
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)
	ctx := context.Background()

	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("OpenTick: %v", err)
	}
	view, err := s.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if view.QuestionID != 1 {
		t.Fatalf("challenge question %d, want 1", view.QuestionID)
	}
	if view.PointsAvailable != 120 {
		t.Fatalf("points available %d, want doubled 120", view.PointsAvailable)
	}
	if !view.ClosesAt.Equal(clock.Add(4 * time.Hour)) {
		t.Fatalf("closes at %v, want %v", view.ClosesAt, clock.Add(4*time.Hour))
	}
	if len(n.opened) != 1 {
		t.Fatalf("%d open events, want 1", len(n.opened))
	}

	// Later ticks inside the window must not open a second challenge.
	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("second OpenTick: %v", err)
	}
	if len(f.challenges) != 1 {
		t.Fatalf("%d challenges, want 1", len(f.challenges))
	}
	if len(n.opened) != 1 {
		t.Fatalf("%d open events after second tick, want 1", len(n.opened))
	}
}

func TestOpenTickStaysIdleWithoutCandidates(t *testing.T) {
	f := newFakeGateway()
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)

	if err := s.OpenTick(context.Background()); err != nil {
		t.Fatalf("OpenTick with no candidates: %v", err)
	}
	if len(f.challenges) != 0 {
		t.Fatalf("%d challenges, want 0", len(f.challenges))
	}
}

func TestChallengeSubmitFirstWriteWins(t *testing.T) {
	f := newFakeGateway()
	f.addQuestion(easyQuestion(1, "SELECT * FROM employees"))
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)
	ctx := context.Background()

	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("OpenTick: %v", err)
	}
	resp, err := s.Submit(ctx, 7, "maya", "select * from employees")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Accepted {
		t.Fatalf("submit not accepted: %+v", resp)
	}
	if _, err := s.Submit(ctx, 7, "maya", "a different answer"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit: got %v, want ErrAlreadySubmitted", err)
	}
	if len(f.chSubs) != 1 || f.chSubs[0].Answer != "select * from employees" {
		t.Fatalf("stored submissions %+v, want only the first answer", f.chSubs)
	}
}

func TestChallengeSubmitAfterDeadline(t *testing.T) {
	f := newFakeGateway()
	f.addQuestion(easyQuestion(1, "SELECT * FROM employees"))
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)
	ctx := context.Background()

	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("OpenTick: %v", err)
	}
	clock = clock.Add(4 * time.Hour)

	if _, err := s.Submit(ctx, 7, "maya", "select 1"); !errors.Is(err, ErrNoActiveChallenge) {
		t.Fatalf("submit at deadline: got %v, want ErrNoActiveChallenge", err)
	}
	if _, err := s.Active(ctx); !errors.Is(err, ErrNoActiveChallenge) {
		t.Fatalf("active at deadline: got %v, want ErrNoActiveChallenge", err)
	}
}

func TestCloseTickBeforeDeadlineIsNoop(t *testing.T) {
	f := newFakeGateway()
	f.addQuestion(easyQuestion(1, "SELECT * FROM employees"))
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)
	ctx := context.Background()

	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("OpenTick: %v", err)
	}
	clock = clock.Add(time.Hour)
	if err := s.CloseTick(ctx); err != nil {
		t.Fatalf("CloseTick: %v", err)
	}
	if f.challenges[1].ClosedAt != nil {
		t.Fatal("challenge closed before its deadline")
	}
}

func TestCloseTickGradesAndAwards(t *testing.T) {
	f := newFakeGateway()
	f.addQuestion(easyQuestion(1, "SELECT * FROM employees"))
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)
	ctx := context.Background()

	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("OpenTick: %v", err)
	}
	if _, err := s.Submit(ctx, 1, "ana", "select * from employees"); err != nil {
		t.Fatalf("Submit user 1: %v", err)
	}
	if _, err := s.Submit(ctx, 2, "bo", "drop table employees"); err != nil {
		t.Fatalf("Submit user 2: %v", err)
	}

	clock = clock.Add(4*time.Hour + time.Minute)
	if err := s.CloseTick(ctx); err != nil {
		t.Fatalf("CloseTick: %v", err)
	}

	if f.challenges[1].ClosedAt == nil {
		t.Fatal("challenge not closed")
	}
	if f.totals[1] != 120 {
		t.Fatalf("correct user points %d, want 120", f.totals[1])
	}
	if f.totals[2] != -10 {
		t.Fatalf("incorrect user points %d, want -10", f.totals[2])
	}
	if len(f.submissions) != 2 {
		t.Fatalf("%d graded submissions, want 2", len(f.submissions))
	}
	for _, sub := range f.chSubs {
		if sub.Correct == nil {
			t.Fatalf("challenge submission for user %d left ungraded", sub.UserID)
		}
	}

	if len(n.closed) != 1 {
		t.Fatalf("%d close events, want 1", len(n.closed))
	}
	event := n.closed[0]
	if len(event.CorrectUsers) != 1 || event.CorrectUsers[0] != 1 {
		t.Fatalf("correct users %v, want [1]", event.CorrectUsers)
	}
	if len(event.IncorrectUsers) != 1 || event.IncorrectUsers[0] != 2 {
		t.Fatalf("incorrect users %v, want [2]", event.IncorrectUsers)
	}
	if event.ReferenceAnswer != "SELECT * FROM employees" {
		t.Fatalf("reference answer %q", event.ReferenceAnswer)
	}

	// A replayed close tick finds nothing active and must not double-award.
	if err := s.CloseTick(ctx); err != nil {
		t.Fatalf("replayed CloseTick: %v", err)
	}
	if f.totals[1] != 120 || f.totals[2] != -10 {
		t.Fatalf("points changed on replay: %d, %d", f.totals[1], f.totals[2])
	}
	if len(n.closed) != 1 {
		t.Fatalf("%d close events after replay, want 1", len(n.closed))
	}
}

func TestCloseTickWithNoChallenge(t *testing.T) {
	s := newTestChallenge(newFakeGateway(), &fakeNotifier{}, &time.Time{})
	if err := s.CloseTick(context.Background()); err != nil {
		t.Fatalf("CloseTick with nothing open: %v", err)
	}
}

func TestChallengeQuestionNeverReused(t *testing.T) {
	f := newFakeGateway()
	f.addQuestion(easyQuestion(1, "SELECT 1"))
	f.addQuestion(model.Question{ID: 2, Prompt: "p", Answer: "SELECT 2", Difficulty: model.DifficultyMedium})
	n := &fakeNotifier{}
	clock := time.Date(2026, 8, 27, 18, 0, 0, 0, time.UTC)
	s := newTestChallenge(f, n, &clock)
	ctx := context.Background()

	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("first OpenTick: %v", err)
	}
	clock = clock.Add(5 * time.Hour)
	if err := s.CloseTick(ctx); err != nil {
		t.Fatalf("CloseTick: %v", err)
	}
	clock = clock.Add(19 * time.Hour)
	if err := s.OpenTick(ctx); err != nil {
		t.Fatalf("second OpenTick: %v", err)
	}

	view, err := s.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if view.QuestionID != 2 {
		t.Fatalf("second challenge reused question %d, want 2", view.QuestionID)
	}
}
