// Package notifier carries challenge lifecycle events to the announcement
// collaborator. Delivery and message formatting are that side's concern;
// this side only publishes structured events.
package notifier

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"sqlmentor/config"
)

type ChallengeOpenedEvent struct {
	ChallengeID     uint      `json:"challenge_id"`
	QuestionID      uint      `json:"question_id"`
	Prompt          string    `json:"prompt"`
	Difficulty      string    `json:"difficulty"`
	Dataset         *string   `json:"dataset,omitempty"`
	PointsAvailable int       `json:"points_available"`
	ClosesAt        time.Time `json:"closes_at"`
}

type ChallengeClosedEvent struct {
	ChallengeID     uint    `json:"challenge_id"`
	QuestionID      uint    `json:"question_id"`
	CorrectUsers    []int64 `json:"correct_users"`
	IncorrectUsers  []int64 `json:"incorrect_users"`
	ReferenceAnswer string  `json:"reference_answer"`
}

type Notifier interface {
	ChallengeOpened(ctx context.Context, event ChallengeOpenedEvent) error
	ChallengeClosed(ctx context.Context, event ChallengeClosedEvent) error
}

// New returns the AMQP notifier when a broker is configured, otherwise a
// log-only fallback so the coordinator never has to care.
func New(cfg *config.Config) (Notifier, error) {
	if cfg.RabbitMQ.URL == "" {
		log.Warn().Msg("RABBITMQ_URL is not set. Challenge events will only be logged.")
		return &logNotifier{}, nil
	}
	return newAMQPNotifier(cfg.RabbitMQ)
}

type logNotifier struct{}

func (n *logNotifier) ChallengeOpened(_ context.Context, event ChallengeOpenedEvent) error {
	log.Info().Uint("challengeID", event.ChallengeID).Uint("questionID", event.QuestionID).
		Time("closesAt", event.ClosesAt).Msg("Challenge opened")
	return nil
}

func (n *logNotifier) ChallengeClosed(_ context.Context, event ChallengeClosedEvent) error {
	log.Info().Uint("challengeID", event.ChallengeID).
		Int("correct", len(event.CorrectUsers)).Int("incorrect", len(event.IncorrectUsers)).
		Msg("Challenge closed")
	return nil
}
