package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"sqlmentor/config"
)

type amqpNotifier struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

func newAMQPNotifier(cfg config.RabbitMQ) (*amqpNotifier, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := channel.QueueDeclare(
		cfg.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &amqpNotifier{conn: conn, channel: channel, queue: cfg.Queue}, nil
}

func (n *amqpNotifier) Close() error {
	if n.channel != nil {
		n.channel.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func (n *amqpNotifier) publish(ctx context.Context, eventType string, data interface{}) error {
	body, err := json.Marshal(envelope{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return n.channel.PublishWithContext(
		ctx,
		"",      // exchange
		n.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	)
}

func (n *amqpNotifier) ChallengeOpened(ctx context.Context, event ChallengeOpenedEvent) error {
	return n.publish(ctx, "challenge_opened", event)
}

func (n *amqpNotifier) ChallengeClosed(ctx context.Context, event ChallengeClosedEvent) error {
	return n.publish(ctx, "challenge_closed", event)
}
