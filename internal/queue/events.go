package queue

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// EventsQueue is the durable queue consumed by cmd/worker.
const EventsQueue = "campaign_events"

// Event types published to the feed.
const (
	EventBatchSent  = "batch_sent"
	EventDelivered  = "delivered"
	EventBounced    = "bounced"
	EventComplained = "complained"
	EventOpened     = "opened"
	EventReplied    = "replied"
)

// Event is one campaign lifecycle occurrence pushed to the feed. The feed is
// an observability tail: publish failures are logged by callers and never
// surfaced to webhook or API clients.
type Event struct {
	Type       string    `json:"type"`
	CampaignID int       `json:"campaign_id,omitempty"`
	BatchID    int       `json:"batch_id,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	Recipient  string    `json:"recipient,omitempty"`
	Count      int       `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher pushes campaign events to the feed.
type EventPublisher interface {
	Publish(ev Event) error
}

// AMQPPublisher publishes events to a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPPublisher dials the broker and declares the events queue.
func NewAMQPPublisher(amqpURL string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	_, err = ch.QueueDeclare(
		EventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &AMQPPublisher{conn: conn, ch: ch}, nil
}

func (p *AMQPPublisher) Publish(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return p.ch.Publish(
		"",
		EventsQueue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher drops events. Used when AMQP_URL is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) error { return nil }

var (
	_ EventPublisher = (*AMQPPublisher)(nil)
	_ EventPublisher = NopPublisher{}
)
