// cmd/worker/main.go
package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/blackleo/outreach-backend/internal/config"
	"github.com/blackleo/outreach-backend/internal/queue"
)

// The worker tails the campaign event feed: it consumes delivery, open and
// reply events published by the API process and writes them to the log for
// downstream analysis. It holds no database state of its own.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if cfg.AMQPURL == "" {
		logger.Fatal("AMQP_URL must be configured for the worker")
	}

	conn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		logger.Fatal("failed to connect to broker", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("failed to open channel", zap.Error(err))
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		queue.EventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		logger.Fatal("failed to declare queue", zap.Error(err))
	}

	msgs, err := ch.Consume(
		q.Name,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Fatal("failed to register consumer", zap.Error(err))
	}

	go func() {
		for d := range msgs {
			var ev queue.Event
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				logger.Warn("invalid event payload", zap.Error(err))
				d.Ack(false)
				continue
			}

			logger.Info("campaign event",
				zap.String("type", ev.Type),
				zap.Int("campaign_id", ev.CampaignID),
				zap.Int("batch_id", ev.BatchID),
				zap.String("message_id", ev.MessageID),
				zap.Int("count", ev.Count),
				zap.Time("occurred_at", ev.OccurredAt),
			)
			d.Ack(false)
		}
	}()

	logger.Info("worker running, waiting for events")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	logger.Info("worker shutting down")
}
