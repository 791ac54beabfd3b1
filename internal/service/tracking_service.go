// internal/service/tracking_service.go
package service

import (
	"time"

	"go.uber.org/zap"

	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/metrics"
	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/queue"
	"github.com/blackleo/outreach-backend/internal/repository"
)

// TrackingService applies webhook-driven state to the aggregate store and
// mirrors each applied event onto the feed.
type TrackingService struct {
	BatchRepo repository.BatchRepositoryInterface
	Events    queue.EventPublisher
	Log       *zap.Logger
}

// feedTypes maps provider event types onto feed event types.
var feedTypes = map[string]string{
	"Delivered": queue.EventDelivered,
	"Bounce":    queue.EventBounced,
	"Complaint": queue.EventComplained,
}

// RecordDeliveryEvent applies one Delivered/Bounce/Complaint notification.
// An unknown messageID comes back as a not-found error for the caller to
// absorb.
func (s *TrackingService) RecordDeliveryEvent(messageID, eventType string) error {
	target, err := s.BatchRepo.RecordDeliveryEvent(messageID, eventType)
	if err != nil {
		return err
	}

	metrics.WebhookEvents.WithLabelValues(eventType).Inc()
	s.publish(queue.Event{
		Type:       feedTypes[eventType],
		CampaignID: target.CampaignID,
		BatchID:    target.BatchID,
		MessageID:  messageID,
		OccurredAt: time.Now(),
	})
	return nil
}

// TrackOpen marks the recipient opened. All failures are absorbed here: the
// beacon endpoint serves its pixel no matter what happened underneath.
func (s *TrackingService) TrackOpen(messageID string) {
	target, counted, err := s.BatchRepo.RecordOpen(messageID)
	if err != nil {
		if appErrors.IsNotFound(err) {
			s.Log.Info("open beacon for unknown messageId", zap.String("message_id", messageID))
		} else {
			s.Log.Error("failed to record open", zap.String("message_id", messageID), zap.Error(err))
		}
		return
	}
	if !counted {
		// Repeat open, already counted.
		return
	}

	metrics.OpensTracked.Inc()
	s.publish(queue.Event{
		Type:       queue.EventOpened,
		CampaignID: target.CampaignID,
		BatchID:    target.BatchID,
		MessageID:  messageID,
		OccurredAt: time.Now(),
	})
}

// InboundReply is a parsed reply notification.
type InboundReply struct {
	From       string
	To         string
	Subject    string
	Body       string
	MessageID  string
	ReceivedAt time.Time
}

// StoreReply persists an inbound reply correlated by its original messageID.
func (s *TrackingService) StoreReply(in InboundReply) error {
	reply := &model.EmailReply{
		From:       in.From,
		To:         in.To,
		Subject:    in.Subject,
		Body:       in.Body,
		MessageID:  in.MessageID,
		ReceivedAt: in.ReceivedAt,
	}
	if err := s.BatchRepo.RecordReply(reply); err != nil {
		return err
	}

	metrics.RepliesStored.Inc()
	s.publish(queue.Event{
		Type:       queue.EventReplied,
		CampaignID: reply.CampaignID,
		BatchID:    reply.BatchID,
		MessageID:  reply.MessageID,
		Recipient:  reply.From,
		OccurredAt: time.Now(),
	})
	return nil
}

func (s *TrackingService) publish(ev queue.Event) {
	if err := s.Events.Publish(ev); err != nil {
		s.Log.Warn("failed to publish campaign event", zap.String("type", ev.Type), zap.Error(err))
	}
}
