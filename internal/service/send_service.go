// internal/service/send_service.go
package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blackleo/outreach-backend/internal/mail"
	"github.com/blackleo/outreach-backend/internal/metrics"
	"github.com/blackleo/outreach-backend/internal/model"
	"github.com/blackleo/outreach-backend/internal/queue"
	"github.com/blackleo/outreach-backend/internal/repository"
)

const defaultBatchSize = 10

type SendService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	BatchRepo    repository.BatchRepositoryInterface
	Mailer       mail.Sender
	Events       queue.EventPublisher
	Log          *zap.Logger

	// BaseURL is the public address the open beacon points back to.
	BaseURL    string
	ReplyTo    string
	BatchSize  int
	BatchDelay time.Duration

	// Sleep paces the waves; tests override it.
	Sleep func(time.Duration)
}

// SendRequest carries one invocation of the campaign send operation.
type SendRequest struct {
	CampaignID int
	Subject    string
	From       string
	HTML       string
	Recipients []string
	Kind       string
}

// RecipientResult is the per-recipient outcome returned to the caller.
type RecipientResult struct {
	Recipient string `json:"recipient"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SendCampaign dispatches the request in fixed-size concurrent waves, records
// every attempt (failures included) in a new batch, and returns once all
// waves have completed. A failed recipient never aborts its wave or the ones
// after it.
func (s *SendService) SendCampaign(ctx context.Context, req SendRequest) ([]RecipientResult, *model.EmailBatch, error) {
	campaign, err := s.CampaignRepo.GetByID(req.CampaignID)
	if err != nil {
		return nil, nil, err
	}

	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	results := make([]RecipientResult, len(req.Recipients))
	recipients := make([]model.BatchRecipient, len(req.Recipients))

	for start := 0; start < len(req.Recipients); start += batchSize {
		end := start + batchSize
		if end > len(req.Recipients) {
			end = len(req.Recipients)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx], recipients[idx] = s.sendOne(ctx, campaign.ID, req, req.Recipients[idx])
			}(i)
		}
		wg.Wait()

		s.sleep(s.BatchDelay)
	}

	batch := &model.EmailBatch{
		CampaignID:  campaign.ID,
		Subject:     req.Subject,
		Sender:      req.From,
		ContentHTML: req.HTML,
		Kind:        req.Kind,
		Recipients:  recipients,
	}
	if err := s.BatchRepo.CreateBatch(batch); err != nil {
		return nil, nil, fmt.Errorf("failed to store send batch: %w", err)
	}

	if err := s.Events.Publish(queue.Event{
		Type:       queue.EventBatchSent,
		CampaignID: campaign.ID,
		BatchID:    batch.ID,
		Count:      batch.SentCount,
		OccurredAt: time.Now(),
	}); err != nil {
		s.Log.Warn("failed to publish batch_sent event", zap.Int("batch_id", batch.ID), zap.Error(err))
	}

	return results, batch, nil
}

// sendOne dispatches a single recipient: fresh correlation id, hidden open
// beacon appended to the HTML, one provider call. The id is kept even when
// the provider call fails so late webhooks referencing it still resolve.
func (s *SendService) sendOne(ctx context.Context, campaignID int, req SendRequest, recipient string) (RecipientResult, model.BatchRecipient) {
	messageID := uuid.NewString()

	beacon := fmt.Sprintf(
		`<img src="%s/email/track?messageId=%s&email=%s" width="1" height="1" style="display:none;" />`,
		s.BaseURL, messageID, url.QueryEscape(recipient),
	)

	msg := mail.Message{
		From:    req.From,
		To:      recipient,
		Subject: req.Subject,
		HTML:    req.HTML + beacon,
		ReplyTo: s.ReplyTo,
		Tags: map[string]string{
			"campaignId": strconv.Itoa(campaignID),
			"recipient":  recipient,
		},
	}

	if err := s.Mailer.Send(ctx, msg); err != nil {
		s.Log.Warn("email send failed",
			zap.String("recipient", recipient),
			zap.Int("campaign_id", campaignID),
			zap.Error(err),
		)
		metrics.EmailFailures.Inc()

		return RecipientResult{Recipient: recipient, Status: model.StatusFailed, Error: err.Error()},
			model.BatchRecipient{
				Email:     recipient,
				MessageID: messageID,
				Status:    model.StatusFailed,
				LastError: err.Error(),
			}
	}

	metrics.EmailsSent.Inc()

	return RecipientResult{Recipient: recipient, Status: model.StatusSent, MessageID: messageID},
		model.BatchRecipient{
			Email:     recipient,
			MessageID: messageID,
			Status:    model.StatusSent,
		}
}

func (s *SendService) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}
