// internal/controller/webhook_controller.go
package controller

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/notify"
	"github.com/blackleo/outreach-backend/internal/repository"
	"github.com/blackleo/outreach-backend/internal/service"
)

// WebhookController ingests push notifications from the provider's
// notification channel. Soft conditions (unknown ids, unhandled notification
// types, missing correlation fields) answer 200 so the provider never enters
// a retry storm; only a malformed JSON payload earns a 400.
type WebhookController struct {
	Tracking  *service.TrackingService
	Confirmer notify.Confirmer
	Log       *zap.Logger
}

// snsEnvelope is the outer pub/sub wrapper. Message carries the stringified
// inner event; Type/Token/TopicArn appear on the one-time subscription
// handshake.
type snsEnvelope struct {
	Type     string `json:"Type"`
	Token    string `json:"Token"`
	TopicArn string `json:"TopicArn"`
	Message  string `json:"Message"`
}

// deliveryEvent covers both the wrapped SES shape (eventType +
// mail.messageId) and the flat shape (status + messageId).
type deliveryEvent struct {
	EventType string `json:"eventType"`
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
	Mail      struct {
		MessageID string `json:"messageId"`
	} `json:"mail"`
}

type receivedNotification struct {
	NotificationType string `json:"notificationType"`
	Mail             struct {
		Source        string   `json:"source"`
		Destination   []string `json:"destination"`
		Timestamp     string   `json:"timestamp"`
		CommonHeaders struct {
			Subject    string `json:"subject"`
			InReplyTo  string `json:"in-reply-to"`
			References string `json:"references"`
		} `json:"commonHeaders"`
	} `json:"mail"`
	Content string `json:"content"`
}

// DeliveryStatus handles Delivered/Bounce/Complaint notifications.
func (c *WebhookController) DeliveryStatus(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Malformed payload"})
		return
	}

	if c.handleSubscription(w, r, env) {
		return
	}

	var ev deliveryEvent
	if env.Message != "" {
		if err := json.Unmarshal([]byte(env.Message), &ev); err != nil {
			c.Log.Warn("invalid SNS Message payload", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Malformed SNS Message"})
			return
		}
	} else if err := json.Unmarshal(body, &ev); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Malformed payload"})
		return
	}

	eventType := ev.EventType
	if eventType == "" {
		eventType = ev.Status
	}
	messageID := ev.Mail.MessageID
	if messageID == "" {
		messageID = ev.MessageID
	}

	if messageID == "" || !repository.SupportedDeliveryEvent(eventType) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"message": "Missing or unsupported status"})
		return
	}

	if err := c.Tracking.RecordDeliveryEvent(messageID, eventType); err != nil {
		if appErrors.IsNotFound(err) {
			// Unknown correlation id: logged and dropped, never an error the
			// provider would retry on.
			c.Log.Info("delivery event for unknown messageId",
				zap.String("message_id", messageID),
				zap.String("event_type", eventType),
			)
			writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Unknown messageId ignored"})
			return
		}
		c.Log.Error("failed to record delivery event", zap.String("message_id", messageID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"message": "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": eventType + " status updated"})
}

// InboundReply handles "Received" notifications and stores correlated
// replies.
func (c *WebhookController) InboundReply(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	var env snsEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if c.handleSubscription(w, r, env) {
		return
	}

	var note receivedNotification
	if env.Message != "" {
		if err := json.Unmarshal([]byte(env.Message), &note); err != nil {
			c.Log.Warn("invalid SNS Message payload", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
	} else if err := json.Unmarshal(body, &note); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if note.NotificationType != "Received" {
		// Benign but unhandled type. Accepted so the provider keeps the
		// endpoint enabled.
		w.WriteHeader(http.StatusOK)
		return
	}

	replyFrom := note.Mail.Source
	var toAddress string
	if len(note.Mail.Destination) > 0 {
		toAddress = note.Mail.Destination[0]
	}

	subject := note.Mail.CommonHeaders.Subject
	if subject == "" {
		subject = "No Subject"
	}

	originalMessageID := note.Mail.CommonHeaders.InReplyTo
	if originalMessageID == "" {
		if refs := strings.Fields(note.Mail.CommonHeaders.References); len(refs) > 0 {
			originalMessageID = refs[0]
		}
	}

	if replyFrom == "" || toAddress == "" || originalMessageID == "" {
		c.Log.Info("reply notification missing correlation fields",
			zap.String("from", replyFrom),
			zap.String("to", toAddress),
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	content := note.Content
	if content == "" {
		content = "No body content"
	}

	receivedAt := time.Now()
	if ts, err := time.Parse(time.RFC3339, note.Mail.Timestamp); err == nil {
		receivedAt = ts
	}

	err = c.Tracking.StoreReply(service.InboundReply{
		From:       replyFrom,
		To:         toAddress,
		Subject:    subject,
		Body:       content,
		MessageID:  originalMessageID,
		ReceivedAt: receivedAt,
	})
	if err != nil {
		if appErrors.IsNotFound(err) {
			c.Log.Info("no send batch matches reply", zap.String("message_id", originalMessageID))
			w.WriteHeader(http.StatusOK)
			return
		}
		c.Log.Error("failed to store reply", zap.String("message_id", originalMessageID), zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleSubscription completes the one-time channel handshake. It reports
// whether the request was a subscription confirmation and has been answered.
func (c *WebhookController) handleSubscription(w http.ResponseWriter, r *http.Request, env snsEnvelope) bool {
	if env.Type != "SubscriptionConfirmation" || env.Token == "" || env.TopicArn == "" {
		return false
	}

	if err := c.Confirmer.ConfirmSubscription(r.Context(), env.TopicArn, env.Token); err != nil {
		c.Log.Error("failed to confirm subscription", zap.String("topic_arn", env.TopicArn), zap.Error(err))
		http.Error(w, "Failed to confirm subscription", http.StatusInternalServerError)
		return true
	}

	c.Log.Info("subscription confirmed", zap.String("topic_arn", env.TopicArn))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Subscription confirmed successfully"))
	return true
}
