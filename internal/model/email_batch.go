// internal/model/email_batch.go
package model

import "time"

// Per-recipient delivery statuses. A recipient starts as sent or failed and
// may later move to bounced/complained via webhook events.
const (
	StatusSent       = "sent"
	StatusFailed     = "failed"
	StatusBounced    = "bounced"
	StatusComplained = "complained"
)

// Batch kinds, snapshot of how the send was triggered.
const (
	BatchKindRegular  = "regular"
	BatchKindFollowUp = "followUp"
)

// EmailBatch is one invocation of the campaign send operation: the message
// snapshot plus aggregate counters mirrored up into the parent Campaign.
type EmailBatch struct {
	ID              int       `db:"id" json:"id"`
	CampaignID      int       `db:"campaign_id" json:"campaignRef"`
	Subject         string    `db:"subject" json:"subject"`
	Sender          string    `db:"sender" json:"sender"`
	ContentHTML     string    `db:"content_html" json:"contentHtml"`
	Kind            string    `db:"kind" json:"type"`
	SentAt          time.Time `db:"sent_at" json:"sentAt"`
	SentCount       int       `db:"sent_count" json:"sentCount"`
	OpenedCount     int       `db:"opened_count" json:"openedCount"`
	DeliveredCount  int       `db:"delivered_count" json:"deliveredCount"`
	BouncedCount    int       `db:"bounced_count" json:"bouncedCount"`
	ComplainedCount int       `db:"complained_count" json:"complainedCount"`
	RepliedCount    int       `db:"replied_count" json:"repliedCount"`

	Recipients []BatchRecipient `json:"recipientEmails,omitempty"`
}

// BatchRecipient is one attempted recipient of a batch. MessageID is the
// correlation id joining webhook events back to this row; it is unique
// system-wide.
type BatchRecipient struct {
	ID        int        `db:"id" json:"-"`
	BatchID   int        `db:"batch_id" json:"-"`
	Email     string     `db:"email" json:"email"`
	MessageID string     `db:"message_id" json:"messageId"`
	Status    string     `db:"status" json:"status"`
	LastError string     `db:"last_error" json:"lastError,omitempty"`
	Delivered bool       `db:"delivered" json:"delivered"`
	Opened    bool       `db:"opened" json:"opened"`
	OpenedAt  *time.Time `db:"opened_at" json:"openedAt,omitempty"`
}
