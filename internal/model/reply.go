// internal/model/reply.go
package model

import "time"

// EmailReply records one inbound reply correlated to a sent message.
// Rows are created by the reply webhook path only and never mutated.
type EmailReply struct {
	ID         int       `db:"id" json:"id"`
	BatchID    int       `db:"batch_id" json:"emailCampaignRef"`
	CampaignID int       `db:"campaign_id" json:"campaignRef"`
	From       string    `db:"from_address" json:"from"`
	To         string    `db:"to_address" json:"to"`
	Subject    string    `db:"subject" json:"subject"`
	Body       string    `db:"body" json:"body"`
	MessageID  string    `db:"message_id" json:"messageId"`
	ReceivedAt time.Time `db:"received_at" json:"timestamp"`
}
