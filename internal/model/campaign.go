// internal/model/campaign.go
package model

import "time"

type Campaign struct {
	ID                int       `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	CompanyID         int       `db:"company_id" json:"company_id"`
	TotalEmailsSent   int       `db:"total_emails_sent" json:"totalEmailsSent"`
	TotalEmailsOpened int       `db:"total_emails_opened" json:"totalEmailsOpened"`
	TotalDelivered    int       `db:"total_delivered" json:"totalDelivered"`
	TotalBounced      int       `db:"total_bounced" json:"totalBounced"`
	TotalComplained   int       `db:"total_complained" json:"totalComplained"`
	TotalReplies      int       `db:"total_replies" json:"totalReplies"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}
