package repository

import (
	"database/sql"
	"fmt"
	"time"

	appErrors "github.com/blackleo/outreach-backend/internal/errors"
	"github.com/blackleo/outreach-backend/internal/model"
)

// EventTarget identifies the batch and campaign a webhook event resolved to.
type EventTarget struct {
	BatchID    int
	CampaignID int
}

type BatchRepositoryInterface interface {
	// CreateBatch persists the batch with all attempted recipients and bumps
	// the parent campaign's total_emails_sent by the attempt count.
	CreateBatch(batch *model.EmailBatch) error
	GetByID(id int) (*model.EmailBatch, error)
	ListByCampaign(campaignID int) ([]*model.EmailBatch, error)

	// RecordDeliveryEvent applies a Delivered/Bounce/Complaint event to the
	// recipient row keyed by messageID and bumps batch + campaign counters.
	RecordDeliveryEvent(messageID, eventType string) (*EventTarget, error)

	// RecordOpen flips the recipient's opened flag exactly once. The bool
	// result is false when the flag was already set; counters only move on a
	// first open.
	RecordOpen(messageID string) (*EventTarget, bool, error)

	// RecordReply stores an inbound reply correlated by reply.MessageID,
	// filling in BatchID and CampaignID.
	RecordReply(reply *model.EmailReply) error
	CountReplies(campaignID int) (int, error)
	ListReplies(campaignID int) ([]*model.EmailReply, error)
}

type BatchRepository struct {
	DB *sql.DB
}

// deliveryStats maps a webhook event type to the counter columns it bumps.
// Columns come only from this table, never from request input.
var deliveryStats = map[string]struct {
	batchCol    string
	campaignCol string
}{
	"Delivered": {"delivered_count", "total_delivered"},
	"Bounce":    {"bounced_count", "total_bounced"},
	"Complaint": {"complained_count", "total_complained"},
}

// SupportedDeliveryEvent reports whether eventType belongs to the
// delivery-event family.
func SupportedDeliveryEvent(eventType string) bool {
	_, ok := deliveryStats[eventType]
	return ok
}

func (r *BatchRepository) CreateBatch(batch *model.EmailBatch) error {
	if batch.SentAt.IsZero() {
		batch.SentAt = time.Now()
	}
	if batch.Kind == "" {
		batch.Kind = model.BatchKindRegular
	}
	batch.SentCount = len(batch.Recipients)

	query := `
		INSERT INTO email_batches (campaign_id, subject, sender, content_html, kind, sent_at, sent_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRow(query,
		batch.CampaignID, batch.Subject, batch.Sender, batch.ContentHTML,
		batch.Kind, batch.SentAt, batch.SentCount,
	).Scan(&batch.ID)
	if err != nil {
		return err
	}

	for i := range batch.Recipients {
		rec := &batch.Recipients[i]
		rec.BatchID = batch.ID
		err := r.DB.QueryRow(`
			INSERT INTO batch_recipients (batch_id, email, message_id, status, last_error, delivered, opened)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, rec.BatchID, rec.Email, rec.MessageID, rec.Status, rec.LastError, rec.Delivered, rec.Opened).Scan(&rec.ID)
		if err != nil {
			return err
		}
	}

	// Sent total counts every attempted recipient, failures included.
	_, err = r.DB.Exec(
		`UPDATE campaigns SET total_emails_sent = total_emails_sent + $1 WHERE id=$2`,
		batch.SentCount, batch.CampaignID,
	)
	return err
}

func (r *BatchRepository) GetByID(id int) (*model.EmailBatch, error) {
	query := `
		SELECT id, campaign_id, subject, sender, content_html, kind, sent_at, sent_count,
			   opened_count, delivered_count, bounced_count, complained_count, replied_count
		FROM email_batches WHERE id=$1
	`
	var b model.EmailBatch
	err := r.DB.QueryRow(query, id).Scan(
		&b.ID, &b.CampaignID, &b.Subject, &b.Sender, &b.ContentHTML, &b.Kind,
		&b.SentAt, &b.SentCount, &b.OpenedCount, &b.DeliveredCount,
		&b.BouncedCount, &b.ComplainedCount, &b.RepliedCount,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewBatchNotFound(id)
		}
		return nil, err
	}

	recipients, err := r.recipientsForBatch(b.ID)
	if err != nil {
		return nil, err
	}
	b.Recipients = recipients
	return &b, nil
}

func (r *BatchRepository) ListByCampaign(campaignID int) ([]*model.EmailBatch, error) {
	query := `
		SELECT id, campaign_id, subject, sender, content_html, kind, sent_at, sent_count,
			   opened_count, delivered_count, bounced_count, complained_count, replied_count
		FROM email_batches WHERE campaign_id=$1 ORDER BY id DESC
	`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	batches := []*model.EmailBatch{}
	for rows.Next() {
		b := &model.EmailBatch{}
		if err := rows.Scan(
			&b.ID, &b.CampaignID, &b.Subject, &b.Sender, &b.ContentHTML, &b.Kind,
			&b.SentAt, &b.SentCount, &b.OpenedCount, &b.DeliveredCount,
			&b.BouncedCount, &b.ComplainedCount, &b.RepliedCount,
		); err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}

	for _, b := range batches {
		recipients, err := r.recipientsForBatch(b.ID)
		if err != nil {
			return nil, err
		}
		b.Recipients = recipients
	}
	return batches, nil
}

func (r *BatchRepository) recipientsForBatch(batchID int) ([]model.BatchRecipient, error) {
	rows, err := r.DB.Query(`
		SELECT id, batch_id, email, message_id, status, last_error, delivered, opened, opened_at
		FROM batch_recipients WHERE batch_id=$1 ORDER BY id
	`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []model.BatchRecipient{}
	for rows.Next() {
		var rec model.BatchRecipient
		if err := rows.Scan(
			&rec.ID, &rec.BatchID, &rec.Email, &rec.MessageID,
			&rec.Status, &rec.LastError, &rec.Delivered, &rec.Opened, &rec.OpenedAt,
		); err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, nil
}

func (r *BatchRepository) RecordDeliveryEvent(messageID, eventType string) (*EventTarget, error) {
	stats, ok := deliveryStats[eventType]
	if !ok {
		return nil, fmt.Errorf("unsupported delivery event type %q", eventType)
	}

	var recipientUpdate string
	switch eventType {
	case "Delivered":
		recipientUpdate = `UPDATE batch_recipients SET delivered=true WHERE message_id=$1 RETURNING batch_id`
	case "Bounce":
		recipientUpdate = `UPDATE batch_recipients SET status='bounced' WHERE message_id=$1 RETURNING batch_id`
	case "Complaint":
		recipientUpdate = `UPDATE batch_recipients SET status='complained' WHERE message_id=$1 RETURNING batch_id`
	}

	var target EventTarget
	err := r.DB.QueryRow(recipientUpdate, messageID).Scan(&target.BatchID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewRecipientNotFound(messageID)
		}
		return nil, err
	}

	err = r.DB.QueryRow(
		fmt.Sprintf(`UPDATE email_batches SET %s = %s + 1 WHERE id=$1 RETURNING campaign_id`,
			stats.batchCol, stats.batchCol),
		target.BatchID,
	).Scan(&target.CampaignID)
	if err != nil {
		return nil, err
	}

	_, err = r.DB.Exec(
		fmt.Sprintf(`UPDATE campaigns SET %s = %s + 1 WHERE id=$1`, stats.campaignCol, stats.campaignCol),
		target.CampaignID,
	)
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *BatchRepository) RecordOpen(messageID string) (*EventTarget, bool, error) {
	// Single conditional update: concurrent beacon hits race here, only one
	// gets RowsAffected=1 and moves the counters.
	var target EventTarget
	err := r.DB.QueryRow(`
		UPDATE batch_recipients
		SET opened=true, opened_at=NOW()
		WHERE message_id=$1 AND opened=false
		RETURNING batch_id
	`, messageID).Scan(&target.BatchID)

	if err == sql.ErrNoRows {
		// Already opened, or unknown id.
		err = r.DB.QueryRow(
			`SELECT batch_id FROM batch_recipients WHERE message_id=$1`, messageID,
		).Scan(&target.BatchID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, false, appErrors.NewRecipientNotFound(messageID)
			}
			return nil, false, err
		}
		return &target, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	err = r.DB.QueryRow(
		`UPDATE email_batches SET opened_count = opened_count + 1 WHERE id=$1 RETURNING campaign_id`,
		target.BatchID,
	).Scan(&target.CampaignID)
	if err != nil {
		return nil, false, err
	}

	_, err = r.DB.Exec(
		`UPDATE campaigns SET total_emails_opened = total_emails_opened + 1 WHERE id=$1`,
		target.CampaignID,
	)
	if err != nil {
		return nil, false, err
	}
	return &target, true, nil
}

func (r *BatchRepository) RecordReply(reply *model.EmailReply) error {
	err := r.DB.QueryRow(`
		SELECT r.batch_id, b.campaign_id
		FROM batch_recipients r
		JOIN email_batches b ON b.id = r.batch_id
		WHERE r.message_id=$1
	`, reply.MessageID).Scan(&reply.BatchID, &reply.CampaignID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NewRecipientNotFound(reply.MessageID)
		}
		return err
	}

	if reply.ReceivedAt.IsZero() {
		reply.ReceivedAt = time.Now()
	}

	err = r.DB.QueryRow(`
		INSERT INTO email_replies (batch_id, campaign_id, from_address, to_address, subject, body, message_id, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, reply.BatchID, reply.CampaignID, reply.From, reply.To,
		reply.Subject, reply.Body, reply.MessageID, reply.ReceivedAt,
	).Scan(&reply.ID)
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(
		`UPDATE email_batches SET replied_count = replied_count + 1 WHERE id=$1`, reply.BatchID,
	)
	if err != nil {
		return err
	}

	_, err = r.DB.Exec(
		`UPDATE campaigns SET total_replies = total_replies + 1 WHERE id=$1`, reply.CampaignID,
	)
	return err
}

func (r *BatchRepository) CountReplies(campaignID int) (int, error) {
	var count int
	err := r.DB.QueryRow(
		`SELECT COUNT(*) FROM email_replies WHERE campaign_id=$1`, campaignID,
	).Scan(&count)
	return count, err
}

func (r *BatchRepository) ListReplies(campaignID int) ([]*model.EmailReply, error) {
	rows, err := r.DB.Query(`
		SELECT id, batch_id, campaign_id, from_address, to_address, subject, body, message_id, received_at
		FROM email_replies WHERE campaign_id=$1 ORDER BY id DESC
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []*model.EmailReply{}
	for rows.Next() {
		rep := &model.EmailReply{}
		if err := rows.Scan(
			&rep.ID, &rep.BatchID, &rep.CampaignID, &rep.From, &rep.To,
			&rep.Subject, &rep.Body, &rep.MessageID, &rep.ReceivedAt,
		); err != nil {
			return nil, err
		}
		replies = append(replies, rep)
	}
	return replies, nil
}

var _ BatchRepositoryInterface = (*BatchRepository)(nil)
