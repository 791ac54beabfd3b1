package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is a sentinel error
type ErrCampaignNotFound struct {
	CampaignID int
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %d not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id int) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrBatchNotFound signals a missing email batch document.
type ErrBatchNotFound struct {
	BatchID int
}

func (e *ErrBatchNotFound) Error() string {
	return fmt.Sprintf("email batch with ID %d not found", e.BatchID)
}

func NewBatchNotFound(id int) error {
	return &ErrBatchNotFound{BatchID: id}
}

// ErrRecipientNotFound signals that no batch recipient carries the given
// correlation id. Webhook callers absorb it instead of surfacing an error.
type ErrRecipientNotFound struct {
	MessageID string
}

func (e *ErrRecipientNotFound) Error() string {
	return fmt.Sprintf("no recipient found for messageId %q", e.MessageID)
}

func NewRecipientNotFound(messageID string) error {
	return &ErrRecipientNotFound{MessageID: messageID}
}

// IsNotFound reports whether err is any of the not-found sentinel types.
func IsNotFound(err error) bool {
	var c *ErrCampaignNotFound
	var b *ErrBatchNotFound
	var r *ErrRecipientNotFound
	return errors.As(err, &c) || errors.As(err, &b) || errors.As(err, &r)
}
