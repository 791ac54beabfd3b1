// internal/mail/sender.go
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Message is one outbound email handed to a provider.
type Message struct {
	From    string            `json:"from"`
	To      string            `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html"`
	ReplyTo string            `json:"replyTo,omitempty"`
	Tags    map[string]string `json:"tags,omitempty"`
}

// Sender delivers a single message to the external mail provider.
// Implementations must not retry; per-recipient failures are recorded by the
// caller and never abort a batch.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// APIClient talks to the SES-style HTTP send API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates a client for the send API at baseURL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Send implements Sender against POST {baseURL}/v2/email/outbound.
func (c *APIClient) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/v2/email/outbound", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

var _ Sender = (*APIClient)(nil)
