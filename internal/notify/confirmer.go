// internal/notify/confirmer.go
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Confirmer completes the one-time subscription handshake with the provider's
// notification channel. Until the handshake succeeds no events are pushed to
// our webhook endpoints.
type Confirmer interface {
	ConfirmSubscription(ctx context.Context, topicArn, token string) error
}

// HTTPConfirmer calls the channel's ConfirmSubscription action over HTTP.
type HTTPConfirmer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPConfirmer(baseURL string) *HTTPConfirmer {
	return &HTTPConfirmer{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *HTTPConfirmer) ConfirmSubscription(ctx context.Context, topicArn, token string) error {
	q := url.Values{}
	q.Set("Action", "ConfirmSubscription")
	q.Set("TopicArn", topicArn)
	q.Set("Token", token)

	endpoint := fmt.Sprintf("%s/?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to confirm subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

var _ Confirmer = (*HTTPConfirmer)(nil)
