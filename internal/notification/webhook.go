package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type webhookMessage struct {
	Title string    `json:"title"`
	Body  string    `json:"body"`
	Sent  time.Time `json:"sent_at"`
}

// WebhookNotifier posts notifications as JSON to a fixed URL.
type WebhookNotifier struct {
	permissionState
	url    string
	client *http.Client
}

// NewWebhookNotifier builds a notifier targeting url. A nil client uses a
// client with a ten second timeout.
func NewWebhookNotifier(url string, initial Permission, client *http.Client) *WebhookNotifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookNotifier{
		permissionState: permissionState{current: initial, answer: promptAnswer(initial)},
		url:             url,
		client:          client,
	}
}

// Show delivers one notification. Non-2xx responses are errors.
func (n *WebhookNotifier) Show(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(webhookMessage{Title: title, Body: body, Sent: time.Now().UTC()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
