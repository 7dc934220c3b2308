// Package notify reports final task outcomes to external listeners.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/runoshun/git-relay/internal/domain"
)

// Payload is the JSON body posted to the webhook.
type Payload struct {
	TaskID  string        `json:"task_id"`
	Status  domain.Status `json:"status"`
	Details string        `json:"details"`
}

// Webhook posts task outcomes to a URL.
type Webhook struct {
	client *http.Client
	url    string
}

// Ensure Webhook implements domain.Notifier interface.
var _ domain.Notifier = (*Webhook)(nil)

// NewWebhook creates a webhook notifier with the given request timeout.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify posts the outcome. Any transport failure or non-2xx response
// is returned as *domain.NotificationError.
func (w *Webhook) Notify(ctx context.Context, taskID string, status domain.Status, details string) error {
	body, err := json.Marshal(Payload{TaskID: taskID, Status: status, Details: details})
	if err != nil {
		return &domain.NotificationError{TaskID: taskID, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return &domain.NotificationError{TaskID: taskID, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return &domain.NotificationError{TaskID: taskID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &domain.NotificationError{
			TaskID: taskID,
			Err:    fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(snippet))),
		}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// Nop is the notifier used when no webhook is configured.
type Nop struct{}

// Notify implements domain.Notifier.
func (Nop) Notify(context.Context, string, domain.Status, string) error { return nil }

// FromConfig returns a Webhook when a URL is configured and Nop otherwise.
func FromConfig(cfg domain.NotifyConfig) domain.Notifier {
	if strings.TrimSpace(cfg.WebhookURL) == "" {
		return Nop{}
	}
	return NewWebhook(cfg.WebhookURL, cfg.Timeout())
}
