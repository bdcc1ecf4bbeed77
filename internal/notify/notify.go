// Package notify delivers sync outcome notifications. Delivery is best
// effort: a notifier logs its own failures and never propagates them
// into the sync run that produced the message.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkallberg/pagesync/internal/core"
)

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	log *slog.Logger
}

// NewLogNotifier returns a LogNotifier writing through logger, or the
// default logger when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) Success(ctx context.Context, message string) {
	n.log.InfoContext(ctx, "sync notification", "status", "success", "message", message)
}

func (n *LogNotifier) Failure(ctx context.Context, message string) {
	n.log.WarnContext(ctx, "sync notification", "status", "failure", "message", message)
}

// WebhookNotifier POSTs notifications as JSON to a configured endpoint.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewWebhookNotifier returns a WebhookNotifier for the given URL.
func NewWebhookNotifier(url string, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger,
	}
}

type webhookPayload struct {
	Status  string    `json:"status"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

func (n *WebhookNotifier) Success(ctx context.Context, message string) {
	n.post(ctx, "success", message)
}

func (n *WebhookNotifier) Failure(ctx context.Context, message string) {
	n.post(ctx, "failure", message)
}

func (n *WebhookNotifier) post(ctx context.Context, status, message string) {
	payload, err := json.Marshal(webhookPayload{Status: status, Message: message, At: time.Now().UTC()})
	if err != nil {
		n.log.ErrorContext(ctx, "encoding webhook payload failed", "error", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.log.ErrorContext(ctx, "building webhook request failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.WarnContext(ctx, "webhook delivery failed", "url", n.url, "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.log.WarnContext(ctx, "webhook delivery rejected",
			"url", n.url,
			"status", fmt.Sprintf("%d", resp.StatusCode),
		)
	}
}

// Multi fans a notification out to several notifiers in order.
type Multi []core.Notifier

func (m Multi) Success(ctx context.Context, message string) {
	for _, n := range m {
		n.Success(ctx, message)
	}
}

func (m Multi) Failure(ctx context.Context, message string) {
	for _, n := range m {
		n.Failure(ctx, message)
	}
}
