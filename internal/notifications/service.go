// Package notifications delivers publish results to the vendor via ntfy.
// When no topic is configured every call is a silent no-op so callers never
// branch on whether notifications are enabled.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wares/internal/config"
)

const userAgent = "Wares-Go/0.1.0"

// Service defines the notification surface exposed to the publish flow.
type Service interface {
	NotifyPublished(ctx context.Context, title string, productID int64) error
	NotifyPublishedPartial(ctx context.Context, title string, productID int64, failedSteps []string) error
	NotifyPublishFailed(ctx context.Context, title string, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyPublished(ctx context.Context, title string, productID int64) error {
	title = strings.TrimSpace(title)
	data := payload{
		title:    "Wares - Published",
		message:  fmt.Sprintf("Listing live: %s (#%d)", title, productID),
		tags:     []string{"wares", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishedPartial(ctx context.Context, title string, productID int64, failedSteps []string) error {
	title = strings.TrimSpace(title)
	data := payload{
		title:    "Wares - Published (media incomplete)",
		message:  fmt.Sprintf("Listing saved: %s (#%d)\nFailed: %s", title, productID, strings.Join(failedSteps, ", ")),
		tags:     []string{"wares", "publish", "partial"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishFailed(ctx context.Context, title string, reason string) error {
	title = strings.TrimSpace(title)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Wares - Publish Failed",
		message:  fmt.Sprintf("Could not publish %s: %s", title, reason),
		tags:     []string{"wares", "publish", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Wares - Test",
		message:  "Notification system test",
		tags:     []string{"wares", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyPublished(context.Context, string, int64) error                  { return nil }
func (noopService) NotifyPublishedPartial(context.Context, string, int64, []string) error { return nil }
func (noopService) NotifyPublishFailed(context.Context, string, string) error             { return nil }
func (noopService) TestNotification(context.Context) error                                { return nil }
