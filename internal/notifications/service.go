package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stagehand/internal/config"
)

const userAgent = "Stagehand-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyTransition(ctx context.Context, songTitle, fromStage, toStage, actor string) error
	NotifyStageBlocked(ctx context.Context, songTitle, stageLabel, reason string) error
	NotifyReleased(ctx context.Context, songTitle string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		transitions: cfg.Notifications.Transitions,
		blocked:     cfg.Notifications.Blocked,
		errors:      cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	transitions bool
	blocked     bool
	errors      bool
}

func (n *ntfyService) NotifyTransition(ctx context.Context, songTitle, fromStage, toStage, actor string) error {
	if !n.transitions {
		return nil
	}
	songTitle = strings.TrimSpace(songTitle)
	message := fmt.Sprintf("%s moved from %s to %s", songTitle, strings.TrimSpace(fromStage), strings.TrimSpace(toStage))
	if actor = strings.TrimSpace(actor); actor != "" {
		message = fmt.Sprintf("%s by %s", message, actor)
	}
	data := payload{
		title:   "Stagehand - Stage Transition",
		message: message,
		tags:    []string{"stagehand", "transition"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStageBlocked(ctx context.Context, songTitle, stageLabel, reason string) error {
	if !n.blocked {
		return nil
	}
	songTitle = strings.TrimSpace(songTitle)
	stageLabel = strings.TrimSpace(stageLabel)
	message := fmt.Sprintf("%s blocked at %s", songTitle, stageLabel)
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	data := payload{
		title:    "Stagehand - Stage Blocked",
		message:  message,
		tags:     []string{"stagehand", "blocked"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReleased(ctx context.Context, songTitle string) error {
	if !n.transitions {
		return nil
	}
	data := payload{
		title:    "Stagehand - Released",
		message:  fmt.Sprintf("Released: %s", strings.TrimSpace(songTitle)),
		tags:     []string{"stagehand", "released"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Stagehand - Error",
		message:  builder.String(),
		tags:     []string{"stagehand", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Stagehand - Test",
		message:  "Notification system test",
		tags:     []string{"stagehand", "test"},
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

func (noopService) NotifyTransition(context.Context, string, string, string, string) error { return nil }
func (noopService) NotifyStageBlocked(context.Context, string, string, string) error       { return nil }
func (noopService) NotifyReleased(context.Context, string) error                           { return nil }
func (noopService) NotifyError(context.Context, error, string) error                       { return nil }
func (noopService) TestNotification(context.Context) error                                 { return nil }
