package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"podscribe/internal/config"
)

const userAgent = "podscribe/1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyEpisodeCompleted(ctx context.Context, episodeTitle string) error
	NotifyEpisodeFailed(ctx context.Context, episodeTitle string, cause error) error
	NotifyPollCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
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

func (n *ntfyService) NotifyEpisodeCompleted(ctx context.Context, episodeTitle string) error {
	episodeTitle = strings.TrimSpace(episodeTitle)
	data := payload{
		title:   "Podscribe - Episode Ready",
		message: fmt.Sprintf("Insights ready: %s", episodeTitle),
		tags:    []string{"podscribe", "episode", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyEpisodeFailed(ctx context.Context, episodeTitle string, cause error) error {
	episodeTitle = strings.TrimSpace(episodeTitle)
	var builder strings.Builder
	builder.WriteString("Episode failed")
	if episodeTitle != "" {
		builder.WriteString(": ")
		builder.WriteString(episodeTitle)
	}
	builder.WriteString("\n")
	if cause != nil {
		builder.WriteString(strings.TrimSpace(cause.Error()))
	} else {
		builder.WriteString("unknown error")
	}

	data := payload{
		title:    "Podscribe - Error",
		message:  builder.String(),
		tags:     []string{"podscribe", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPollCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()

	var title, message string
	if failed == 0 {
		title = "Podscribe - Poll Complete"
		message = fmt.Sprintf("Poll complete: %d episodes processed in %s", processed, durationText)
	} else {
		title = "Podscribe - Poll Complete (with errors)"
		message = fmt.Sprintf("Poll complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"podscribe", "poll", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Podscribe - Test",
		message:  "Notification system test",
		tags:     []string{"podscribe", "test"},
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

func (noopService) NotifyEpisodeCompleted(context.Context, string) error { return nil }

func (noopService) NotifyEpisodeFailed(context.Context, string, error) error { return nil }

func (noopService) NotifyPollCompleted(context.Context, int, int, time.Duration) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }

var (
	_ Service = (*ntfyService)(nil)
	_ Service = noopService{}
)
