package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SlackNotifier sends notifications to Slack via webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	iconEmoji  string
	client     *http.Client
}

// SlackOption is a functional option for SlackNotifier
type SlackOption func(*SlackNotifier)

// WithSlackChannel sets the Slack channel
func WithSlackChannel(channel string) SlackOption {
	return func(s *SlackNotifier) {
		s.channel = channel
	}
}

// WithSlackUsername sets the Slack bot username
func WithSlackUsername(username string) SlackOption {
	return func(s *SlackNotifier) {
		s.username = username
	}
}

// WithSlackHTTPClient replaces the HTTP client used for the webhook
func WithSlackHTTPClient(client *http.Client) SlackOption {
	return func(s *SlackNotifier) {
		s.client = client
	}
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL string, opts ...SlackOption) *SlackNotifier {
	s := &SlackNotifier{
		webhookURL: webhookURL,
		username:   "jiraload",
		iconEmoji:  ":chart_with_upwards_trend:",
		client:     &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *SlackNotifier) Name() string {
	return "slack"
}

type slackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields,omitempty"`
	Footer string       `json:"footer,omitempty"`
	TS     int64        `json:"ts,omitempty"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Notify sends a notification to Slack
func (s *SlackNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	color := "good"
	emoji := ":white_check_mark:"
	if !summary.Passed {
		color = "danger"
		emoji = ":x:"
	}

	fields := []slackField{
		{Title: "Target", Value: summary.Target, Short: true},
		{Title: "Duration", Value: summary.Duration.Round(time.Second).String(), Short: true},
		{Title: "Actions", Value: fmt.Sprintf("%d (%.1f/s)", summary.Actions, summary.RPS), Short: true},
		{Title: "Errors", Value: fmt.Sprintf("%d (%.2f%%)", summary.Errors, summary.ErrorRate*100), Short: true},
		{Title: "p95", Value: summary.P95.Round(time.Millisecond).String(), Short: true},
	}

	var text strings.Builder
	if len(summary.FailedThresholds) > 0 {
		text.WriteString("*Failed thresholds:*\n")
		for _, t := range summary.FailedThresholds {
			fmt.Fprintf(&text, "• %s\n", t)
		}
	}
	if len(summary.TopErrors) > 0 {
		text.WriteString("*Top errors:*\n")
		for _, e := range summary.TopErrors {
			fmt.Fprintf(&text, "• `%s` × %d\n", e.Kind, e.Count)
		}
	}

	msg := slackMessage{
		Channel:   s.channel,
		Username:  s.username,
		IconEmoji: s.iconEmoji,
		Attachments: []slackAttachment{{
			Color:  color,
			Title:  fmt.Sprintf("%s %s", emoji, summary.title()),
			Text:   text.String(),
			Fields: fields,
			Footer: "jiraload run " + summary.RunID,
			TS:     time.Now().Unix(),
		}},
	}

	return postJSON(ctx, s.client, s.webhookURL, msg)
}
