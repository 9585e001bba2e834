package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TeamsNotifier sends notifications to Microsoft Teams via webhook
type TeamsNotifier struct {
	webhookURL string
	client     *http.Client
}

// TeamsOption is a functional option for TeamsNotifier
type TeamsOption func(*TeamsNotifier)

// WithTeamsHTTPClient replaces the HTTP client used for the webhook
func WithTeamsHTTPClient(client *http.Client) TeamsOption {
	return func(t *TeamsNotifier) {
		t.client = client
	}
}

// NewTeamsNotifier creates a new Teams notifier
func NewTeamsNotifier(webhookURL string, opts ...TeamsOption) *TeamsNotifier {
	t := &TeamsNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *TeamsNotifier) Name() string {
	return "teams"
}

// teamsMessage is a Microsoft Teams Adaptive Card message
type teamsMessage struct {
	Type        string      `json:"type"`
	Attachments []teamsCard `json:"attachments"`
}

type teamsCard struct {
	ContentType string           `json:"contentType"`
	ContentURL  *string          `json:"contentUrl"`
	Content     teamsCardContent `json:"content"`
}

type teamsCardContent struct {
	Schema  string       `json:"$schema"`
	Type    string       `json:"type"`
	Version string       `json:"version"`
	Body    []teamsBlock `json:"body"`
}

type teamsBlock struct {
	Type   string      `json:"type"`
	Size   string      `json:"size,omitempty"`
	Weight string      `json:"weight,omitempty"`
	Text   string      `json:"text,omitempty"`
	Color  string      `json:"color,omitempty"`
	Wrap   bool        `json:"wrap,omitempty"`
	Facts  []teamsFact `json:"facts,omitempty"`
}

type teamsFact struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// Notify sends a notification to Teams
func (t *TeamsNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	color := "Good"
	if !summary.Passed {
		color = "Attention"
	}

	body := []teamsBlock{
		{Type: "TextBlock", Size: "Large", Weight: "Bolder", Text: summary.title(), Color: color},
		{Type: "FactSet", Facts: []teamsFact{
			{Title: "Run", Value: summary.RunID},
			{Title: "Target", Value: summary.Target},
			{Title: "Duration", Value: summary.Duration.Round(time.Second).String()},
			{Title: "Actions", Value: fmt.Sprintf("%d (%.1f/s)", summary.Actions, summary.RPS)},
			{Title: "Errors", Value: fmt.Sprintf("%d (%.2f%%)", summary.Errors, summary.ErrorRate*100)},
			{Title: "p95", Value: summary.P95.Round(time.Millisecond).String()},
		}},
	}
	for _, th := range summary.FailedThresholds {
		body = append(body, teamsBlock{Type: "TextBlock", Text: th, Color: "Attention", Wrap: true})
	}
	for _, e := range summary.TopErrors {
		body = append(body, teamsBlock{Type: "TextBlock", Text: fmt.Sprintf("%s × %d", e.Kind, e.Count), Wrap: true})
	}

	msg := teamsMessage{
		Type: "message",
		Attachments: []teamsCard{{
			ContentType: "application/vnd.microsoft.card.adaptive",
			Content: teamsCardContent{
				Schema:  "http://adaptivecards.io/schemas/adaptive-card.json",
				Type:    "AdaptiveCard",
				Version: "1.4",
				Body:    body,
			},
		}},
	}

	return postJSON(ctx, t.client, t.webhookURL, msg)
}
