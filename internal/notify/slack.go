package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"plandrift/internal/config"
	"plandrift/internal/driftcheck"
	"plandrift/pkg/logging"
)

// SlackNotifier posts alerts to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL string
	channel    string
	username   string
	httpClient *http.Client
	logger     logging.Logger
}

// NewSlackNotifier creates a SlackNotifier for the configured webhook
func NewSlackNotifier(cfg *config.SlackConfig, logger logging.Logger) *SlackNotifier {
	username := cfg.Username
	if username == "" {
		username = "plandrift"
	}
	return &SlackNotifier{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		username:   username,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text"`
	Footer string       `json:"footer"`
	Fields []slackField `json:"fields"`
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

// Notify posts the alert as a single attachment coloured by risk.
func (n *SlackNotifier) Notify(ctx context.Context, alert Alert) error {
	payload := slackPayload{
		Channel:  n.channel,
		Username: n.username,
		Attachments: []slackAttachment{{
			Color:  slackColor(alert.Result.RiskLevel),
			Title:  alert.Subject(),
			Text:   alert.Text(),
			Footer: alert.PlanID,
			Fields: []slackField{
				{Title: "Risk", Value: string(alert.Result.RiskLevel), Short: true},
				{Title: "Changes", Value: fmt.Sprintf("%d", alert.Result.TotalChanges), Short: true},
			},
		}},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("Posted drift alert for %s to slack", alert.PlanID)
	return nil
}

func slackColor(level driftcheck.RiskLevel) string {
	switch level {
	case driftcheck.RiskHigh:
		return "danger"
	case driftcheck.RiskMedium:
		return "warning"
	default:
		return "good"
	}
}
