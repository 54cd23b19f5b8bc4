// Package services holds the out-of-band delivery machinery: the
// channel notifier (Slack webhook, SMTP email) and the cron-driven
// dispatcher that drains undelivered notifications.
package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/types"
	"gopkg.in/gomail.v2"
)

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const slackUsername = "Mirador Alerts"

type Notifier struct {
	client          *resty.Client
	slackWebhookURL string
	smtpHost        string
	smtpPort        int
	smtpUsername    string
	smtpPassword    string
	emailFrom       string
}

// NewNotifierFromEnv reads delivery settings from the environment.
// Channels without configuration are reported as unavailable at send
// time rather than failing startup.
func NewNotifierFromEnv() *Notifier {
	smtpPort := 587
	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			smtpPort = port
		}
	}

	return &Notifier{
		client:          resty.New().SetTimeout(10 * time.Second),
		slackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		smtpHost:        os.Getenv("SMTP_HOST"),
		smtpPort:        smtpPort,
		smtpUsername:    os.Getenv("SMTP_USERNAME"),
		smtpPassword:    os.Getenv("SMTP_PASSWORD"),
		emailFrom:       os.Getenv("EMAIL_FROM"),
	}
}

func priorityColor(priority string) string {
	switch priority {
	case types.PriorityHigh:
		return "danger"
	case types.PriorityLow:
		return "good"
	default:
		return "warning"
	}
}

// SendSlack posts the notification to the configured incoming webhook.
func (n *Notifier) SendSlack(notification models.AlertNotification, rule models.AlertRule) error {
	if n.slackWebhookURL == "" {
		return fmt.Errorf("slack webhook is not configured")
	}

	payload := SlackWebhookRequest{
		Username:  slackUsername,
		IconEmoji: ":mega:",
		Text:      fmt.Sprintf("New mention alert: *%s*", rule.Name),
		Attachments: []SlackAttachment{
			{
				Color: priorityColor(notification.Priority),
				Title: notification.Title,
				Text:  notification.Content,
				Fields: []SlackField{
					{Title: "Source", Value: notification.Source, Short: true},
					{Title: "Priority", Value: notification.Priority, Short: true},
					{Title: "Rule", Value: rule.Name, Short: true},
					{Title: "URL", Value: notification.URL, Short: false},
				},
				Footer:    "Mirador",
				Timestamp: time.Now().Unix(),
			},
		},
	}

	resp, err := n.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(n.slackWebhookURL)

	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}

	if resp.StatusCode() >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode())
	}

	return nil
}

// SendEmail mails the notification to the rule owner.
func (n *Notifier) SendEmail(to string, notification models.AlertNotification, rule models.AlertRule) error {
	if n.smtpHost == "" || n.emailFrom == "" {
		return fmt.Errorf("email delivery is not configured")
	}

	body := fmt.Sprintf("%s\n\nSource: %s\nPriority: %s\nRule: %s\n",
		notification.Content, notification.Source, notification.Priority, rule.Name)

	if notification.URL != "" {
		body += fmt.Sprintf("\n%s\n", notification.URL)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", n.emailFrom)
	message.SetHeader("To", to)
	message.SetHeader("Subject", fmt.Sprintf("[Mirador] %s", notification.Title))
	message.SetBody("text/plain", body)

	dialer := gomail.NewDialer(n.smtpHost, n.smtpPort, n.smtpUsername, n.smtpPassword)

	if err := dialer.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
