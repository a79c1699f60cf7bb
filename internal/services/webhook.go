package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/issuedesk-dev/issuedesk/db"
	"github.com/issuedesk-dev/issuedesk/internal/models"
	"github.com/issuedesk-dev/issuedesk/internal/types"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
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

// WebhookEvent is the body delivered to plain webhook rules.
type WebhookEvent struct {
	ID          uint            `json:"id"`
	ProjectID   uint            `json:"project_id"`
	Project     string          `json:"project"`
	ActorUserID uint            `json:"actor_user_id"`
	Action      string          `json:"action"`
	Payload     json.RawMessage `json:"payload"`
	CreatedTime time.Time       `json:"created_time"`
}

const (
	ColorGreen  = 65280    // #00FF00 - created
	ColorOrange = 16753920 // #FFA500 - updated
	ColorRed    = 16711680 // #FF0000 - deleted

	Username = "Issuedesk"
)

var webhookClient = &http.Client{Timeout: 10 * time.Second}

// DispatchEvent fans an activity event out to the project's active
// notification rules. Rule matching runs on the request path; deliveries run
// in goroutines so a slow endpoint never blocks a handler.
func DispatchEvent(event models.ActivityEvent) {
	var rules []models.NotificationRule

	err := db.DB.
		Where("project_id = ? AND trigger_type = ? AND is_active = ?", event.ProjectID, event.Action, true).
		Find(&rules).Error

	if err != nil {
		log.Printf("Failed to load notification rules for project %d: %v", event.ProjectID, err)
		return
	}

	if len(rules) == 0 {
		return
	}

	var project models.Project

	if err := db.DB.First(&project, event.ProjectID).Error; err != nil {
		log.Printf("Failed to load project %d for notification: %v", event.ProjectID, err)
		return
	}

	for _, rule := range rules {
		go func(rule models.NotificationRule) {
			if err := SendRuleNotification(rule, project, event); err != nil {
				log.Printf("Failed to deliver %s notification for project %d: %v", rule.Channel, project.ID, err)
			}
		}(rule)
	}
}

// SendRuleNotification delivers one event through one rule's channel.
func SendRuleNotification(rule models.NotificationRule, project models.Project, event models.ActivityEvent) error {
	var config types.RuleConfig

	if err := json.Unmarshal(rule.Config, &config); err != nil {
		return fmt.Errorf("invalid rule config: %w", err)
	}

	if config.URL == "" {
		return fmt.Errorf("notification rule %d has no url", rule.ID)
	}

	switch rule.Channel {
	case models.ChannelDiscord:
		if err := sendDiscordWebhook(config.URL, discordEventPayload(project, event)); err != nil {
			return fmt.Errorf("discord: %w", err)
		}
	case models.ChannelSlack:
		if err := sendSlackWebhook(config.URL, slackEventPayload(project, event)); err != nil {
			return fmt.Errorf("slack: %w", err)
		}
	case models.ChannelWebhook:
		if err := sendGenericWebhook(config.URL, project, event); err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
	default:
		return fmt.Errorf("unknown notification channel %q", rule.Channel)
	}

	return nil
}

// DescribeAction turns an activity verb into a sentence fragment,
// "issue_created" becomes "Issue created".
func DescribeAction(action string) string {
	text := strings.ReplaceAll(action, "_", " ")

	if text == "" {
		return text
	}

	return strings.ToUpper(text[:1]) + text[1:]
}

func actionColor(action string) int {
	switch {
	case strings.HasSuffix(action, "_deleted"), strings.HasSuffix(action, "_removed"):
		return ColorRed
	case strings.HasSuffix(action, "_updated"):
		return ColorOrange
	default:
		return ColorGreen
	}
}

func slackColor(action string) string {
	switch actionColor(action) {
	case ColorRed:
		return "danger"
	case ColorOrange:
		return "warning"
	default:
		return "good"
	}
}

func payloadPairs(event models.ActivityEvent) [][2]string {
	if len(event.Payload) == 0 {
		return nil
	}

	var detail map[string]any

	if err := json.Unmarshal(event.Payload, &detail); err != nil {
		return nil
	}

	keys := make([]string, 0, len(detail))
	for key := range detail {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, [2]string{key, fmt.Sprintf("%v", detail[key])})
	}

	return pairs
}

func discordEventPayload(project models.Project, event models.ActivityEvent) DiscordWebhookRequest {
	fields := []DiscordWebhookField{
		{Name: "Project", Value: project.Title, Inline: true},
		{Name: "Actor", Value: fmt.Sprintf("user #%d", event.ActorUserID), Inline: true},
	}

	for _, pair := range payloadPairs(event) {
		fields = append(fields, DiscordWebhookField{Name: pair[0], Value: pair[1], Inline: false})
	}

	return DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       DescribeAction(event.Action),
				Description: fmt.Sprintf("**%s** in project **%s**", DescribeAction(event.Action), project.Title),
				Color:       actionColor(event.Action),
				Fields:      fields,
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Project: %s | Issuedesk", project.Title),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}
}

func slackEventPayload(project models.Project, event models.ActivityEvent) SlackWebhookRequest {
	fields := []SlackField{
		{Title: "Project", Value: project.Title, Short: true},
		{Title: "Actor", Value: fmt.Sprintf("user #%d", event.ActorUserID), Short: true},
	}

	for _, pair := range payloadPairs(event) {
		fields = append(fields, SlackField{Title: pair[0], Value: pair[1], Short: false})
	}

	return SlackWebhookRequest{
		Username: Username,
		Text:     fmt.Sprintf("*%s* in project *%s*", DescribeAction(event.Action), project.Title),
		Attachments: []SlackAttachment{
			{
				Color:     slackColor(event.Action),
				Title:     DescribeAction(event.Action),
				Fields:    fields,
				Footer:    fmt.Sprintf("Project: %s", project.Title),
				Timestamp: time.Now().Unix(),
			},
		},
	}
}

func sendDiscordWebhook(webhookURL string, payload DiscordWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}

	resp, err := webhookClient.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Discord webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func sendSlackWebhook(webhookURL string, payload SlackWebhookRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	resp, err := webhookClient.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send Slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("Slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func sendGenericWebhook(webhookURL string, project models.Project, event models.ActivityEvent) error {
	body, err := json.Marshal(WebhookEvent{
		ID:          event.ID,
		ProjectID:   event.ProjectID,
		Project:     project.Title,
		ActorUserID: event.ActorUserID,
		Action:      event.Action,
		Payload:     json.RawMessage(event.Payload),
		CreatedTime: event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Issuedesk-Event", event.Action)
	req.Header.Set("X-Issuedesk-Delivery", uuid.NewString())

	resp, err := webhookClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
