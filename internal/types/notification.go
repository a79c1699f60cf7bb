package types

// RuleConfig is the schema of NotificationRule.Config for every channel.
// Discord and Slack rules point URL at an incoming-webhook endpoint; plain
// webhook rules receive the raw event JSON.
type RuleConfig struct {
	URL string `json:"url"`
}
