package models

import (
	"gorm.io/datatypes"
)

const (
	ChannelDiscord = "discord"
	ChannelSlack   = "slack"
	ChannelWebhook = "webhook"
)

func ValidChannel(c string) bool {
	return c == ChannelDiscord || c == ChannelSlack || c == ChannelWebhook
}

// NotificationRule maps a project activity verb to an outbound channel.
// Config holds channel settings, at minimum {"url": "..."}.
type NotificationRule struct {
	BaseModel

	ProjectID   uint           `gorm:"not null;index"`
	UserID      uint           `gorm:"not null;index"`
	TriggerType string         `gorm:"not null"` // an activity action, e.g. "issue_created"
	Channel     string         `gorm:"not null"` // "discord", "slack" or "webhook"
	IsActive    bool           `gorm:"default:true"`
	Config      datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
