package models

import (
	"gorm.io/datatypes"
)

// ActivityEvent is an append-only record of a mutation inside a project. The
// payload carries a small action-specific snapshot (titles, ids) for feeds
// and webhook bodies.
type ActivityEvent struct {
	BaseModel

	ProjectID   uint           `gorm:"not null;index"`
	ActorUserID uint           `gorm:"not null;index"`
	Action      string         `gorm:"not null"` // e.g. "issue_created", "comment_created"
	Payload     datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Actor   User    `gorm:"foreignKey:ActorUserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
