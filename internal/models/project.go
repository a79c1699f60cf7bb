package models

type Project struct {
	BaseModel

	Title        string `gorm:"not null"`
	Description  string
	Type         string `gorm:"not null"` // "back-end", "front-end", "iOS", "Android", ...
	AuthorUserID *uint  `gorm:"index"`

	// Relationships
	Author            *User              `gorm:"foreignKey:AuthorUserID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Contributors      []Contributor      `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Issues            []Issue            `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	ActivityEvents    []ActivityEvent    `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	NotificationRules []NotificationRule `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
