package models

type Issue struct {
	BaseModel

	ProjectID      uint   `gorm:"not null;index"`
	Title          string `gorm:"not null"`
	Description    string
	Tag            string `gorm:"not null"` // "BUG", "IMPROVEMENT", "TASK", ...
	Priority       string `gorm:"not null"` // "LOW", "MEDIUM", "HIGH", ...
	Status         string `gorm:"not null"` // "To Do", "In Progress", "Finished", ...
	AuthorUserID   uint   `gorm:"not null;index"`
	AssigneeUserID uint   `gorm:"not null;index"`

	// Relationships
	Project  Project   `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author   User      `gorm:"foreignKey:AuthorUserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee User      `gorm:"foreignKey:AssigneeUserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:IssueID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
