package models

type Comment struct {
	BaseModel

	IssueID      uint   `gorm:"not null;index"`
	AuthorUserID uint   `gorm:"not null;index"`
	Description  string `gorm:"not null"`

	// Relationships
	Issue  Issue `gorm:"foreignKey:IssueID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Author User  `gorm:"foreignKey:AuthorUserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
