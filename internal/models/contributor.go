package models

const (
	PermissionOwner       = "OWNER"
	PermissionContributor = "CONTRIBUTOR"
)

func ValidPermission(p string) bool {
	return p == PermissionOwner || p == PermissionContributor
}

type Contributor struct {
	BaseModel

	UserID     uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	ProjectID  uint   `gorm:"not null;uniqueIndex:idx_user_project"`
	Permission string `gorm:"not null"` // "OWNER" or "CONTRIBUTOR"
	Role       string // free-form, e.g. "maintainer", "reviewer"

	// Relationships
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
