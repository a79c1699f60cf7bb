package models

import "time"

// BaseModel is gorm.Model without DeletedAt: rows are deleted for real so
// database-level ON DELETE constraints apply.
type BaseModel struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
