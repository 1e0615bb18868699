package models

import "time"

// Tag is a per-user label; (UserID, TagName) is unique.
type Tag struct {
	ID        uint      `gorm:"column:tag_id;primaryKey" json:"tag_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_tags_user_name" json:"user_id"`
	TagName   string    `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name" json:"tag_name"`
	CreatedAt time.Time `json:"created_at"`
}

// NoteTag links a note to a tag.
type NoteTag struct {
	NoteID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID  uint `gorm:"primaryKey;autoIncrement:false"`
}
