package models

import (
	"time"
)

// Media is an attachment of a note. FilePath is either a local upload path
// ("/uploads/<name>"), an object key ("s3://bucket/key") or an external URL
// recorded as-is.
type Media struct {
	ID            uint      `gorm:"column:media_id;primaryKey" json:"media_id"`
	NoteID        uint      `gorm:"index;not null" json:"note_id"`
	FilePath      string    `gorm:"size:1024;not null" json:"file_path"`
	FileType      *string   `gorm:"size:128" json:"file_type"`
	ExtractedText *string   `gorm:"type:text" json:"extracted_text,omitempty"`
	UploadedAt    time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}

// TableName keeps the singular table name used by the schema.
func (Media) TableName() string { return "media" }
