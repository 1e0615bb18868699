package models

import "time"

// Note belongs to a user and optionally to one of that user's folders.
type Note struct {
	ID          uint      `gorm:"column:note_id;primaryKey" json:"note_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	FolderID    *uint     `gorm:"index" json:"folder_id"`
	NoteTitle   string    `gorm:"size:512" json:"note_title"`
	NoteContent string    `gorm:"type:text" json:"note_content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NoteListItem is a note joined with its folder name for listings.
type NoteListItem struct {
	ID          uint      `json:"note_id"`
	NoteTitle   string    `json:"note_title"`
	NoteContent string    `json:"note_content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	FolderName  *string   `json:"folder_name"`
	FolderID    *uint     `json:"folder_id"`
}
