package models

import "time"

// Folder groups notes. ParentFolderID makes folders nest.
type Folder struct {
	ID             uint      `gorm:"column:folder_id;primaryKey" json:"folder_id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	FolderName     string    `gorm:"size:255;not null" json:"folder_name"`
	ParentFolderID *uint     `gorm:"index" json:"parent_folder_id"`
	CreatedAt      time.Time `json:"created_at"`
}
