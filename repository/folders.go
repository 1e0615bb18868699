package repository

import (
	"context"

	"gorm.io/gorm"

	"notesapp/models"
)

type FolderRepo struct {
	db *gorm.DB
}

func NewFolderRepo(db *gorm.DB) *FolderRepo { return &FolderRepo{db: db} }

func (r *FolderRepo) Create(ctx context.Context, f *models.Folder) error {
	return translate("folder insert", r.db.WithContext(ctx).Create(f).Error)
}

// List returns the user's folders, newest first.
func (r *FolderRepo) List(ctx context.Context, userID uint) ([]models.Folder, error) {
	folders := []models.Folder{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&folders).Error
	if err != nil {
		return nil, translate("folder list", err)
	}
	return folders, nil
}

func (r *FolderRepo) Get(ctx context.Context, userID, folderID uint) (*models.Folder, error) {
	var f models.Folder
	err := r.db.WithContext(ctx).
		Where("folder_id = ? AND user_id = ?", folderID, userID).
		Take(&f).Error
	if err != nil {
		return nil, translate("folder get", err)
	}
	return &f, nil
}

// Update replaces name and parent of an owned folder.
func (r *FolderRepo) Update(ctx context.Context, userID, folderID uint, name string, parentID *uint) (*models.Folder, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Folder{}).
		Where("folder_id = ? AND user_id = ?", folderID, userID).
		Updates(map[string]any{"folder_name": name, "parent_folder_id": parentID})
	if res.Error != nil {
		return nil, translate("folder update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, userID, folderID)
}

func (r *FolderRepo) Delete(ctx context.Context, userID, folderID uint) error {
	res := r.db.WithContext(ctx).
		Where("folder_id = ? AND user_id = ?", folderID, userID).
		Delete(&models.Folder{})
	if res.Error != nil {
		return translate("folder delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
