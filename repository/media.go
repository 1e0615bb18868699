package repository

import (
	"context"

	"gorm.io/gorm"

	"notesapp/models"
)

type MediaRepo struct {
	db *gorm.DB
}

func NewMediaRepo(db *gorm.DB) *MediaRepo { return &MediaRepo{db: db} }

func (r *MediaRepo) Create(ctx context.Context, m *models.Media) error {
	return translate("media insert", r.db.WithContext(ctx).Create(m).Error)
}

// ListByNote returns a note's attachments, newest first. Ownership of the
// note is checked by the caller.
func (r *MediaRepo) ListByNote(ctx context.Context, noteID uint) ([]models.Media, error) {
	items := []models.Media{}
	err := r.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("uploaded_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, translate("media list", err)
	}
	return items, nil
}

// GetOwned loads an attachment whose note belongs to userID.
func (r *MediaRepo) GetOwned(ctx context.Context, userID, mediaID uint) (*models.Media, error) {
	var m models.Media
	err := r.db.WithContext(ctx).
		Table("media AS m").
		Select("m.*").
		Joins("JOIN notes n ON m.note_id = n.note_id").
		Where("m.media_id = ? AND n.user_id = ?", mediaID, userID).
		Take(&m).Error
	if err != nil {
		return nil, translate("media get", err)
	}
	return &m, nil
}

func (r *MediaRepo) Delete(ctx context.Context, mediaID uint) error {
	res := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Delete(&models.Media{})
	if res.Error != nil {
		return translate("media delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MissingText pages through attachments with no extracted text, in id order,
// starting after afterID.
func (r *MediaRepo) MissingText(ctx context.Context, afterID uint, limit int) ([]models.Media, error) {
	items := []models.Media{}
	err := r.db.WithContext(ctx).
		Where("extracted_text IS NULL AND media_id > ?", afterID).
		Order("media_id").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, translate("media missing text", err)
	}
	return items, nil
}

func (r *MediaRepo) SetExtractedText(ctx context.Context, mediaID uint, text string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Media{}).
		Where("media_id = ?", mediaID).
		Update("extracted_text", text)
	if res.Error != nil {
		return translate("media set text", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
