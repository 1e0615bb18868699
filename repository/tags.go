package repository

import (
	"context"

	"gorm.io/gorm"

	"notesapp/models"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo { return &TagRepo{db: db} }

// GetOrCreate returns the user's tag called name, creating it when missing.
func (r *TagRepo) GetOrCreate(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	var t models.Tag
	err := r.db.WithContext(ctx).Raw(`
INSERT INTO tags (user_id, tag_name) VALUES (?, ?)
ON CONFLICT (user_id, tag_name) DO UPDATE SET tag_name = EXCLUDED.tag_name
RETURNING *`, userID, name).Scan(&t).Error
	if err != nil {
		return nil, translate("tag upsert", err)
	}
	return &t, nil
}

// List returns the user's tags ordered by name.
func (r *TagRepo) List(ctx context.Context, userID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("tag_name").Find(&tags).Error; err != nil {
		return nil, translate("tag list", err)
	}
	return tags, nil
}

func (r *TagRepo) Get(ctx context.Context, userID, tagID uint) (*models.Tag, error) {
	var t models.Tag
	if err := r.db.WithContext(ctx).Where("tag_id = ? AND user_id = ?", tagID, userID).Take(&t).Error; err != nil {
		return nil, translate("tag get", err)
	}
	return &t, nil
}

// ListForNote returns the tags attached to a note. Ownership of the note is
// checked by the caller.
func (r *TagRepo) ListForNote(ctx context.Context, noteID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := r.db.WithContext(ctx).
		Table("tags AS t").
		Select("t.*").
		Joins("JOIN note_tags nt ON nt.tag_id = t.tag_id").
		Where("nt.note_id = ?", noteID).
		Order("t.tag_name").
		Scan(&tags).Error
	if err != nil {
		return nil, translate("note tags", err)
	}
	return tags, nil
}

// Attach links a tag to a note; linking twice is a no-op.
func (r *TagRepo) Attach(ctx context.Context, noteID, tagID uint) error {
	err := r.db.WithContext(ctx).
		Exec("INSERT INTO note_tags (note_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING", noteID, tagID).Error
	return translate("note tag insert", err)
}

// Detach unlinks a tag from a note, ErrNotFound when they were not linked.
func (r *TagRepo) Detach(ctx context.Context, noteID, tagID uint) error {
	res := r.db.WithContext(ctx).Exec("DELETE FROM note_tags WHERE note_id = ? AND tag_id = ?", noteID, tagID)
	if res.Error != nil {
		return translate("note tag delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
