package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"notesapp/models"
)

// NoteFilter narrows a note listing. Zero values mean no filtering.
type NoteFilter struct {
	FolderID *uint
	Query    string
}

// NoteFields are the user editable columns of a note.
type NoteFields struct {
	Title    string
	Content  string
	FolderID *uint
}

type NoteRepo struct {
	db *gorm.DB
}

func NewNoteRepo(db *gorm.DB) *NoteRepo { return &NoteRepo{db: db} }

func (r *NoteRepo) Create(ctx context.Context, n *models.Note) error {
	return translate("note insert", r.db.WithContext(ctx).Create(n).Error)
}

// List returns the user's notes with their folder name, most recently updated first.
func (r *NoteRepo) List(ctx context.Context, userID uint, f NoteFilter) ([]models.NoteListItem, error) {
	items := []models.NoteListItem{}
	q := r.db.WithContext(ctx).
		Table("notes AS n").
		Select("n.note_id AS id, n.note_title, n.note_content, n.created_at, n.updated_at, f.folder_name, f.folder_id").
		Joins("LEFT JOIN folders f ON n.folder_id = f.folder_id").
		Where("n.user_id = ?", userID)
	if f.FolderID != nil {
		q = q.Where("n.folder_id = ?", *f.FolderID)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		p := likePattern(s)
		q = q.Where("(n.note_title ILIKE ? OR n.note_content ILIKE ?)", p, p)
	}
	if err := q.Order("n.updated_at DESC").Scan(&items).Error; err != nil {
		return nil, translate("note list", err)
	}
	return items, nil
}

func (r *NoteRepo) Get(ctx context.Context, userID, noteID uint) (*models.Note, error) {
	var n models.Note
	err := r.db.WithContext(ctx).
		Where("note_id = ? AND user_id = ?", noteID, userID).
		Take(&n).Error
	if err != nil {
		return nil, translate("note get", err)
	}
	return &n, nil
}

// Update replaces the editable fields of an owned note and bumps updated_at.
func (r *NoteRepo) Update(ctx context.Context, userID, noteID uint, fields NoteFields) (*models.Note, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("note_id = ? AND user_id = ?", noteID, userID).
		Updates(map[string]any{
			"note_title":   fields.Title,
			"note_content": fields.Content,
			"folder_id":    fields.FolderID,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return nil, translate("note update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, userID, noteID)
}

func (r *NoteRepo) Delete(ctx context.Context, userID, noteID uint) error {
	res := r.db.WithContext(ctx).
		Where("note_id = ? AND user_id = ?", noteID, userID).
		Delete(&models.Note{})
	if res.Error != nil {
		return translate("note delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
