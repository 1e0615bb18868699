package repository

import (
	"context"

	"gorm.io/gorm"

	"notesapp/models"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u and fills its id. Duplicate username or email yields ErrConflict.
func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	return translate("user insert", r.db.WithContext(ctx).Create(u).Error)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, translate("user by email", err)
	}
	return &u, nil
}

// SetPasswordHash replaces the stored hash of the user with email.
func (r *UserRepo) SetPasswordHash(ctx context.Context, email, hash string) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Update("password_hash", hash)
	if res.Error != nil {
		return translate("user password", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
