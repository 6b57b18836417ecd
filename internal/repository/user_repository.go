package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
)

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user row for an externally resolved identity,
// provisioning it on first contact. The id comes from the identity gateway
// and is trusted as-is.
func (r *UserRepository) GetOrCreate(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	db := r.db.WithContext(ctx)
	err := db.First(&user, id).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Two first requests for the same identity may race here; the insert
		// tolerates losing and the re-read returns the winner's row.
		user = model.User{ID: id}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		if err := db.First(&user, id).Error; err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		return &user, nil
	default:
		return nil, fmt.Errorf("find user: %w", err)
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// LinkChat stores the chat the user wants reminders delivered to.
// A nil chatID unlinks it.
func (r *UserRepository) LinkChat(ctx context.Context, id uint, chatID *int64) (*model.User, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Update("chat_id", chatID)
	if res.Error != nil {
		return nil, fmt.Errorf("link chat: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.FindByID(ctx, id)
}
