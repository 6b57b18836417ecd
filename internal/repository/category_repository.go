package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
)

// CategoryRepository manages task categories. Every lookup is scoped by the
// owner id so that foreign categories behave exactly like absent ones.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, ownerID uint, name string) (*model.Category, error) {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&model.Category{}).
		Where("owner_id = ? AND name = ?", ownerID, name).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return nil, &apperr.ConflictError{Detail: fmt.Sprintf("category %q already exists", name)}
	}

	category := model.Category{OwnerID: ownerID, Name: name}
	if err := db.Create(&category).Error; err != nil {
		// The unique index backstops the pre-check under races.
		if isUniqueViolation(err) {
			return nil, &apperr.ConflictError{Detail: fmt.Sprintf("category %q already exists", name)}
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, ownerID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, ownerID, id uint) (*model.Category, error) {
	var category model.Category
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Rename(ctx context.Context, ownerID, id uint, name string) (*model.Category, error) {
	category, err := r.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("owner_id = ? AND name = ? AND id <> ?", ownerID, name, id).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if count > 0 {
		return nil, &apperr.ConflictError{Detail: fmt.Sprintf("category %q already exists", name)}
	}

	if err := r.db.WithContext(ctx).Model(category).Update("name", name).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &apperr.ConflictError{Detail: fmt.Sprintf("category %q already exists", name)}
		}
		return nil, fmt.Errorf("rename category: %w", err)
	}
	return category, nil
}

// Delete removes an owned category and clears the reference on every task
// that pointed at it, in one transaction. Tasks are never deleted with their
// category.
func (r *CategoryRepository) Delete(ctx context.Context, ownerID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		err := tx.Where("id = ? AND owner_id = ?", id, ownerID).First(&category).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			return fmt.Errorf("find category: %w", err)
		}

		if err := tx.Model(&model.Task{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("clear task references: %w", err)
		}

		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
