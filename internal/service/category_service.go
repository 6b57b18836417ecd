package service

import (
	"context"

	"taskpoints/internal/apperr"
	"taskpoints/internal/model"
	"taskpoints/internal/repository"
)

// CategoryService provides validated access to a user's categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) Create(ctx context.Context, ownerID uint, name string) (*model.Category, error) {
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	return s.repo.Create(ctx, ownerID, name)
}

func (s *CategoryService) List(ctx context.Context, ownerID uint) ([]model.Category, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *CategoryService) Rename(ctx context.Context, ownerID, id uint, name string) (*model.Category, error) {
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	return s.repo.Rename(ctx, ownerID, id, name)
}

func (s *CategoryService) Delete(ctx context.Context, ownerID, id uint) error {
	return s.repo.Delete(ctx, ownerID, id)
}
