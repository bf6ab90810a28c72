package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

// CategoryService manages the category list. Categories are never deleted.
type CategoryService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCategoryService(store repository.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{store: store, logger: logger}
}

// Names returns every category name, alphabetical.
func (s *CategoryService) Names(ctx context.Context) ([]string, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names, nil
}

// Create adds a category, or returns the existing one with the same name.
// Admin only.
func (s *CategoryService) Create(ctx context.Context, actor *model.User, name string) (*model.Category, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := requireFields("name required", field{"name", name}); err != nil {
		return nil, err
	}

	category, err := s.store.Categories().Upsert(ctx, strings.TrimSpace(name))
	if err != nil {
		s.logger.Error("failed to upsert category", slog.String("error", err.Error()))
		return nil, fmt.Errorf("creating category: %w", err)
	}

	s.logger.Info("category saved",
		slog.String("id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}
