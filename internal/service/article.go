package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/auth"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

// ArticleService handles publishing, browsing and removing articles.
type ArticleService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewArticleService(store repository.Store, logger *slog.Logger) *ArticleService {
	return &ArticleService{store: store, logger: logger}
}

// NewArticle is the input of Create. Category is a category name; an unknown
// name is ignored and the article is stored uncategorized.
type NewArticle struct {
	Title    string
	Content  string
	Category string
	ImageURL string
}

// List returns articles newest first. A non-empty category limits the list
// to that category; a name that matches no category yields an empty list.
func (s *ArticleService) List(ctx context.Context, category string) ([]model.Article, error) {
	var filter repository.ArticleFilter

	if name := strings.TrimSpace(category); name != "" {
		cat, err := s.store.Categories().GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				return []model.Article{}, nil
			}
			return nil, fmt.Errorf("looking up category: %w", err)
		}
		filter.CategoryID = cat.ID
	}

	articles, err := s.store.Articles().List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list articles", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return articles, nil
}

// Get returns one article. Missing → apperror.NotFound("Article").
func (s *ArticleService) Get(ctx context.Context, id string) (*model.Article, error) {
	return s.store.Articles().GetByID(ctx, strings.TrimSpace(id))
}

// Create publishes an article authored by actor.
func (s *ArticleService) Create(ctx context.Context, actor *model.User, in NewArticle) (*model.Article, error) {
	if err := auth.RequireUser(actor); err != nil {
		return nil, err
	}
	if err := requireFields("Title and content are required",
		field{"title", in.Title}, field{"content", in.Content},
	); err != nil {
		return nil, err
	}

	article := &model.Article{
		Title:      strings.TrimSpace(in.Title),
		Content:    strings.TrimSpace(in.Content),
		ImageURL:   strings.TrimSpace(in.ImageURL),
		AuthorID:   actor.ID,
		AuthorName: actor.DisplayName(),
	}

	if name := strings.TrimSpace(in.Category); name != "" {
		cat, err := s.store.Categories().GetByName(ctx, name)
		switch {
		case err == nil:
			article.CategoryID = &cat.ID
			article.Category = cat.Name
		case errors.Is(err, apperror.ErrNotFound):
			// Unknown category: publish uncategorized.
		default:
			return nil, fmt.Errorf("looking up category: %w", err)
		}
	}

	if err := s.store.Articles().Create(ctx, article); err != nil {
		s.logger.Error("failed to create article",
			slog.String("author_id", actor.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating article: %w", err)
	}

	s.logger.Info("article created",
		slog.String("id", article.ID),
		slog.String("author_id", actor.ID),
	)
	return article, nil
}

// Delete removes an article and all of its comments. Admin only.
func (s *ArticleService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	if err := s.store.Articles().Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete article",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting article: %w", err)
	}

	s.logger.Info("article deleted",
		slog.String("id", id),
		slog.String("by", actor.ID),
	)
	return nil
}
