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

// GuestName is the author name of a guest comment posted without a name.
const GuestName = "Guest"

// CommentService handles the comment threads under articles.
type CommentService struct {
	store  repository.Store
	logger *slog.Logger
}

func NewCommentService(store repository.Store, logger *slog.Logger) *CommentService {
	return &CommentService{store: store, logger: logger}
}

// List returns the comments of an article, oldest first.
func (s *CommentService) List(ctx context.Context, articleID string) ([]model.Comment, error) {
	articleID = strings.TrimSpace(articleID)
	if _, err := s.store.Articles().GetByID(ctx, articleID); err != nil {
		return nil, err
	}

	comments, err := s.store.Comments().ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// Create adds a comment. actor may be nil: guests can comment, and guestName
// (or "Guest") is shown as the author. For signed-in users guestName is
// ignored and their display name is used.
func (s *CommentService) Create(ctx context.Context, actor *model.User, articleID, content, guestName string) (*model.Comment, error) {
	if err := requireFields("Comment content is required", field{"content", content}); err != nil {
		return nil, err
	}

	articleID = strings.TrimSpace(articleID)
	if _, err := s.store.Articles().GetByID(ctx, articleID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ArticleID: articleID,
		Content:   strings.TrimSpace(content),
	}
	if actor != nil {
		comment.AuthorID = &actor.ID
		comment.AuthorName = actor.DisplayName()
	} else {
		comment.AuthorName = strings.TrimSpace(guestName)
		if comment.AuthorName == "" {
			comment.AuthorName = GuestName
		}
	}

	if err := s.store.Comments().Create(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("article_id", articleID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("article_id", articleID),
		slog.Bool("guest", actor == nil),
	)
	return comment, nil
}

// Delete removes one comment. Admin only.
func (s *CommentService) Delete(ctx context.Context, actor *model.User, id string) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	if err := s.store.Comments().Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("deleting comment: %w", err)
	}

	s.logger.Info("comment deleted", slog.String("id", id), slog.String("by", actor.ID))
	return nil
}
