package gormstore

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.CommentRepository = (*commentRepo)(nil)

type commentRepo struct {
	db *gorm.DB
}

func (r *commentRepo) Create(ctx context.Context, comment *model.Comment) error {
	row := commentRow{
		ID:         xid.New().String(),
		ArticleID:  comment.ArticleID,
		Content:    comment.Content,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.AuthorName,
		CreatedAt:  r.db.NowFunc(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("gormstore: creating comment on article %s: %w", comment.ArticleID, err)
	}

	comment.ID = row.ID
	comment.CreatedAt = row.CreatedAt
	return nil
}

func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]model.Comment, error) {
	var rows []commentRow
	err := r.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: listing comments of article %s: %w", articleID, err)
	}

	comments := make([]model.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, model.Comment{
			ID:         row.ID,
			ArticleID:  row.ArticleID,
			Content:    row.Content,
			AuthorID:   row.AuthorID,
			AuthorName: row.AuthorName,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return comments, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&commentRow{})
	if result.Error != nil {
		return fmt.Errorf("gormstore: deleting comment %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("Comment")
	}
	return nil
}
