package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"gorm.io/gorm"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.ArticleRepository = (*articleRepo)(nil)

type articleRepo struct {
	db *gorm.DB
}

// articleView is one row of the articles ⋈ users ⋈ categories query.
type articleView struct {
	ID           string
	Title        string
	Content      string
	ImageURL     string `gorm:"column:image_url"`
	AuthorID     string
	CategoryID   *string
	CreatedAt    time.Time
	AuthorName   string
	AuthorPhone  string
	CategoryName string
}

func (r *articleRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("articles AS a").
		Select(`a.id, a.title, a.content, a.image_url, a.author_id, a.category_id, a.created_at,
			COALESCE(u.name, '') AS author_name,
			COALESCE(u.phone, '') AS author_phone,
			COALESCE(c.name, '') AS category_name`).
		Joins("LEFT JOIN users u ON u.id = a.author_id").
		Joins("LEFT JOIN categories c ON c.id = a.category_id")
}

func (r *articleRepo) Create(ctx context.Context, article *model.Article) error {
	row := articleRow{
		ID:         xid.New().String(),
		Title:      article.Title,
		Content:    article.Content,
		ImageURL:   article.ImageURL,
		AuthorID:   article.AuthorID,
		CategoryID: article.CategoryID,
		CreatedAt:  r.db.NowFunc(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("gormstore: creating article: %w", err)
	}

	article.ID = row.ID
	article.CreatedAt = row.CreatedAt
	return nil
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*model.Article, error) {
	var views []articleView
	if err := r.joined(ctx).Where("a.id = ?", id).Limit(1).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("gormstore: getting article %s: %w", id, err)
	}
	if len(views) == 0 {
		return nil, apperror.NotFound("Article")
	}
	return views[0].toModel(), nil
}

func (r *articleRepo) List(ctx context.Context, filter repository.ArticleFilter) ([]model.Article, error) {
	query := r.joined(ctx)
	if filter.CategoryID != "" {
		query = query.Where("a.category_id = ?", filter.CategoryID)
	}

	var views []articleView
	if err := query.Order("a.created_at DESC").Order("a.id DESC").Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("gormstore: listing articles: %w", err)
	}

	articles := make([]model.Article, 0, len(views))
	for _, v := range views {
		articles = append(articles, *v.toModel())
	}
	return articles, nil
}

// Delete removes the article and its comments in one transaction. Returning
// NotFound from the callback rolls the comment deletion back.
func (r *articleRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).Delete(&commentRow{}).Error; err != nil {
			return fmt.Errorf("gormstore: deleting comments of article %s: %w", id, err)
		}
		result := tx.Where("id = ?", id).Delete(&articleRow{})
		if result.Error != nil {
			return fmt.Errorf("gormstore: deleting article %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperror.NotFound("Article")
		}
		return nil
	})
}

func (v articleView) toModel() *model.Article {
	return &model.Article{
		ID:         v.ID,
		Title:      v.Title,
		Content:    v.Content,
		ImageURL:   v.ImageURL,
		AuthorID:   v.AuthorID,
		AuthorName: model.DisplayName(v.AuthorName, v.AuthorPhone),
		CategoryID: v.CategoryID,
		Category:   v.CategoryName,
		CreatedAt:  v.CreatedAt.UTC(),
	}
}
