// Package repository declares the storage contracts used by the service layer.
//
// Each aggregate gets its own interface. A Store bundles them together with
// the lifecycle methods, so the server can pick a backend at startup
// (SQLite via database/sql, or Postgres / MySQL via GORM) without any service
// knowing which one it got.
//
// ERROR CONTRACT (every implementation):
//   - missing rows      → apperror.NotFound
//   - duplicate UNIQUE  → apperror.Conflict
//   - anything else     → wrapped driver error (handlers turn it into a 500)
package repository

import (
	"context"

	"github.com/sakif/article-hub/internal/model"
)

// ArticleFilter narrows ArticleRepository.List. The zero value lists every
// article.
type ArticleFilter struct {
	CategoryID string
}

type UserRepository interface {
	// Create assigns ID and CreatedAt. Duplicate phone → apperror.Conflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	Count(ctx context.Context) (int, error)
	// FirstAdmin returns the oldest admin account.
	FirstAdmin(ctx context.Context) (*model.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	UpdatePassword(ctx context.Context, id, password string) error
}

type SessionRepository interface {
	// Replace deletes every session of session.UserID and inserts session,
	// in one transaction. It sets CreatedAt.
	Replace(ctx context.Context, session *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
}

type CategoryRepository interface {
	// Upsert inserts the category if the name is new and returns the stored
	// row either way.
	Upsert(ctx context.Context, name string) (*model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	// List returns all categories ordered by name.
	List(ctx context.Context) ([]model.Category, error)
}

type ArticleRepository interface {
	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, article *model.Article) error
	// GetByID fills AuthorName and Category from the joined rows.
	GetByID(ctx context.Context, id string) (*model.Article, error)
	// List returns articles newest first.
	List(ctx context.Context, filter ArticleFilter) ([]model.Article, error)
	// Delete removes the article and all of its comments in one transaction.
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	// Create assigns ID and CreatedAt.
	Create(ctx context.Context, comment *model.Comment) error
	// ListByArticle returns the article's comments oldest first.
	ListByArticle(ctx context.Context, articleID string) ([]model.Comment, error)
	Delete(ctx context.Context, id string) error
}

// Store is a complete storage backend.
type Store interface {
	Users() UserRepository
	Sessions() SessionRepository
	Categories() CategoryRepository
	Articles() ArticleRepository
	Comments() CommentRepository

	Ping(ctx context.Context) error
	Close() error
}
