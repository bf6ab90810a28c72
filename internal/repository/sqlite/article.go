package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.ArticleRepository = (*ArticleDB)(nil)

// ArticleDB is the articles-table view of DB.
type ArticleDB struct {
	db *DB
}

// articleSelect joins the author and the category so one query yields the
// full API view of an article.
//
// LEFT JOIN on categories: uncategorized articles have category_id NULL and
// must still be returned. LEFT JOIN on users: a missing author row shows as
// "Unknown" instead of hiding the article.
const articleSelect = `
	SELECT a.id, a.title, a.content, a.image_url, a.author_id, a.category_id, a.created_at,
	       COALESCE(u.name, ''), COALESCE(u.phone, ''), COALESCE(c.name, '')
	FROM articles a
	LEFT JOIN users u      ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id`

// Create inserts a new article.
//
// PARAMETERIZED QUERIES (the ? placeholders):
// The driver escapes every value. Never build SQL with fmt.Sprintf.
func (a *ArticleDB) Create(ctx context.Context, article *model.Article) error {
	article.ID = xid.New().String()
	article.CreatedAt = time.Now().UTC()

	_, err := a.db.conn.ExecContext(ctx,
		`INSERT INTO articles (id, title, content, image_url, author_id, category_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		article.ID,
		article.Title,
		article.Content,
		article.ImageURL,
		article.AuthorID,
		article.CategoryID, // *string: nil becomes NULL
		article.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating article: %w", err)
	}
	return nil
}

// GetByID retrieves a single article with its author name and category.
func (a *ArticleDB) GetByID(ctx context.Context, id string) (*model.Article, error) {
	row := a.db.conn.QueryRowContext(ctx, articleSelect+` WHERE a.id = ?`, id)

	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Article")
		}
		return nil, fmt.Errorf("sqlite: getting article %s: %w", id, err)
	}
	return article, nil
}

// List returns articles newest first, optionally limited to one category.
//
// id is the tie-breaker: xids start with a timestamp and a process-wide
// counter, so two articles written in the same instant still come back in
// insertion order (reversed).
func (a *ArticleDB) List(ctx context.Context, filter repository.ArticleFilter) ([]model.Article, error) {
	query := articleSelect
	var args []any
	if filter.CategoryID != "" {
		query += ` WHERE a.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	query += ` ORDER BY a.created_at DESC, a.id DESC`

	rows, err := a.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing articles: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning article row: %w", err)
		}
		articles = append(articles, *article)
	}

	// rows.Err() catches errors that happened DURING iteration.
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating articles: %w", err)
	}
	return articles, nil
}

// Delete removes an article together with its comments.
//
// The comments table also declares ON DELETE CASCADE, but the explicit
// DELETE keeps the behaviour independent of the foreign_keys pragma. Both
// statements share one transaction: either the article and all of its
// comments are gone, or nothing changed.
func (a *ArticleDB) Delete(ctx context.Context, id string) error {
	return a.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM comments WHERE article_id = ?`, id,
		); err != nil {
			return fmt.Errorf("sqlite: deleting comments of article %s: %w", id, err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("sqlite: deleting article %s: %w", id, err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: checking rows affected: %w", err)
		}
		if rowsAffected == 0 {
			// Returning an error rolls the comment deletion back too.
			return apperror.NotFound("Article")
		}
		return nil
	})
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanArticle reads one row produced by articleSelect.
func scanArticle(row rowScanner) (*model.Article, error) {
	var (
		article     model.Article
		categoryID  sql.NullString
		authorName  string
		authorPhone string
	)
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.ImageURL,
		&article.AuthorID,
		&categoryID,
		&article.CreatedAt,
		&authorName,
		&authorPhone,
		&article.Category,
	); err != nil {
		return nil, err
	}

	if categoryID.Valid {
		article.CategoryID = &categoryID.String
	}
	article.AuthorName = model.DisplayName(authorName, authorPhone)
	return &article, nil
}
