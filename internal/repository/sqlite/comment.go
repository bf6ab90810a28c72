package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.CommentRepository = (*CommentDB)(nil)

// CommentDB is the comments-table view of DB.
type CommentDB struct {
	db *DB
}

// Create inserts a comment. article_id REFERENCES articles(id), so a comment
// on a missing article is rejected by SQLite as well as by the service.
func (c *CommentDB) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now().UTC()

	_, err := c.db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, article_id, content, author_id, author_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.ArticleID,
		comment.Content,
		comment.AuthorID, // nil for guests → NULL
		comment.AuthorName,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment on article %s: %w", comment.ArticleID, err)
	}
	return nil
}

// ListByArticle returns the comments of one article, oldest first.
func (c *CommentDB) ListByArticle(ctx context.Context, articleID string) ([]model.Comment, error) {
	rows, err := c.db.conn.QueryContext(ctx,
		`SELECT id, article_id, content, author_id, author_name, created_at
		 FROM comments
		 WHERE article_id = ?
		 ORDER BY created_at ASC, id ASC`,
		articleID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of article %s: %w", articleID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var (
			comment  model.Comment
			authorID sql.NullString
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.ArticleID,
			&comment.Content,
			&authorID,
			&comment.AuthorName,
			&comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		if authorID.Valid {
			comment.AuthorID = &authorID.String
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

// Delete removes one comment, NotFound when the id matches nothing.
func (c *CommentDB) Delete(ctx context.Context, id string) error {
	result, err := c.db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Comment")
	}
	return nil
}
