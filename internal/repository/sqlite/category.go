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

var _ repository.CategoryRepository = (*CategoryDB)(nil)

// CategoryDB is the categories-table view of DB.
type CategoryDB struct {
	db *DB
}

// Upsert inserts the category unless one with the same name exists, then
// reads the stored row back.
//
// ON CONFLICT(name) DO NOTHING keeps the original ID and created_at of an
// existing category; "INSERT OR REPLACE" would delete and re-insert it,
// breaking the articles that reference it.
func (c *CategoryDB) Upsert(ctx context.Context, name string) (*model.Category, error) {
	_, err := c.db.conn.ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		xid.New().String(),
		name,
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: upserting category %q: %w", name, err)
	}
	return c.GetByName(ctx, name)
}

// GetByName looks a category up by its unique name.
func (c *CategoryDB) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var cat model.Category
	err := c.db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE name = ?`, name,
	).Scan(&cat.ID, &cat.Name, &cat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Category")
		}
		return nil, fmt.Errorf("sqlite: getting category %q: %w", name, err)
	}
	return &cat, nil
}

// List returns every category, alphabetical.
func (c *CategoryDB) List(ctx context.Context) ([]model.Category, error) {
	rows, err := c.db.conn.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning category row: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating categories: %w", err)
	}
	return categories, nil
}
