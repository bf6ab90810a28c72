package gormstore

import (
	"context"
	"fmt"

	"github.com/rs/xid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.CategoryRepository = (*categoryRepo)(nil)

type categoryRepo struct {
	db *gorm.DB
}

// Upsert inserts name unless it already exists, then returns the stored row.
// DoNothing keeps the ID of an existing category stable.
func (r *categoryRepo) Upsert(ctx context.Context, name string) (*model.Category, error) {
	row := categoryRow{
		ID:        xid.New().String(),
		Name:      name,
		CreatedAt: r.db.NowFunc(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("gormstore: upserting category %q: %w", name, err)
	}
	return r.GetByName(ctx, name)
}

func (r *categoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	var row categoryRow
	if err := r.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "Category", fmt.Sprintf("getting category %q", name))
	}
	return row.toModel(), nil
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gormstore: listing categories: %w", err)
	}

	categories := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, *row.toModel())
	}
	return categories, nil
}

func (row categoryRow) toModel() *model.Category {
	return &model.Category{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt.UTC()}
}
