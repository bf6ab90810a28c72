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

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	db *gorm.DB
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	row := userRow{
		ID:        xid.New().String(),
		Name:      user.Name,
		Phone:     user.Phone,
		Password:  user.Password,
		Role:      user.Role,
		CreatedAt: r.db.NowFunc(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return apperror.Conflict("phone already registered")
		}
		return fmt.Errorf("gormstore: inserting user: %w", err)
	}

	user.ID = row.ID
	user.CreatedAt = row.CreatedAt
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "User", "getting user "+id)
	}
	return row.toModel(), nil
}

func (r *userRepo) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "User", "getting user by phone")
	}
	return row.toModel(), nil
}

func (r *userRepo) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("gormstore: counting users: %w", err)
	}
	return int(n), nil
}

func (r *userRepo) FirstAdmin(ctx context.Context) (*model.User, error) {
	var row userRow
	err := r.db.WithContext(ctx).
		Where("role = ?", model.RoleAdmin).
		Order("created_at ASC").
		Order("id ASC").
		Take(&row).Error
	if err != nil {
		return nil, notFoundOr(err, "User", "getting first admin")
	}
	return row.toModel(), nil
}

func (r *userRepo) UpdateRole(ctx context.Context, id, role string) error {
	return r.update(ctx, id, "role", role)
}

func (r *userRepo) UpdatePassword(ctx context.Context, id, password string) error {
	return r.update(ctx, id, "password", password)
}

// update sets one column. MySQL reports zero affected rows when the value is
// unchanged, so a zero count is confirmed with an existence check before it
// becomes NotFound.
func (r *userRepo) update(ctx context.Context, id, column, value string) error {
	result := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("gormstore: updating user %s: %w", id, result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("gormstore: checking user %s: %w", id, err)
	}
	if n == 0 {
		return apperror.NotFound("User")
	}
	return nil
}

func (row userRow) toModel() *model.User {
	return &model.User{
		ID:        row.ID,
		Name:      row.Name,
		Phone:     row.Phone,
		Password:  row.Password,
		Role:      row.Role,
		CreatedAt: row.CreatedAt.UTC(),
	}
}
