package gormstore

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.SessionRepository = (*sessionRepo)(nil)

type sessionRepo struct {
	db *gorm.DB
}

// Replace deletes the user's sessions and stores the new one in a single
// transaction.
func (r *sessionRepo) Replace(ctx context.Context, session *model.Session) error {
	session.CreatedAt = r.db.NowFunc()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", session.UserID).Delete(&sessionRow{}).Error; err != nil {
			return fmt.Errorf("gormstore: deleting sessions of user %s: %w", session.UserID, err)
		}
		row := sessionRow{
			Token:     session.Token,
			UserID:    session.UserID,
			CreatedAt: session.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("gormstore: inserting session for user %s: %w", session.UserID, err)
		}
		return nil
	})
}

func (r *sessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var row sessionRow
	if err := r.db.WithContext(ctx).Where("token = ?", token).Take(&row).Error; err != nil {
		return nil, notFoundOr(err, "Session", "getting session")
	}
	return &model.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}

func (r *sessionRepo) Delete(ctx context.Context, token string) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).Delete(&sessionRow{}).Error; err != nil {
		return fmt.Errorf("gormstore: deleting session: %w", err)
	}
	return nil
}
