package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

var _ repository.SessionRepository = (*SessionDB)(nil)

// SessionDB is the sessions-table view of DB.
type SessionDB struct {
	db *DB
}

// Replace makes session the only session of its user.
//
// Both statements run in one transaction: a concurrent request holding the
// old token either sees the old row or nothing, never two live sessions.
func (s *SessionDB) Replace(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now().UTC()

	return s.db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM sessions WHERE user_id = ?`, session.UserID,
		); err != nil {
			return fmt.Errorf("sqlite: deleting sessions of user %s: %w", session.UserID, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (token, user_id, created_at) VALUES (?, ?, ?)`,
			session.Token,
			session.UserID,
			session.CreatedAt,
		); err != nil {
			return fmt.Errorf("sqlite: inserting session for user %s: %w", session.UserID, err)
		}
		return nil
	})
}

// GetByToken resolves a bearer token. Primary-key lookup.
func (s *SessionDB) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT token, user_id, created_at FROM sessions WHERE token = ?`, token,
	).Scan(&session.Token, &session.UserID, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Session")
		}
		return nil, fmt.Errorf("sqlite: getting session: %w", err)
	}
	return &session, nil
}

// Delete removes a single session. Deleting an unknown token is not an error:
// the caller is signed out either way.
func (s *SessionDB) Delete(ctx context.Context, token string) error {
	if _, err := s.db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE token = ?`, token,
	); err != nil {
		return fmt.Errorf("sqlite: deleting session: %w", err)
	}
	return nil
}
