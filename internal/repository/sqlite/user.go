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

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users-table view of DB.
type UserDB struct {
	db *DB
}

const userColumns = `id, name, phone, password, role, created_at`

// Create inserts a new user. The phone column is UNIQUE, so a second account
// with the same phone fails inside SQLite and is reported as a Conflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	if user.Role == "" {
		user.Role = model.RoleUser
	}

	_, err := u.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, phone, password, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Phone,
		user.Password,
		user.Role,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("phone already registered")
		}
		return fmt.Errorf("sqlite: inserting user (phone=%s): %w", user.Phone, err)
	}
	return nil
}

// GetByID retrieves a user by their internal ID.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row, "getting user "+id)
}

// GetByPhone retrieves a user by the phone they sign in with.
func (u *UserDB) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	row := u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)
	return scanUser(row, "getting user by phone")
}

// Count returns the number of registered users. Zero means the next account
// is the bootstrap admin.
func (u *UserDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := u.db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlite: counting users: %w", err)
	}
	return n, nil
}

// FirstAdmin returns the oldest admin account.
func (u *UserDB) FirstAdmin(ctx context.Context) (*model.User, error) {
	row := u.db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role = ?
		 ORDER BY created_at ASC, id ASC
		 LIMIT 1`,
		model.RoleAdmin,
	)
	return scanUser(row, "getting first admin")
}

// UpdateRole sets the role of an existing user.
func (u *UserDB) UpdateRole(ctx context.Context, id, role string) error {
	return u.update(ctx, id, `UPDATE users SET role = ? WHERE id = ?`, role)
}

// UpdatePassword replaces the stored password (hash) of an existing user.
func (u *UserDB) UpdatePassword(ctx context.Context, id, password string) error {
	return u.update(ctx, id, `UPDATE users SET password = ? WHERE id = ?`, password)
}

// update runs a single-column UPDATE and reports NotFound when no row matched.
func (u *UserDB) update(ctx context.Context, id, query, value string) error {
	result, err := u.db.conn.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("User")
	}
	return nil
}

// scanUser reads one users row. The column order must match userColumns.
func scanUser(row *sql.Row, op string) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Password,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}
	return &user, nil
}
