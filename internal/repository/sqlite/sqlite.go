// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code: no C compiler needed.
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB     : a connection pool (NOT a single connection!)
//   - sql.Tx     : a transaction
//   - sql.Row    : a single result row
//   - sql.Rows   : multiple result rows (must be closed!)
//
// LAYOUT:
// DB owns the pool and the schema. Each aggregate has a small typed view
// (UserDB, SessionDB, ...) returned by DB.Users(), DB.Sessions(), ... so the
// method names can stay short (Create, GetByID) without colliding.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// BLANK IMPORT:
	// The sqlite package's init() registers a database/sql driver named
	// "sqlite". After this import, sql.Open("sqlite", ...) works.
	_ "modernc.org/sqlite"

	"github.com/sakif/article-hub/internal/repository"
)

// compile-time check that *DB is a complete storage backend
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out the per-aggregate
// repositories.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/articles.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite has a single writer. One pooled connection serialises writers
	// inside the process instead of surfacing SQLITE_BUSY, and keeps an
	// in-memory database alive across queries (every new connection to
	// ":memory:" would otherwise see an empty database).
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL (Write-Ahead Logging) lets readers proceed while a write is in
	// progress. In-memory databases report "memory" and ignore it.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards compatibility).
	// Sessions, articles and comments all reference other rows.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the database still answers. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

func (db *DB) Users() repository.UserRepository           { return &UserDB{db: db} }
func (db *DB) Sessions() repository.SessionRepository     { return &SessionDB{db: db} }
func (db *DB) Categories() repository.CategoryRepository { return &CategoryDB{db: db} }
func (db *DB) Articles() repository.ArticleRepository     { return &ArticleDB{db: db} }
func (db *DB) Comments() repository.CommentRepository     { return &CommentDB{db: db} }

// migrate runs all database migrations.
//
// CREATE TABLE IF NOT EXISTS is idempotent, so this runs on every start.
// Tables are created parents first so the REFERENCES clauses resolve.
func (db *DB) migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id         TEXT PRIMARY KEY,
				phone      TEXT NOT NULL UNIQUE,
				name       TEXT NOT NULL,
				password   TEXT NOT NULL,
				role       TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		// token is the PRIMARY KEY: resolving a bearer token is a point lookup.
		{"sessions", `
			CREATE TABLE IF NOT EXISTS sessions (
				token      TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);`},
		{"categories", `
			CREATE TABLE IF NOT EXISTS categories (
				id         TEXT PRIMARY KEY,
				name       TEXT NOT NULL UNIQUE,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"articles", `
			CREATE TABLE IF NOT EXISTS articles (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				content     TEXT NOT NULL,
				image_url   TEXT NOT NULL DEFAULT '',
				author_id   TEXT NOT NULL REFERENCES users(id),
				category_id TEXT REFERENCES categories(id),
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);
			CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id);`},
		{"comments", `
			CREATE TABLE IF NOT EXISTS comments (
				id          TEXT PRIMARY KEY,
				article_id  TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
				content     TEXT NOT NULL,
				author_id   TEXT REFERENCES users(id) ON DELETE SET NULL,
				author_name TEXT NOT NULL,
				created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id);`},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on error. Rollback after a successful Commit is a no-op.
func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// isUniqueViolation recognises SQLite's "UNIQUE constraint failed: t.col".
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
