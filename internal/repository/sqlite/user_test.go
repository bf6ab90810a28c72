package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
)

// createTestUser is a test helper that creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, phone, role string) *model.User {
	t.Helper()
	user := &model.User{
		Name:     "user " + phone,
		Phone:    phone,
		Password: "$2a$04$placeholder",
		Role:     role,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate_DuplicatePhone(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "0911111111", model.RoleUser)

	duplicate := &model.User{Name: "second", Phone: "0911111111", Password: "x"}
	err := db.Users().Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should have returned an error for a duplicate phone")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_RoleCheckConstraint(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{Name: "x", Phone: "1", Password: "x", Role: "superuser"}
	if err := db.Users().Create(context.Background(), user); err == nil {
		t.Fatal("Create() should reject a role outside user/admin")
	}
}

// =========================================================================
// FIRST ADMIN TESTS
// =========================================================================

func TestUserFirstAdmin_IgnoresPlainUsers(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "1", model.RoleUser)

	_, err := db.Users().FirstAdmin(context.Background())
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("FirstAdmin() error = %v, want ErrNotFound", err)
	}

	promoted := createTestUser(t, db, "2", model.RoleUser)
	if err := db.Users().UpdateRole(context.Background(), promoted.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateRole() error = %v", err)
	}

	found, err := db.Users().FirstAdmin(context.Background())
	if err != nil {
		t.Fatalf("FirstAdmin() error = %v", err)
	}
	if found.ID != promoted.ID {
		t.Errorf("FirstAdmin().ID = %q, want %q", found.ID, promoted.ID)
	}
}

func TestUserUpdatePassword_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.Users().UpdatePassword(context.Background(), "nonexistent-id", "x")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdatePassword() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// COMMENT AUTHOR TESTS
// =========================================================================

// A comment keeps its stored author name when the author account goes away.
func TestCommentAuthorSetNullOnUserDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	author := createTestUser(t, db, "1", model.RoleUser)
	commenter := createTestUser(t, db, "2", model.RoleUser)

	article := &model.Article{Title: "t", Content: "c", AuthorID: author.ID}
	if err := db.Articles().Create(ctx, article); err != nil {
		t.Fatalf("creating article: %v", err)
	}
	comment := &model.Comment{
		ArticleID:  article.ID,
		Content:    "hello",
		AuthorID:   &commenter.ID,
		AuthorName: commenter.Name,
	}
	if err := db.Comments().Create(ctx, comment); err != nil {
		t.Fatalf("creating comment: %v", err)
	}

	if _, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, commenter.ID); err != nil {
		t.Fatalf("deleting commenter: %v", err)
	}

	comments, err := db.Comments().ListByArticle(ctx, article.ID)
	if err != nil {
		t.Fatalf("ListByArticle() error = %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("len(comments) = %d, want 1", len(comments))
	}
	if comments[0].AuthorID != nil {
		t.Errorf("AuthorID = %v, want nil", *comments[0].AuthorID)
	}
	if comments[0].AuthorName != commenter.Name {
		t.Errorf("AuthorName = %q, want %q", comments[0].AuthorName, commenter.Name)
	}
}
