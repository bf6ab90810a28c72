// Package repotest is the behavioural contract every repository.Store must
// satisfy. Backends call Run from their own _test.go files:
//
//	func TestStoreContract(t *testing.T) {
//	    repotest.Run(t, func(t *testing.T) repository.Store { return newTestDB(t) })
//	}
//
// Each subtest gets a fresh, empty store from the factory.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

// Factory returns an empty store. It should register its own cleanup.
type Factory func(t *testing.T) repository.Store

// Run executes the whole contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore) })
	t.Run("sessions", func(t *testing.T) { testSessions(t, newStore) })
	t.Run("categories", func(t *testing.T) { testCategories(t, newStore) })
	t.Run("articles", func(t *testing.T) { testArticles(t, newStore) })
	t.Run("comments", func(t *testing.T) { testComments(t, newStore) })
	t.Run("ping", func(t *testing.T) {
		require.NoError(t, newStore(t).Ping(context.Background()))
	})
}

// CreateUser inserts a user and fails the test on error.
func CreateUser(t *testing.T, store repository.Store, name, phone, role string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Phone: phone, Password: "hash-" + phone, Role: role}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

// CreateArticle inserts an article by author, optionally in a category.
func CreateArticle(t *testing.T, store repository.Store, author *model.User, title string, category *model.Category) *model.Article {
	t.Helper()
	article := &model.Article{
		Title:    title,
		Content:  "content of " + title,
		AuthorID: author.ID,
	}
	if category != nil {
		article.CategoryID = &category.ID
	}
	require.NoError(t, store.Articles().Create(context.Background(), article))
	return article
}

// CreateComment inserts a comment; author may be nil for a guest.
func CreateComment(t *testing.T, store repository.Store, article *model.Article, author *model.User, content string) *model.Comment {
	t.Helper()
	comment := &model.Comment{ArticleID: article.ID, Content: content, AuthorName: "Guest"}
	if author != nil {
		comment.AuthorID = &author.ID
		comment.AuthorName = author.DisplayName()
	}
	require.NoError(t, store.Comments().Create(context.Background(), comment))
	return comment
}

func testUsers(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create assigns id and timestamp", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Amy", "0911111111", model.RoleAdmin)

		assert.NotEmpty(t, user.ID)
		assert.False(t, user.CreatedAt.IsZero())

		found, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Amy", found.Name)
		assert.Equal(t, "0911111111", found.Phone)
		assert.Equal(t, "hash-0911111111", found.Password)
		assert.Equal(t, model.RoleAdmin, found.Role)
	})

	t.Run("empty role defaults to user", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Bob", "0922222222", "")

		found, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleUser, found.Role)
	})

	t.Run("duplicate phone is a conflict", func(t *testing.T) {
		store := newStore(t)
		CreateUser(t, store, "Amy", "0911111111", model.RoleUser)

		err := store.Users().Create(ctx, &model.User{Name: "Other", Phone: "0911111111", Password: "x"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})

	t.Run("get by phone", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Amy", "0911111111", model.RoleUser)

		found, err := store.Users().GetByPhone(ctx, "0911111111")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)

		_, err = store.Users().GetByPhone(ctx, "0000000000")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("get by id not found", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Users().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		store := newStore(t)
		n, err := store.Users().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		CreateUser(t, store, "Amy", "1", model.RoleUser)
		CreateUser(t, store, "Bob", "2", model.RoleUser)

		n, err = store.Users().Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("first admin", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Users().FirstAdmin(ctx)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		CreateUser(t, store, "Plain", "1", model.RoleUser)
		first := CreateUser(t, store, "First", "2", model.RoleAdmin)
		CreateUser(t, store, "Second", "3", model.RoleAdmin)

		found, err := store.Users().FirstAdmin(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)
	})

	t.Run("update role", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Bob", "2", model.RoleUser)

		require.NoError(t, store.Users().UpdateRole(ctx, user.ID, model.RoleAdmin))

		found, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, found.Role)

		err = store.Users().UpdateRole(ctx, "missing", model.RoleAdmin)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("update password", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Bob", "2", model.RoleUser)

		require.NoError(t, store.Users().UpdatePassword(ctx, user.ID, "new-hash"))

		found, err := store.Users().GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", found.Password)
	})
}

func testSessions(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("replace then resolve", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Amy", "1", model.RoleUser)

		session := &model.Session{Token: "tok-1", UserID: user.ID}
		require.NoError(t, store.Sessions().Replace(ctx, session))
		assert.False(t, session.CreatedAt.IsZero())

		found, err := store.Sessions().GetByToken(ctx, "tok-1")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.UserID)
	})

	t.Run("replace invalidates the previous token", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Amy", "1", model.RoleUser)
		other := CreateUser(t, store, "Bob", "2", model.RoleUser)

		require.NoError(t, store.Sessions().Replace(ctx, &model.Session{Token: "first", UserID: user.ID}))
		require.NoError(t, store.Sessions().Replace(ctx, &model.Session{Token: "bob", UserID: other.ID}))
		require.NoError(t, store.Sessions().Replace(ctx, &model.Session{Token: "second", UserID: user.ID}))

		_, err := store.Sessions().GetByToken(ctx, "first")
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		_, err = store.Sessions().GetByToken(ctx, "second")
		assert.NoError(t, err)

		// Another user's session is untouched.
		_, err = store.Sessions().GetByToken(ctx, "bob")
		assert.NoError(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		user := CreateUser(t, store, "Amy", "1", model.RoleUser)
		require.NoError(t, store.Sessions().Replace(ctx, &model.Session{Token: "tok", UserID: user.ID}))

		require.NoError(t, store.Sessions().Delete(ctx, "tok"))
		_, err := store.Sessions().GetByToken(ctx, "tok")
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		// Unknown tokens are not an error.
		assert.NoError(t, store.Sessions().Delete(ctx, "never-existed"))
	})
}

func testCategories(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("upsert is idempotent", func(t *testing.T) {
		store := newStore(t)

		first, err := store.Categories().Upsert(ctx, "Tech")
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)

		second, err := store.Categories().Upsert(ctx, "Tech")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		all, err := store.Categories().List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("list is alphabetical", func(t *testing.T) {
		store := newStore(t)
		for _, name := range []string{"Travel", "Art", "Music"} {
			_, err := store.Categories().Upsert(ctx, name)
			require.NoError(t, err)
		}

		all, err := store.Categories().List(ctx)
		require.NoError(t, err)

		names := make([]string, 0, len(all))
		for _, c := range all {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Art", "Music", "Travel"}, names)
	})

	t.Run("list on empty store is an empty slice", func(t *testing.T) {
		all, err := newStore(t).Categories().List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("get by name not found", func(t *testing.T) {
		_, err := newStore(t).Categories().GetByName(ctx, "Nope")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func testArticles(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("get joins author and category", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "Amy", "0911111111", model.RoleUser)
		tech, err := store.Categories().Upsert(ctx, "Tech")
		require.NoError(t, err)

		created := CreateArticle(t, store, author, "Hello", tech)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())

		found, err := store.Articles().GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hello", found.Title)
		assert.Equal(t, "content of Hello", found.Content)
		assert.Equal(t, author.ID, found.AuthorID)
		assert.Equal(t, "Amy", found.AuthorName)
		assert.Equal(t, "Tech", found.Category)
		require.NotNil(t, found.CategoryID)
		assert.Equal(t, tech.ID, *found.CategoryID)
	})

	t.Run("uncategorized article", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "", "0933333333", model.RoleUser)
		created := CreateArticle(t, store, author, "Loose", nil)

		found, err := store.Articles().GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, found.CategoryID)
		assert.Equal(t, "", found.Category)
		// No name: the phone is shown instead.
		assert.Equal(t, "0933333333", found.AuthorName)
	})

	t.Run("get not found", func(t *testing.T) {
		_, err := newStore(t).Articles().GetByID(ctx, "missing")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("list newest first with category filter", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "Amy", "1", model.RoleUser)
		tech, err := store.Categories().Upsert(ctx, "Tech")
		require.NoError(t, err)

		first := CreateArticle(t, store, author, "first", tech)
		second := CreateArticle(t, store, author, "second", nil)
		third := CreateArticle(t, store, author, "third", tech)

		all, err := store.Articles().List(ctx, repository.ArticleFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, articleIDs(all))

		filtered, err := store.Articles().List(ctx, repository.ArticleFilter{CategoryID: tech.ID})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, first.ID}, articleIDs(filtered))
		for _, a := range filtered {
			assert.Equal(t, "Tech", a.Category)
			assert.Equal(t, "Amy", a.AuthorName)
		}
	})

	t.Run("list on empty store is an empty slice", func(t *testing.T) {
		all, err := newStore(t).Articles().List(ctx, repository.ArticleFilter{})
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})

	t.Run("delete removes the article and only its comments", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "Amy", "1", model.RoleUser)
		doomed := CreateArticle(t, store, author, "doomed", nil)
		kept := CreateArticle(t, store, author, "kept", nil)

		CreateComment(t, store, doomed, author, "one")
		CreateComment(t, store, doomed, nil, "two")
		survivor := CreateComment(t, store, kept, nil, "three")

		require.NoError(t, store.Articles().Delete(ctx, doomed.ID))

		_, err := store.Articles().GetByID(ctx, doomed.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)

		orphans, err := store.Comments().ListByArticle(ctx, doomed.ID)
		require.NoError(t, err)
		assert.Empty(t, orphans)

		remaining, err := store.Comments().ListByArticle(ctx, kept.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, survivor.ID, remaining[0].ID)
	})

	t.Run("delete not found", func(t *testing.T) {
		err := newStore(t).Articles().Delete(ctx, "missing")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func testComments(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create and list oldest first", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "Amy", "1", model.RoleUser)
		article := CreateArticle(t, store, author, "post", nil)

		first := CreateComment(t, store, article, author, "first")
		second := CreateComment(t, store, article, nil, "second")

		comments, err := store.Comments().ListByArticle(ctx, article.ID)
		require.NoError(t, err)
		require.Len(t, comments, 2)

		assert.Equal(t, first.ID, comments[0].ID)
		assert.Equal(t, article.ID, comments[0].ArticleID)
		assert.Equal(t, "first", comments[0].Content)
		assert.Equal(t, "Amy", comments[0].AuthorName)
		require.NotNil(t, comments[0].AuthorID)
		assert.Equal(t, author.ID, *comments[0].AuthorID)

		assert.Equal(t, second.ID, comments[1].ID)
		assert.Nil(t, comments[1].AuthorID)
		assert.Equal(t, "Guest", comments[1].AuthorName)
	})

	t.Run("list of article without comments is an empty slice", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "Amy", "1", model.RoleUser)
		article := CreateArticle(t, store, author, "quiet", nil)

		comments, err := store.Comments().ListByArticle(ctx, article.ID)
		require.NoError(t, err)
		assert.NotNil(t, comments)
		assert.Empty(t, comments)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		author := CreateUser(t, store, "Amy", "1", model.RoleUser)
		article := CreateArticle(t, store, author, "post", nil)
		comment := CreateComment(t, store, article, nil, "bye")

		require.NoError(t, store.Comments().Delete(ctx, comment.ID))

		comments, err := store.Comments().ListByArticle(ctx, article.ID)
		require.NoError(t, err)
		assert.Empty(t, comments)

		err = store.Comments().Delete(ctx, comment.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func articleIDs(articles []model.Article) []string {
	ids := make([]string, 0, len(articles))
	for _, a := range articles {
		ids = append(ids, a.ID)
	}
	return ids
}
