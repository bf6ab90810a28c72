package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/article-hub/internal/apperror"
	"github.com/sakif/article-hub/internal/model"
	"github.com/sakif/article-hub/internal/repository"
)

// =========================================================================
// FAKE STORE
// =========================================================================
//
// fakeStore is an in-memory repository.Store for service tests. It keeps the
// same error contract as the real backends (NotFound / Conflict) so the
// services can be tested without a database.
//
// failWith, when set, makes every repository call return that error, to
// simulate a broken database.

type fakeStore struct {
	mu sync.Mutex

	users      map[string]model.User
	sessions   map[string]model.Session
	categories map[string]model.Category
	articles   map[string]model.Article
	comments   map[string]model.Comment

	nextID   int
	clock    time.Time
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]model.User{},
		sessions:   map[string]model.Session{},
		categories: map[string]model.Category{},
		articles:   map[string]model.Article{},
		comments:   map[string]model.Comment{},
		clock:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// next returns a fresh id and a strictly increasing timestamp.
func (f *fakeStore) next(prefix string) (string, time.Time) {
	f.nextID++
	f.clock = f.clock.Add(time.Second)
	return fmt.Sprintf("%s-%d", prefix, f.nextID), f.clock
}

func (f *fakeStore) Users() repository.UserRepository           { return fakeUsers{f} }
func (f *fakeStore) Sessions() repository.SessionRepository     { return fakeSessions{f} }
func (f *fakeStore) Categories() repository.CategoryRepository { return fakeCategories{f} }
func (f *fakeStore) Articles() repository.ArticleRepository     { return fakeArticles{f} }
func (f *fakeStore) Comments() repository.CommentRepository     { return fakeComments{f} }
func (f *fakeStore) Ping(context.Context) error                 { return f.failWith }
func (f *fakeStore) Close() error                               { return nil }

// --- users ---

type fakeUsers struct{ f *fakeStore }

func (r fakeUsers) Create(_ context.Context, user *model.User) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, u := range f.users {
		if u.Phone == user.Phone {
			return apperror.Conflict("phone already registered")
		}
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.ID, user.CreatedAt = f.next("user")
	f.users[user.ID] = *user
	return nil
}

func (r fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User")
	}
	return &u, nil
}

func (r fakeUsers) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Phone == phone {
			return &u, nil
		}
	}
	return nil, apperror.NotFound("User")
}

func (r fakeUsers) Count(context.Context) (int, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return 0, f.failWith
	}
	return len(f.users), nil
}

func (r fakeUsers) FirstAdmin(context.Context) (*model.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	var first *model.User
	for _, u := range f.users {
		if u.Role != model.RoleAdmin {
			continue
		}
		if first == nil || u.CreatedAt.Before(first.CreatedAt) {
			u := u
			first = &u
		}
	}
	if first == nil {
		return nil, apperror.NotFound("User")
	}
	return first, nil
}

func (r fakeUsers) UpdateRole(_ context.Context, id, role string) error {
	return r.update(id, func(u *model.User) { u.Role = role })
}

func (r fakeUsers) UpdatePassword(_ context.Context, id, password string) error {
	return r.update(id, func(u *model.User) { u.Password = password })
}

func (r fakeUsers) update(id string, apply func(*model.User)) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("User")
	}
	apply(&u)
	f.users[id] = u
	return nil
}

// --- sessions ---

type fakeSessions struct{ f *fakeStore }

func (r fakeSessions) Replace(_ context.Context, session *model.Session) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for token, s := range f.sessions {
		if s.UserID == session.UserID {
			delete(f.sessions, token)
		}
	}
	_, session.CreatedAt = f.next("session")
	f.sessions[session.Token] = *session
	return nil
}

func (r fakeSessions) GetByToken(_ context.Context, token string) (*model.Session, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, apperror.NotFound("Session")
	}
	return &s, nil
}

func (r fakeSessions) Delete(_ context.Context, token string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.sessions, token)
	return nil
}

// --- categories ---

type fakeCategories struct{ f *fakeStore }

func (r fakeCategories) Upsert(_ context.Context, name string) (*model.Category, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if c, ok := f.categories[name]; ok {
		return &c, nil
	}
	c := model.Category{Name: name}
	c.ID, c.CreatedAt = f.next("cat")
	f.categories[name] = c
	return &c, nil
}

func (r fakeCategories) GetByName(_ context.Context, name string) (*model.Category, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.categories[name]
	if !ok {
		return nil, apperror.NotFound("Category")
	}
	return &c, nil
}

func (r fakeCategories) List(context.Context) ([]model.Category, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- articles ---

type fakeArticles struct{ f *fakeStore }

func (r fakeArticles) Create(_ context.Context, article *model.Article) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	article.ID, article.CreatedAt = f.next("article")
	f.articles[article.ID] = *article
	return nil
}

// view fills the joined fields the way the SQL backends do.
func (f *fakeStore) view(a model.Article) model.Article {
	author := f.users[a.AuthorID]
	a.AuthorName = model.DisplayName(author.Name, author.Phone)
	a.Category = ""
	if a.CategoryID != nil {
		for _, c := range f.categories {
			if c.ID == *a.CategoryID {
				a.Category = c.Name
			}
		}
	}
	return a
}

func (r fakeArticles) GetByID(_ context.Context, id string) (*model.Article, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	a, ok := f.articles[id]
	if !ok {
		return nil, apperror.NotFound("Article")
	}
	a = f.view(a)
	return &a, nil
}

func (r fakeArticles) List(_ context.Context, filter repository.ArticleFilter) ([]model.Article, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Article{}
	for _, a := range f.articles {
		if filter.CategoryID != "" && (a.CategoryID == nil || *a.CategoryID != filter.CategoryID) {
			continue
		}
		out = append(out, f.view(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeArticles) Delete(_ context.Context, id string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.articles[id]; !ok {
		return apperror.NotFound("Article")
	}
	for cid, c := range f.comments {
		if c.ArticleID == id {
			delete(f.comments, cid)
		}
	}
	delete(f.articles, id)
	return nil
}

// --- comments ---

type fakeComments struct{ f *fakeStore }

func (r fakeComments) Create(_ context.Context, comment *model.Comment) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	comment.ID, comment.CreatedAt = f.next("comment")
	f.comments[comment.ID] = *comment
	return nil
}

func (r fakeComments) ListByArticle(_ context.Context, articleID string) ([]model.Comment, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.ArticleID == articleID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r fakeComments) Delete(_ context.Context, id string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.comments[id]; !ok {
		return apperror.NotFound("Comment")
	}
	delete(f.comments, id)
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// seedUser stores a user directly, bypassing the services.
func seedUser(store *fakeStore, name, phone, role string) *model.User {
	user := &model.User{Name: name, Phone: phone, Password: "irrelevant", Role: role}
	if err := store.Users().Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}
