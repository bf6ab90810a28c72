package model

import "time"

// Category groups articles. Names are UNIQUE; categories are never deleted.
type Category struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Article is a published post.
//
// AuthorName and Category are not columns of the articles table: the
// repository fills them from the joined users and categories rows so the API
// can return them without a second round trip. CategoryID is nil for
// uncategorized articles and is not part of the JSON shape the client knows.
type Article struct {
	ID         string    `json:"id"         db:"id"`
	Title      string    `json:"title"      db:"title"`
	Content    string    `json:"content"    db:"content"`
	ImageURL   string    `json:"imageUrl"   db:"image_url"`
	AuthorID   string    `json:"authorId"   db:"author_id"`
	AuthorName string    `json:"authorName"`
	CategoryID *string   `json:"-"          db:"category_id"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// Comment belongs to exactly one article.
//
// AuthorID is nil for guest comments; AuthorName is stored denormalized so a
// guest-chosen name survives without a users row.
type Comment struct {
	ID         string    `json:"id"         db:"id"`
	ArticleID  string    `json:"articleId"  db:"article_id"`
	Content    string    `json:"content"    db:"content"`
	AuthorID   *string   `json:"authorId"   db:"author_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}
