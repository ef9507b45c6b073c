package models

import "time"

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

type Post struct {
	ID            string     `json:"id" db:"id"`
	AuthorID      string     `json:"author_id" db:"author_id"`
	Title         string     `json:"title" db:"title"`
	Slug          string     `json:"slug" db:"slug"`
	Content       string     `json:"content" db:"content"`
	Excerpt       *string    `json:"excerpt,omitempty" db:"excerpt"`
	FeaturedImage *string    `json:"featured_image,omitempty" db:"featured_image"`
	Tags          []string   `json:"tags" db:"tags"`
	Status        string     `json:"status" db:"status"`
	PublishedAt   *time.Time `json:"published_at,omitempty" db:"published_at"`
	Views         int        `json:"views" db:"views"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type PostFilters struct {
	Status   string
	Tag      string
	Search   string
	Page     int
	PageSize int
}
