package db

import "time"

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Category groups blog posts.
type Category struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:100;not null"`
	Slug  string `gorm:"size:100;uniqueIndex;not null"`
	Posts []Post
}

// Post is a blog article written in markdown.
type Post struct {
	ID          uint      `gorm:"primaryKey"`
	Title       string    `gorm:"size:200;not null"`
	Slug        string    `gorm:"size:200;uniqueIndex;not null"`
	Excerpt     string    `gorm:"size:300"`
	Content     string    `gorm:"type:text"`
	Status      string    `gorm:"size:20;index;not null"`
	PublishDate time.Time `gorm:"index"`
	CategoryID  *uint     `gorm:"index"`
	Category    *Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsPublished reports whether the post is visible at the given instant.
func (p Post) IsPublished(now time.Time) bool {
	return p.Status == PostStatusPublished && !p.PublishDate.After(now)
}
