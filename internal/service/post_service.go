package service

import (
	"errors"
	"strings"
	"time"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound      = errors.New("post not found")
	ErrPostTitleMissing  = errors.New("post title is required")
	ErrPostSlugInvalid   = errors.New("post slug is invalid")
	ErrPostSlugExists    = errors.New("post slug already exists")
	ErrPostStatusInvalid = errors.New("post status is invalid")
	ErrCategoryNotFound  = errors.New("category not found")
)

// SuggestionCategorySlug is the category whose posts are offered on 404 pages.
const SuggestionCategorySlug = "reflections"

// PostService wraps blog related database operations.
type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.Post
	Category   *db.Category
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string
	Status      string
	PublishDate *time.Time
	CategoryID  *uint
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb, now: time.Now}
}

// published restricts a query to posts visible right now.
func (s *PostService) published() *gorm.DB {
	return s.db.Model(&db.Post{}).
		Where("posts.status = ? AND posts.publish_date <= ?", db.PostStatusPublished, s.now())
}

// ListPublished returns a page of visible posts, optionally within a category.
func (s *PostService) ListPublished(page, perPage int, categorySlug string) (*PostListResult, error) {
	result := &PostListResult{
		Page:    normalizePage(page),
		PerPage: normalizePerPage(perPage, 10),
	}

	query := s.published()
	if slug := strings.TrimSpace(categorySlug); slug != "" {
		var category db.Category
		if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		result.Category = &category
		query = query.Where("posts.category_id = ?", category.ID)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	offset := (result.Page - 1) * result.PerPage
	if err := query.Preload("Category").
		Order("posts.publish_date desc").Order("posts.id desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Posts).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// GetPublishedBySlug returns a visible post.
func (s *PostService) GetPublishedBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.published().Preload("Category").
		Where("posts.slug = ?", strings.TrimSpace(slug)).
		First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Latest returns the newest visible posts.
func (s *PostService) Latest(limit int) ([]db.Post, error) {
	var posts []db.Post
	err := s.published().Preload("Category").
		Order("posts.publish_date desc").Order("posts.id desc").
		Limit(normalizePerPage(limit, 3)).
		Find(&posts).Error
	return posts, err
}

// Categories returns every blog category ordered by name.
func (s *PostService) Categories() ([]db.Category, error) {
	var categories []db.Category
	err := s.db.Order("name asc").Find(&categories).Error
	return categories, err
}

// Suggestions returns the posts offered on not-found pages: up to four from
// the reflections category when it exists, otherwise the six latest.
func (s *PostService) Suggestions() ([]db.Post, *db.Category, error) {
	var category db.Category
	err := s.db.Where("slug = ?", SuggestionCategorySlug).First(&category).Error
	switch {
	case err == nil:
		var posts []db.Post
		err := s.published().
			Where("posts.category_id = ?", category.ID).
			Order("posts.publish_date desc").Order("posts.id desc").
			Limit(4).
			Find(&posts).Error
		return posts, &category, err
	case errors.Is(err, gorm.ErrRecordNotFound):
		posts, err := s.Latest(6)
		return posts, nil, err
	default:
		return nil, nil, err
	}
}

// Get fetches a post by id regardless of status.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.Preload("Category").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a new post.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	post := db.Post{}
	if err := s.applyInput(&post, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&post).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPostSlugExists
		}
		return nil, err
	}
	return &post, nil
}

// Update modifies an existing post.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	post.Category = nil
	if err := s.applyInput(post, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(post).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPostSlugExists
		}
		return nil, err
	}
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(id uint) error {
	result := s.db.Delete(&db.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *PostService) applyInput(post *db.Post, input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrPostTitleMissing
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !slugPattern.MatchString(slug) {
		return ErrPostSlugInvalid
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = db.PostStatusDraft
	}
	if status != db.PostStatusDraft && status != db.PostStatusPublished {
		return ErrPostStatusInvalid
	}

	if input.CategoryID != nil {
		var count int64
		if err := s.db.Model(&db.Category{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCategoryNotFound
		}
	}

	post.Title = title
	post.Slug = slug
	post.Excerpt = strings.TrimSpace(input.Excerpt)
	post.Content = input.Content
	post.Status = status
	post.CategoryID = input.CategoryID
	switch {
	case input.PublishDate != nil:
		post.PublishDate = *input.PublishDate
	case post.PublishDate.IsZero():
		post.PublishDate = s.now()
	}
	return nil
}
