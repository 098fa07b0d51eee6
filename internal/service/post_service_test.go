package service

import (
	"errors"
	"testing"
	"time"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
)

func seedPost(t *testing.T, gdb *gorm.DB, slug, status string, publish time.Time, categoryID *uint) db.Post {
	t.Helper()
	post := db.Post{Title: slug, Slug: slug, Status: status, PublishDate: publish, CategoryID: categoryID}
	if err := gdb.Create(&post).Error; err != nil {
		t.Fatalf("failed to seed post %s: %v", slug, err)
	}
	return post
}

func TestListPublishedHidesDraftsAndFuturePosts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seedPost(t, gdb, "old", db.PostStatusPublished, now.Add(-48*time.Hour), nil)
	seedPost(t, gdb, "new", db.PostStatusPublished, now.Add(-time.Hour), nil)
	seedPost(t, gdb, "draft", db.PostStatusDraft, now.Add(-time.Hour), nil)
	seedPost(t, gdb, "scheduled", db.PostStatusPublished, now.Add(time.Hour), nil)

	svc := NewPostService(gdb)
	svc.now = func() time.Time { return now }

	result, err := svc.ListPublished(1, 10, "")
	if err != nil {
		t.Fatalf("ListPublished returned error: %v", err)
	}
	if result.Total != 2 || len(result.Posts) != 2 {
		t.Fatalf("expected 2 visible posts, got %d", result.Total)
	}
	if result.Posts[0].Slug != "new" || result.Posts[1].Slug != "old" {
		t.Fatalf("expected newest first, got %s, %s", result.Posts[0].Slug, result.Posts[1].Slug)
	}

	if _, err := svc.GetPublishedBySlug("scheduled"); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected scheduled post to be hidden, got %v", err)
	}
}

func TestListPublishedByCategory(t *testing.T) {
	gdb := setupServiceTestDB(t)
	category := db.Category{Name: "News", Slug: "news"}
	gdb.Create(&category)

	past := time.Now().Add(-time.Hour)
	seedPost(t, gdb, "in-news", db.PostStatusPublished, past, &category.ID)
	seedPost(t, gdb, "elsewhere", db.PostStatusPublished, past, nil)

	svc := NewPostService(gdb)
	result, err := svc.ListPublished(1, 10, "news")
	if err != nil {
		t.Fatalf("ListPublished returned error: %v", err)
	}
	if result.Total != 1 || result.Posts[0].Slug != "in-news" || result.Category == nil {
		t.Fatalf("unexpected category listing %+v", result)
	}

	if _, err := svc.ListPublished(1, 10, "missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestSuggestionsPreferReflections(t *testing.T) {
	gdb := setupServiceTestDB(t)
	past := time.Now().Add(-time.Hour)
	for _, slug := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		seedPost(t, gdb, slug, db.PostStatusPublished, past, nil)
	}

	svc := NewPostService(gdb)
	posts, category, err := svc.Suggestions()
	if err != nil {
		t.Fatalf("Suggestions returned error: %v", err)
	}
	if category != nil || len(posts) != 6 {
		t.Fatalf("expected 6 latest posts without category, got %d", len(posts))
	}

	reflections := db.Category{Name: "Reflections", Slug: SuggestionCategorySlug}
	gdb.Create(&reflections)
	for _, slug := range []string{"r1", "r2", "r3", "r4", "r5"} {
		seedPost(t, gdb, slug, db.PostStatusPublished, past, &reflections.ID)
	}

	posts, category, err = svc.Suggestions()
	if err != nil {
		t.Fatalf("Suggestions returned error: %v", err)
	}
	if category == nil || len(posts) != 4 {
		t.Fatalf("expected 4 reflections posts, got %d", len(posts))
	}
	for _, post := range posts {
		if post.CategoryID == nil || *post.CategoryID != reflections.ID {
			t.Fatalf("expected only reflections posts, got %s", post.Slug)
		}
	}
}

func TestCreatePostValidates(t *testing.T) {
	svc := NewPostService(setupServiceTestDB(t))

	if _, err := svc.Create(PostInput{}); !errors.Is(err, ErrPostTitleMissing) {
		t.Fatalf("expected ErrPostTitleMissing, got %v", err)
	}
	if _, err := svc.Create(PostInput{Title: "Hi", Status: "archived"}); !errors.Is(err, ErrPostStatusInvalid) {
		t.Fatalf("expected ErrPostStatusInvalid, got %v", err)
	}

	post, err := svc.Create(PostInput{Title: "Hello, World!", Status: "published"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if post.Slug != "hello-world" || post.PublishDate.IsZero() {
		t.Fatalf("unexpected post %+v", post)
	}

	if _, err := svc.Create(PostInput{Title: "Hello world"}); !errors.Is(err, ErrPostSlugExists) {
		t.Fatalf("expected ErrPostSlugExists, got %v", err)
	}
}
