package seed

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/service"
	"github.com/ebuilder/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:seed-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestDemoSeedsRenderableSite(t *testing.T) {
	gdb := setupSeedTestDB(t)
	files := storage.NewLocal(t.TempDir(), "/media")

	report, err := Demo(gdb, files)
	if err != nil {
		t.Fatalf("Demo returned error: %v", err)
	}
	if report.Pages != 3 || report.GalleryImages != len(demoImages) || report.Products != len(demoProducts) {
		t.Fatalf("unexpected report %+v", report)
	}

	home, err := service.NewPageService(gdb, nil).ResolveHome(db.SiteSettings{
		HomepageMode:          db.HomepageModePages,
		ShowBlogOnHomepage:    true,
		ShowShopOnHomepage:    true,
		ShowGalleryOnHomepage: true,
	})
	if err != nil {
		t.Fatalf("ResolveHome returned error: %v", err)
	}
	if home.View == nil || len(home.View.Blocks) != 3 {
		t.Fatalf("expected home page with three blocks, got %+v", home.View)
	}
	if home.View.Hero == nil {
		t.Fatal("expected the unattached hero to show on the home page")
	}
	if len(home.Posts) != 2 {
		t.Fatalf("expected two published posts, got %d", len(home.Posts))
	}
	if len(home.FeaturedProducts) != 2 {
		t.Fatalf("expected two featured products, got %d", len(home.FeaturedProducts))
	}
	if len(home.GalleryImages) != len(demoImages)-1 {
		t.Fatalf("expected published images only, got %d", len(home.GalleryImages))
	}
	for _, image := range home.GalleryImages {
		if image.ThumbnailPath == "" || !files.Exists(image.ThumbnailPath) {
			t.Fatalf("expected thumbnail for %q", image.Title)
		}
	}
}

func TestDemoRefusesPopulatedDatabase(t *testing.T) {
	gdb := setupSeedTestDB(t)
	if _, err := service.NewPageService(gdb, nil).Create(service.PageInput{Title: "Existing"}); err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	if _, err := Demo(gdb, storage.NewLocal(t.TempDir(), "/media")); !errors.Is(err, ErrAlreadySeeded) {
		t.Fatalf("expected ErrAlreadySeeded, got %v", err)
	}
}
