package service

import (
	"errors"
	"testing"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
)

func seedProduct(t *testing.T, gdb *gorm.DB, product db.Product) db.Product {
	t.Helper()
	if err := gdb.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", product.Slug, err)
	}
	return product
}

func seedCatalog(t *testing.T, gdb *gorm.DB) (db.ProductCategory, db.ProductCategory) {
	t.Helper()
	templates := db.ProductCategory{Name: "Templates", Slug: "templates"}
	guides := db.ProductCategory{Name: "Guides", Slug: "guides"}
	gdb.Create(&templates)
	gdb.Create(&guides)

	seedProduct(t, gdb, db.Product{Title: "Starter Kit", Slug: "starter-kit", PricePence: 1000, Status: db.ProductStatusPublish, IsActive: true, Featured: true, Order: 1, CategoryID: &templates.ID})
	seedProduct(t, gdb, db.Product{Title: "Pro Kit", Slug: "pro-kit", Description: "for teams", PricePence: 4000, Status: db.ProductStatusFull, IsActive: true, Order: 2, CategoryID: &templates.ID})
	seedProduct(t, gdb, db.Product{Title: "Launch Guide", Slug: "launch-guide", PricePence: 500, Status: db.ProductStatusSoon, IsActive: true, Order: 3, CategoryID: &guides.ID})
	seedProduct(t, gdb, db.Product{Title: "Secret", Slug: "secret", Status: db.ProductStatusDraft, IsActive: true, CategoryID: &guides.ID})
	seedProduct(t, gdb, db.Product{Title: "Retired", Slug: "retired", Status: db.ProductStatusPublish, IsActive: false})
	return templates, guides
}

func TestListProductsDisplayModes(t *testing.T) {
	gdb := setupServiceTestDB(t)
	templates, _ := seedCatalog(t, gdb)
	svc := NewShopService(gdb)

	all, err := svc.ListProducts(ProductFilter{Settings: db.DefaultShopSettings()})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if all.Total != 3 {
		t.Fatalf("expected 3 visible products, got %d", all.Total)
	}
	if all.Products[0].Slug != "starter-kit" {
		t.Fatalf("expected products ordered by sort order, got %s first", all.Products[0].Slug)
	}

	featuredSettings := db.DefaultShopSettings()
	featuredSettings.ProductDisplayMode = db.ProductDisplayFeatured
	featured, err := svc.ListProducts(ProductFilter{Settings: featuredSettings})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if featured.Total != 1 {
		t.Fatalf("expected 1 featured product, got %d", featured.Total)
	}

	categorySettings := db.DefaultShopSettings()
	categorySettings.ProductDisplayMode = db.ProductDisplayCategory
	categorySettings.DisplayCategoryID = &templates.ID
	byCategory, err := svc.ListProducts(ProductFilter{Settings: categorySettings})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if byCategory.Total != 2 {
		t.Fatalf("expected 2 template products, got %d", byCategory.Total)
	}
}

func TestListProductsSearchAndPagination(t *testing.T) {
	gdb := setupServiceTestDB(t)
	seedCatalog(t, gdb)
	svc := NewShopService(gdb)

	found, err := svc.ListProducts(ProductFilter{Settings: db.DefaultShopSettings(), Search: "TEAMS"})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if found.Total != 1 || found.Products[0].Slug != "pro-kit" {
		t.Fatalf("expected description match, got %+v", found.Products)
	}

	settings := db.DefaultShopSettings()
	settings.ProductsPerPage = 2
	second, err := svc.ListProducts(ProductFilter{Settings: settings, Page: 2})
	if err != nil {
		t.Fatalf("ListProducts returned error: %v", err)
	}
	if second.TotalPages != 2 || len(second.Products) != 1 {
		t.Fatalf("expected one product on page 2 of 2, got %d on %d pages", len(second.Products), second.TotalPages)
	}

	if _, err := svc.ListProducts(ProductFilter{Settings: settings, CategorySlug: "nope"}); !errors.Is(err, ErrProductCategoryNotFound) {
		t.Fatalf("expected ErrProductCategoryNotFound, got %v", err)
	}
}

func TestGetProductAndRelated(t *testing.T) {
	gdb := setupServiceTestDB(t)
	seedCatalog(t, gdb)
	svc := NewShopService(gdb)

	if _, err := svc.GetProduct("secret"); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected draft product to be hidden, got %v", err)
	}

	product, err := svc.GetProduct("starter-kit")
	if err != nil {
		t.Fatalf("GetProduct returned error: %v", err)
	}
	related, err := svc.RelatedProducts(*product)
	if err != nil {
		t.Fatalf("RelatedProducts returned error: %v", err)
	}
	if len(related) != 1 || related[0].Slug != "pro-kit" {
		t.Fatalf("unexpected related products %+v", related)
	}
}

func TestCategoriesWithProducts(t *testing.T) {
	gdb := setupServiceTestDB(t)
	seedCatalog(t, gdb)
	gdb.Create(&db.ProductCategory{Name: "Empty", Slug: "empty"})

	rows, err := NewShopService(gdb).CategoriesWithProducts()
	if err != nil {
		t.Fatalf("CategoriesWithProducts returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(rows))
	}
	if rows[0].Slug != "guides" || rows[0].ProductCount != 1 || rows[1].ProductCount != 2 {
		t.Fatalf("unexpected category counts %+v", rows)
	}
}
