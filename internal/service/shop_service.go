package service

import (
	"errors"
	"strings"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound         = errors.New("product not found")
	ErrProductCategoryNotFound = errors.New("product category not found")
)

// ShopService reads the product catalog.
type ShopService struct {
	db *gorm.DB
}

// ProductFilter describes a shop listing request.
type ProductFilter struct {
	Settings     db.ShopSettings
	CategorySlug string
	Search       string
	Page         int
}

// ProductListResult aggregates paginated product data.
type ProductListResult struct {
	Products   []db.Product
	Category   *db.ProductCategory
	Query      string
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// CategoryCount is a category with the number of visible products in it.
type CategoryCount struct {
	db.ProductCategory
	ProductCount int64
}

// NewShopService creates a ShopService instance.
func NewShopService(gdb *gorm.DB) *ShopService {
	return &ShopService{db: gdb}
}

func (s *ShopService) visible() *gorm.DB {
	return s.db.Model(&db.Product{}).
		Where("products.is_active = ? AND products.status IN ?", true, db.VisibleProductStatuses)
}

// ListProducts applies the shop display mode, then an explicit category and
// search term, and paginates by the configured page size.
func (s *ShopService) ListProducts(filter ProductFilter) (*ProductListResult, error) {
	result := &ProductListResult{
		Query:   strings.TrimSpace(filter.Search),
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.Settings.ProductsPerPage, db.DefaultShopSettings().ProductsPerPage),
	}

	query := s.visible()
	switch filter.Settings.ProductDisplayMode {
	case db.ProductDisplayFeatured:
		query = query.Where("products.featured = ?", true)
	case db.ProductDisplayCategory:
		if filter.Settings.DisplayCategoryID != nil {
			query = query.Where("products.category_id = ?", *filter.Settings.DisplayCategoryID)
		}
	}

	if slug := strings.TrimSpace(filter.CategorySlug); slug != "" {
		category, err := s.Category(slug)
		if err != nil {
			return nil, err
		}
		result.Category = category
		query = query.Where("products.category_id = ?", category.ID)
	}

	if result.Query != "" {
		like := "%" + strings.ToLower(result.Query) + "%"
		query = query.Where("LOWER(products.title) LIKE ? OR LOWER(products.description) LIKE ?", like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	offset := (result.Page - 1) * result.PerPage
	if err := query.Preload("Category").
		Order("products.sort_order asc").Order("products.created_at desc").
		Limit(result.PerPage).Offset(offset).
		Find(&result.Products).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Category fetches a product category by slug.
func (s *ShopService) Category(slug string) (*db.ProductCategory, error) {
	var category db.ProductCategory
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetProduct returns a visible product by slug.
func (s *ShopService) GetProduct(slug string) (*db.Product, error) {
	var product db.Product
	if err := s.visible().Preload("Category").
		Where("products.slug = ?", strings.TrimSpace(slug)).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// RelatedProducts returns up to three purchasable products from the same category.
func (s *ShopService) RelatedProducts(product db.Product) ([]db.Product, error) {
	if product.CategoryID == nil {
		return nil, nil
	}
	var products []db.Product
	err := s.db.Where("category_id = ? AND id <> ? AND is_active = ? AND status IN ?",
		*product.CategoryID, product.ID, true, []string{db.ProductStatusPublish, db.ProductStatusFull}).
		Order("sort_order asc").Order("created_at desc").
		Limit(3).
		Find(&products).Error
	return products, err
}

// Featured returns featured products on sale, for the homepage.
func (s *ShopService) Featured(limit int) ([]db.Product, error) {
	var products []db.Product
	err := s.db.Where("is_active = ? AND status = ? AND featured = ?", true, db.ProductStatusPublish, true).
		Order("sort_order asc").Order("created_at desc").
		Limit(normalizePerPage(limit, 4)).
		Find(&products).Error
	return products, err
}

// CategoriesWithProducts lists categories holding at least one visible product.
func (s *ShopService) CategoriesWithProducts() ([]CategoryCount, error) {
	var rows []CategoryCount
	err := s.db.Model(&db.ProductCategory{}).
		Select("product_categories.*, COUNT(products.id) AS product_count").
		Joins("JOIN products ON products.category_id = product_categories.id").
		Where("products.is_active = ? AND products.status IN ?", true, db.VisibleProductStatuses).
		Group("product_categories.id").
		Order("product_categories.name asc").
		Scan(&rows).Error
	return rows, err
}

// ProductInput holds editable product fields.
type ProductInput struct {
	Title       string
	Slug        string
	Description string
	ImagePath   string
	PricePence  int64
	Status      string
	IsActive    bool
	Featured    bool
	Order       int
	CategoryID  *uint
}

var (
	ErrProductTitleMissing  = errors.New("product title is required")
	ErrProductSlugInvalid   = errors.New("product slug is invalid")
	ErrProductSlugExists    = errors.New("product slug already exists")
	ErrProductStatusInvalid = errors.New("product status is invalid")
	ErrProductPriceInvalid  = errors.New("product price must not be negative")
)

// CreateProduct inserts a product.
func (s *ShopService) CreateProduct(input ProductInput) (*db.Product, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProductTitleMissing
	}
	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !slugPattern.MatchString(slug) {
		return nil, ErrProductSlugInvalid
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = db.ProductStatusDraft
	}
	switch status {
	case db.ProductStatusDraft, db.ProductStatusPublish, db.ProductStatusSoon, db.ProductStatusFull:
	default:
		return nil, ErrProductStatusInvalid
	}
	if input.PricePence < 0 {
		return nil, ErrProductPriceInvalid
	}

	product := db.Product{
		Title:       title,
		Slug:        slug,
		Description: input.Description,
		ImagePath:   strings.TrimSpace(input.ImagePath),
		PricePence:  input.PricePence,
		Status:      status,
		IsActive:    input.IsActive,
		Featured:    input.Featured,
		Order:       input.Order,
		CategoryID:  input.CategoryID,
	}
	if err := s.db.Create(&product).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrProductSlugExists
		}
		return nil, err
	}
	return &product, nil
}
