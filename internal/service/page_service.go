package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound        = errors.New("page not found")
	ErrPageTitleMissing    = errors.New("page title is required")
	ErrPageSlugInvalid     = errors.New("page slug is invalid")
	ErrPageSlugExists      = errors.New("page slug already exists")
	ErrPageTemplateInvalid = errors.New("page template is invalid")
	ErrPageTemplateTaken   = errors.New("another page already uses this template")
	ErrBlockNotFound       = errors.New("content block not found")
	ErrBlockKindInvalid    = errors.New("content block kind is invalid")
	ErrSectionTypeInvalid  = errors.New("section type is invalid")
	ErrFAQItemInvalid      = errors.New("faq question and answer are required")
	ErrHeroTitleMissing    = errors.New("hero title is required")
)

// Homepage extras limits.
const (
	HomeLatestPosts      = 3
	HomeFeaturedProducts = 4
	HomeGalleryImages    = 8
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// reservedSlugs collide with fixed routes and cannot be used by pages.
var reservedSlugs = map[string]bool{
	"admin": true, "accounts": true, "blog": true, "shop": true,
	"media": true, "static": true, "health": true, "support": true,
}

// PageService resolves public pages and manages pages and their blocks.
type PageService struct {
	db     *gorm.DB
	blocks *BlockService
	images *GalleryImageService
}

// NewPageService returns a new PageService instance. files holds the gallery
// images removed together with their pages and blocks; it may be nil when
// no image files are managed.
func NewPageService(gdb *gorm.DB, files FileStore) *PageService {
	return &PageService{db: gdb, blocks: NewBlockService(gdb), images: NewGalleryImageService(gdb, files)}
}

// PageView is a resolved page ready for rendering.
type PageView struct {
	Page   db.Page
	Blocks []ContentBlock
	Hero   *db.Hero
}

// HomeResult describes what the root URL should do. Exactly one of
// RedirectTo, Fallback or View applies.
type HomeResult struct {
	RedirectTo string
	Fallback   bool
	View       *PageView
	HeroBanner *db.HeroBanner

	Posts            []db.Post
	FeaturedProducts []db.Product
	GalleryImages    []db.GalleryImage
}

// SlugResult is either a redirect to a canonical route or a custom page.
type SlugResult struct {
	RedirectTo string
	View       *PageView
}

// CanonicalPath returns the fixed route of a template role, or the slug
// route for custom pages.
func CanonicalPath(template, slug string) string {
	switch template {
	case db.PageTemplateHome:
		return "/"
	case db.PageTemplateAbout:
		return "/about"
	case db.PageTemplateGallery:
		return "/gallery"
	default:
		return "/" + slug
	}
}

// ResolveHome decides the root URL response. Shop mode wins over any home
// page. Without a published home page the welcome fallback is used.
func (s *PageService) ResolveHome(site db.SiteSettings) (HomeResult, error) {
	if site.IsShopHomepage() {
		return HomeResult{RedirectTo: "/shop"}, nil
	}

	view, err := s.ResolveTemplate(db.PageTemplateHome)
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return HomeResult{Fallback: true}, nil
		}
		return HomeResult{}, err
	}

	result := HomeResult{View: view}

	var banner db.HeroBanner
	if err := s.db.Where("is_active = ?", true).Order("id asc").Limit(1).Find(&banner).Error; err != nil {
		return result, err
	}
	if banner.ID != 0 {
		result.HeroBanner = &banner
	}

	if site.ShowBlogOnHomepage {
		if result.Posts, err = NewPostService(s.db).Latest(HomeLatestPosts); err != nil {
			return result, err
		}
	}
	if site.ShowShopOnHomepage {
		if result.FeaturedProducts, err = NewShopService(s.db).Featured(HomeFeaturedProducts); err != nil {
			return result, err
		}
	}
	if site.ShowGalleryOnHomepage {
		if result.GalleryImages, err = s.images.Latest(HomeGalleryImages); err != nil {
			return result, err
		}
	}

	return result, nil
}

// ResolveTemplate returns the published page with the given role.
func (s *PageService) ResolveTemplate(template string) (*PageView, error) {
	var page db.Page
	err := s.db.Where("template = ? AND published = ?", template, true).
		Order("id asc").First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return s.buildView(page)
}

// ResolveSlug returns the published page for slug. Pages with a fixed role
// redirect to their canonical route.
func (s *PageService) ResolveSlug(slug string) (SlugResult, error) {
	var page db.Page
	err := s.db.Where("slug = ? AND published = ?", strings.TrimSpace(slug), true).First(&page).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SlugResult{}, ErrPageNotFound
		}
		return SlugResult{}, err
	}

	if page.Template != db.PageTemplateCustom {
		return SlugResult{RedirectTo: CanonicalPath(page.Template, page.Slug)}, nil
	}

	view, err := s.buildView(page)
	if err != nil {
		return SlugResult{}, err
	}
	return SlugResult{View: view}, nil
}

// GalleryOverview returns every published gallery block with its published images.
func (s *PageService) GalleryOverview() ([]db.GalleryBlock, error) {
	var galleries []db.GalleryBlock
	err := s.db.Where("published = ?", true).
		Preload("Images", publishedOrdered).
		Order("sort_order asc").Order("id asc").
		Find(&galleries).Error
	return galleries, err
}

// PublishedImage returns a published gallery image for the modal view.
func (s *PageService) PublishedImage(id uint) (*db.GalleryImage, error) {
	var image db.GalleryImage
	if err := s.db.Where("id = ? AND published = ?", id, true).First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryImageNotFound
		}
		return nil, err
	}
	return &image, nil
}

// Navigation lists published pages shown in the main menu.
func (s *PageService) Navigation() ([]db.Page, error) {
	return s.menuPages("show_in_navigation")
}

// FooterPages lists published pages shown in the footer.
func (s *PageService) FooterPages() ([]db.Page, error) {
	return s.menuPages("show_in_footer")
}

func (s *PageService) menuPages(flag string) ([]db.Page, error) {
	var pages []db.Page
	err := s.db.Where("published = ? AND "+flag+" = ?", true, true).
		Order("menu_order asc").Order("title asc").
		Find(&pages).Error
	return pages, err
}

func (s *PageService) buildView(page db.Page) (*PageView, error) {
	blocks, err := s.blocks.ForPage(page.ID)
	if err != nil {
		return nil, fmt.Errorf("load blocks of page %d: %w", page.ID, err)
	}

	view := &PageView{Page: page, Blocks: blocks}

	var hero db.Hero
	if err := s.db.Where("page_id = ? AND is_active = ?", page.ID, true).
		Order("sort_order asc").Order("id asc").Limit(1).Find(&hero).Error; err != nil {
		return nil, err
	}
	if hero.ID == 0 && page.Template == db.PageTemplateHome {
		if err := s.db.Where("page_id IS NULL AND is_active = ?", true).
			Order("sort_order asc").Order("id asc").Limit(1).Find(&hero).Error; err != nil {
			return nil, err
		}
	}
	if hero.ID != 0 {
		view.Hero = &hero
	}
	return view, nil
}

// PageInput represents fields accepted when creating or updating a page.
type PageInput struct {
	Title            string
	Slug             string
	Template         string
	Published        bool
	MetaTitle        string
	MetaDescription  string
	ShowInNavigation bool
	ShowInFooter     bool
	MenuOrder        int
}

// List returns every page for the admin.
func (s *PageService) List() ([]db.Page, error) {
	var pages []db.Page
	err := s.db.Order("menu_order asc").Order("title asc").Find(&pages).Error
	return pages, err
}

// Get fetches a page by id.
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// Create validates and inserts a page.
func (s *PageService) Create(input PageInput) (*db.Page, error) {
	page := db.Page{}
	if err := s.applyInput(&page, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&page).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPageSlugExists
		}
		return nil, err
	}
	return &page, nil
}

// Update validates and saves an existing page.
func (s *PageService) Update(id uint, input PageInput) (*db.Page, error) {
	page, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.applyInput(page, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(page).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPageSlugExists
		}
		return nil, err
	}
	return page, nil
}

// Delete removes a page with its blocks and heroes. Images of its gallery
// blocks are removed along with their files.
func (s *PageService) Delete(id uint) error {
	page, err := s.Get(id)
	if err != nil {
		return err
	}

	var removed []db.GalleryImage
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var galleryIDs []uint
		if err := tx.Model(&db.GalleryBlock{}).Where("page_id = ?", page.ID).Pluck("id", &galleryIDs).Error; err != nil {
			return err
		}
		images, err := deleteGalleryImages(tx, galleryIDs)
		if err != nil {
			return err
		}
		removed = images

		var faqIDs []uint
		if err := tx.Model(&db.FAQBlock{}).Where("page_id = ?", page.ID).Pluck("id", &faqIDs).Error; err != nil {
			return err
		}
		if len(faqIDs) > 0 {
			if err := tx.Where("faq_block_id IN ?", faqIDs).Delete(&db.FAQItem{}).Error; err != nil {
				return err
			}
		}

		for _, model := range []interface{}{&db.PageSection{}, &db.ThreeColumnBlock{}, &db.GalleryBlock{}, &db.FAQBlock{}, &db.Hero{}} {
			if err := tx.Where("page_id = ?", page.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&db.Page{}, page.ID).Error
	})
	if err != nil {
		return err
	}

	for _, image := range removed {
		s.images.removeFiles(image)
	}
	return nil
}

// deleteGalleryImages removes the image rows of the given gallery blocks and
// returns them so their files can be deleted once the transaction commits.
func deleteGalleryImages(tx *gorm.DB, galleryIDs []uint) ([]db.GalleryImage, error) {
	if len(galleryIDs) == 0 {
		return nil, nil
	}

	var images []db.GalleryImage
	if err := tx.Where("gallery_block_id IN ?", galleryIDs).Find(&images).Error; err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, nil
	}
	if err := tx.Where("gallery_block_id IN ?", galleryIDs).Delete(&db.GalleryImage{}).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (s *PageService) applyInput(page *db.Page, input PageInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrPageTitleMissing
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if !slugPattern.MatchString(slug) || reservedSlugs[slug] {
		return ErrPageSlugInvalid
	}

	template := strings.ToLower(strings.TrimSpace(input.Template))
	if template == "" {
		template = db.PageTemplateCustom
	}
	if !validTemplate(template) {
		return ErrPageTemplateInvalid
	}
	if template != db.PageTemplateCustom {
		var count int64
		if err := s.db.Model(&db.Page{}).
			Where("template = ? AND id <> ?", template, page.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrPageTemplateTaken
		}
	}

	page.Title = title
	page.Slug = slug
	page.Template = template
	page.Published = input.Published
	page.MetaTitle = strings.TrimSpace(input.MetaTitle)
	page.MetaDescription = strings.TrimSpace(input.MetaDescription)
	page.ShowInNavigation = input.ShowInNavigation
	page.ShowInFooter = input.ShowInFooter
	page.MenuOrder = input.MenuOrder
	return nil
}

func validTemplate(template string) bool {
	for _, t := range db.PageTemplates {
		if t == template {
			return true
		}
	}
	return false
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// BlockPlacement positions a new block on a page.
type BlockPlacement struct {
	PageID    uint
	Order     int
	Published bool
}

// SectionInput holds PageSection payload fields.
type SectionInput struct {
	BlockPlacement
	SectionType string
	Title       string
	Subtitle    string
	Body        string
	ImagePath   string
	ButtonText  string
	ButtonLink  string
	Col1Body    string
	Col2Body    string
}

// ThreeColumnInput holds ThreeColumnBlock payload fields.
type ThreeColumnInput struct {
	BlockPlacement
	Titles     [3]string
	ImagePaths [3]string
	Bodies     [3]string
}

// FAQItemInput is one question of an FAQ block.
type FAQItemInput struct {
	Question  string
	Answer    string
	Order     int
	Published bool
}

// CreateSection adds a section block to a page.
func (s *PageService) CreateSection(input SectionInput) (*db.PageSection, error) {
	envelope, err := s.envelope(input.BlockPlacement)
	if err != nil {
		return nil, err
	}

	sectionType := strings.TrimSpace(input.SectionType)
	if sectionType == "" {
		sectionType = db.SectionTypeText
	}
	switch sectionType {
	case db.SectionTypeText, db.SectionTypeTwoColumn, db.SectionTypeFeatures, db.SectionTypeCTA:
	default:
		return nil, ErrSectionTypeInvalid
	}

	section := db.PageSection{
		BlockEnvelope: envelope,
		SectionType:   sectionType,
		Title:         strings.TrimSpace(input.Title),
		Subtitle:      strings.TrimSpace(input.Subtitle),
		Body:          input.Body,
		ImagePath:     strings.TrimSpace(input.ImagePath),
		ButtonText:    strings.TrimSpace(input.ButtonText),
		ButtonLink:    strings.TrimSpace(input.ButtonLink),
		Col1Body:      input.Col1Body,
		Col2Body:      input.Col2Body,
	}
	if err := s.db.Create(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

// CreateThreeColumn adds a three-column block to a page.
func (s *PageService) CreateThreeColumn(input ThreeColumnInput) (*db.ThreeColumnBlock, error) {
	envelope, err := s.envelope(input.BlockPlacement)
	if err != nil {
		return nil, err
	}

	block := db.ThreeColumnBlock{
		BlockEnvelope: envelope,
		Col1Title:     strings.TrimSpace(input.Titles[0]),
		Col1ImagePath: strings.TrimSpace(input.ImagePaths[0]),
		Col1Body:      input.Bodies[0],
		Col2Title:     strings.TrimSpace(input.Titles[1]),
		Col2ImagePath: strings.TrimSpace(input.ImagePaths[1]),
		Col2Body:      input.Bodies[1],
		Col3Title:     strings.TrimSpace(input.Titles[2]),
		Col3ImagePath: strings.TrimSpace(input.ImagePaths[2]),
		Col3Body:      input.Bodies[2],
	}
	if err := s.db.Create(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// CreateGalleryBlock adds an empty gallery block to a page.
func (s *PageService) CreateGalleryBlock(placement BlockPlacement, title string) (*db.GalleryBlock, error) {
	envelope, err := s.envelope(placement)
	if err != nil {
		return nil, err
	}

	block := db.GalleryBlock{BlockEnvelope: envelope, Title: strings.TrimSpace(title)}
	if err := s.db.Create(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// CreateFAQBlock adds an FAQ block with its items to a page.
func (s *PageService) CreateFAQBlock(placement BlockPlacement, title string, items []FAQItemInput) (*db.FAQBlock, error) {
	envelope, err := s.envelope(placement)
	if err != nil {
		return nil, err
	}

	block := db.FAQBlock{BlockEnvelope: envelope, Title: strings.TrimSpace(title)}
	for i, item := range items {
		question := strings.TrimSpace(item.Question)
		answer := strings.TrimSpace(item.Answer)
		if question == "" || answer == "" {
			return nil, ErrFAQItemInvalid
		}
		order := item.Order
		if order == 0 {
			order = i + 1
		}
		block.Items = append(block.Items, db.FAQItem{
			Question:  question,
			Answer:    answer,
			Order:     order,
			Published: item.Published,
		})
	}

	if err := s.db.Create(&block).Error; err != nil {
		return nil, err
	}
	return &block, nil
}

// DeleteBlock removes a block of the given kind. Images of a gallery block and
// items of an FAQ block are removed with it.
func (s *PageService) DeleteBlock(kind BlockKind, id uint) error {
	var model interface{}
	switch kind {
	case BlockKindSection:
		model = &db.PageSection{}
	case BlockKindThreeColumn:
		model = &db.ThreeColumnBlock{}
	case BlockKindGallery:
		model = &db.GalleryBlock{}
	case BlockKindFAQ:
		model = &db.FAQBlock{}
	default:
		return ErrBlockKindInvalid
	}

	var removed []db.GalleryImage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(model, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBlockNotFound
		}

		var err error
		switch kind {
		case BlockKindGallery:
			removed, err = deleteGalleryImages(tx, []uint{id})
		case BlockKindFAQ:
			err = tx.Where("faq_block_id = ?", id).Delete(&db.FAQItem{}).Error
		}
		return err
	})
	if err != nil {
		return err
	}

	for _, image := range removed {
		s.images.removeFiles(image)
	}
	return nil
}

// HeroInput holds Hero fields.
type HeroInput struct {
	PageID     *uint
	Title      string
	Subtitle   string
	Body       string
	ImagePath  string
	ButtonText string
	ButtonLink string
	IsActive   bool
	Order      int
}

// CreateHero adds a hero, optionally attached to a page.
func (s *PageService) CreateHero(input HeroInput) (*db.Hero, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrHeroTitleMissing
	}
	if input.PageID != nil {
		if _, err := s.Get(*input.PageID); err != nil {
			return nil, err
		}
	}

	hero := db.Hero{
		PageID:     input.PageID,
		Title:      title,
		Subtitle:   strings.TrimSpace(input.Subtitle),
		Body:       input.Body,
		ImagePath:  strings.TrimSpace(input.ImagePath),
		ButtonText: strings.TrimSpace(input.ButtonText),
		ButtonLink: strings.TrimSpace(input.ButtonLink),
		IsActive:   input.IsActive,
		Order:      input.Order,
	}
	if err := s.db.Create(&hero).Error; err != nil {
		return nil, err
	}
	return &hero, nil
}

func (s *PageService) envelope(placement BlockPlacement) (db.BlockEnvelope, error) {
	if _, err := s.Get(placement.PageID); err != nil {
		return db.BlockEnvelope{}, err
	}
	return db.BlockEnvelope{
		PageID:    placement.PageID,
		Order:     placement.Order,
		Published: placement.Published,
	}, nil
}
