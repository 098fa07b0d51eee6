package db

import (
	"time"

	"gorm.io/gorm"
)

// Template roles a Page can take. Every role except custom has its own route.
const (
	PageTemplateHome    = "home"
	PageTemplateAbout   = "about"
	PageTemplateGallery = "gallery"
	PageTemplateCustom  = "custom"
)

// PageTemplates lists the valid template roles.
var PageTemplates = []string{PageTemplateHome, PageTemplateAbout, PageTemplateCustom, PageTemplateGallery}

// Page represents a CMS page built from content blocks.
type Page struct {
	ID              uint   `gorm:"primaryKey"`
	Title           string `gorm:"size:200;not null"`
	Slug            string `gorm:"size:200;uniqueIndex;not null"`
	Template        string `gorm:"size:20;not null;index"`
	Published       bool   `gorm:"index"`
	MetaTitle       string `gorm:"size:60"`
	MetaDescription string `gorm:"size:160"`

	ShowInNavigation bool
	ShowInFooter     bool
	MenuOrder        int

	Sections     []PageSection      `gorm:"constraint:OnDelete:CASCADE;"`
	ThreeColumns []ThreeColumnBlock `gorm:"constraint:OnDelete:CASCADE;"`
	Galleries    []GalleryBlock     `gorm:"constraint:OnDelete:CASCADE;"`
	FAQs         []FAQBlock         `gorm:"constraint:OnDelete:CASCADE;"`
	Heroes       []Hero             `gorm:"constraint:OnDelete:SET NULL;"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlockEnvelope is the part shared by every content block attached to a page.
type BlockEnvelope struct {
	PageID    uint `gorm:"index;not null"`
	Order     int  `gorm:"column:sort_order;not null"`
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Section types for PageSection.
const (
	SectionTypeText      = "text"
	SectionTypeTwoColumn = "two_column"
	SectionTypeFeatures  = "features"
	SectionTypeCTA       = "cta"
)

// PageSection is a generic text-style block.
type PageSection struct {
	ID uint `gorm:"primaryKey"`
	BlockEnvelope
	SectionType string `gorm:"size:50;not null"`
	Title       string `gorm:"size:200"`
	Subtitle    string `gorm:"size:300"`
	Body        string `gorm:"type:text"`
	ImagePath   string
	ButtonText  string `gorm:"size:100"`
	ButtonLink  string
	Col1Body    string `gorm:"type:text"`
	Col2Body    string `gorm:"type:text"`
}

// ThreeColumnBlock shows three titled columns side by side.
type ThreeColumnBlock struct {
	ID uint `gorm:"primaryKey"`
	BlockEnvelope
	Col1Title     string `gorm:"size:150"`
	Col1ImagePath string
	Col1Body      string `gorm:"type:text"`
	Col2Title     string `gorm:"size:150"`
	Col2ImagePath string
	Col2Body      string `gorm:"type:text"`
	Col3Title     string `gorm:"size:150"`
	Col3ImagePath string
	Col3Body      string `gorm:"type:text"`
}

// GalleryBlock groups gallery images on a page.
type GalleryBlock struct {
	ID uint `gorm:"primaryKey"`
	BlockEnvelope
	Title  string         `gorm:"size:200"`
	Images []GalleryImage `gorm:"foreignKey:GalleryBlockID"`
}

// GalleryImage is an uploaded image with a derived thumbnail.
// Both paths are relative to the media root.
type GalleryImage struct {
	ID             uint   `gorm:"primaryKey"`
	GalleryBlockID *uint  `gorm:"index"`
	ImagePath      string `gorm:"not null"`
	ThumbnailPath  string
	Title          string `gorm:"size:200"`
	Caption        string `gorm:"type:text"`
	Published      bool
	Order          int `gorm:"column:sort_order;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ThumbnailURLPath returns the thumbnail when one exists, otherwise the original.
func (g GalleryImage) ThumbnailURLPath() string {
	if g.ThumbnailPath != "" {
		return g.ThumbnailPath
	}
	return g.ImagePath
}

// AltText is the text used for the img alt attribute.
func (g GalleryImage) AltText() string {
	return g.Title
}

// FAQBlock groups question/answer pairs.
type FAQBlock struct {
	ID uint `gorm:"primaryKey"`
	BlockEnvelope
	Title string    `gorm:"size:200"`
	Items []FAQItem `gorm:"foreignKey:FAQBlockID;constraint:OnDelete:CASCADE;"`
}

// FAQItem is a single question inside an FAQBlock.
type FAQItem struct {
	ID         uint   `gorm:"primaryKey"`
	FAQBlockID uint   `gorm:"index;not null"`
	Question   string `gorm:"size:500;not null"`
	Answer     string `gorm:"type:text;not null"`
	Order      int    `gorm:"column:sort_order;not null"`
	Published  bool
}

// Hero is the banner section at the top of a page. PageID stays nullable so
// heroes created before pages owned them survive the migration.
type Hero struct {
	gorm.Model
	PageID     *uint  `gorm:"index"`
	Title      string `gorm:"size:200;not null"`
	Subtitle   string `gorm:"size:300"`
	Body       string `gorm:"type:text"`
	ImagePath  string
	ButtonText string `gorm:"size:100"`
	ButtonLink string
	IsActive   bool
	Order      int `gorm:"column:sort_order;not null"`
}

// HeroBanner is the announcement pill shown above the homepage hero.
type HeroBanner struct {
	gorm.Model
	Text       string `gorm:"size:200"`
	ActionText string `gorm:"size:100"`
	ActionLink string `gorm:"size:200"`
	BadgeText  string `gorm:"size:50"`
	IsActive   bool
}
