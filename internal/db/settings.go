package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Homepage modes selectable in SiteSettings.
const (
	HomepageModePages = "PAGES"
	HomepageModeShop  = "SHOP"
)

// Product display modes selectable in ShopSettings.
const (
	ProductDisplayAll      = "all"
	ProductDisplayFeatured = "featured"
	ProductDisplayCategory = "category"
)

// singletonKeyValue is the only value the singleton_key column ever holds.
const singletonKeyValue = 1

// Singleton is embedded by tables that must hold exactly one row.
// The unique index on singleton_key makes a second insert fail in the store.
type Singleton struct {
	SingletonKey uint8 `gorm:"uniqueIndex;not null"`
}

// BeforeCreate pins the key so every insert competes for the same slot.
func (s *Singleton) BeforeCreate(*gorm.DB) error {
	s.SingletonKey = singletonKeyValue
	return nil
}

// SiteSettings holds branding, navigation, footer and homepage controls.
type SiteSettings struct {
	ID uint `gorm:"primaryKey"`
	Singleton

	HomepageMode          string `gorm:"size:10;not null"`
	ShowShopOnHomepage    bool
	ShowBlogOnHomepage    bool
	ShowGalleryOnHomepage bool

	BusinessName string `gorm:"size:150;not null"`
	LogoPath     string
	SiteURL      string `gorm:"size:200"`
	SupportEmail string `gorm:"size:254"`
	SiteAuthor   string `gorm:"size:150"`

	Social1Name   string `gorm:"size:50"`
	Social1URL    string
	Social2Name   string `gorm:"size:50"`
	Social2URL    string
	CopyrightText string `gorm:"size:200"`

	DefaultMetaTitle       string `gorm:"size:150"`
	DefaultMetaDescription string `gorm:"size:255"`

	CurrencySymbol string `gorm:"size:8"`
	CurrencyCode   string `gorm:"size:3"`

	UpdatedAt time.Time
}

// DefaultSiteSettings returns the values used for a freshly created row and
// whenever the stored row cannot be read.
func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		HomepageMode:   HomepageModePages,
		BusinessName:   "My Site",
		SiteURL:        "https://example.com",
		SupportEmail:   "hello@example.com",
		CurrencySymbol: "£",
		CurrencyCode:   "GBP",
	}
}

// SocialLink is a named outbound link shown in the footer.
type SocialLink struct {
	Name string
	URL  string
}

// Copyright returns the custom copyright text or a generated one.
func (s SiteSettings) Copyright() string {
	if text := strings.TrimSpace(s.CopyrightText); text != "" {
		return text
	}
	return fmt.Sprintf("© %s. All rights reserved.", s.BusinessName)
}

// SocialLinks returns the social links that have both a name and a URL.
func (s SiteSettings) SocialLinks() []SocialLink {
	links := make([]SocialLink, 0, 2)
	if s.Social1Name != "" && s.Social1URL != "" {
		links = append(links, SocialLink{Name: s.Social1Name, URL: s.Social1URL})
	}
	if s.Social2Name != "" && s.Social2URL != "" {
		links = append(links, SocialLink{Name: s.Social2Name, URL: s.Social2URL})
	}
	return links
}

// Author falls back to the business name.
func (s SiteSettings) Author() string {
	if author := strings.TrimSpace(s.SiteAuthor); author != "" {
		return author
	}
	return s.BusinessName
}

// IsShopHomepage reports whether the root URL should show the shop.
func (s SiteSettings) IsShopHomepage() bool {
	return s.HomepageMode == HomepageModeShop
}

// HomeURL is the path the logo and "home" links point at.
func (s SiteSettings) HomeURL() string {
	if s.IsShopHomepage() {
		return "/shop"
	}
	return "/"
}

// DashboardSettings controls the customer dashboard and support page copy.
type DashboardSettings struct {
	ID uint `gorm:"primaryKey"`
	Singleton

	WelcomeHeading      string `gorm:"size:150;not null"`
	IntroText           string `gorm:"type:text"`
	SupportURL          string
	AnnouncementBarText string `gorm:"size:200"`

	LeftTitle    string `gorm:"size:100"`
	ResponseTime string `gorm:"size:100"`
	SupportHours string `gorm:"size:100"`
	PoliciesLink string
	DocsLink     string

	HelpItem1 string `gorm:"size:150"`
	HelpItem2 string `gorm:"size:150"`
	HelpItem3 string `gorm:"size:150"`
	HelpItem4 string `gorm:"size:150"`
	HelpItem5 string `gorm:"size:150"`

	UpdatedAt time.Time
}

// DefaultDashboardSettings mirrors the defaults shown before an admin edits anything.
func DefaultDashboardSettings() DashboardSettings {
	return DashboardSettings{
		WelcomeHeading: "Welcome,",
		IntroText:      "Here's an overview of your account and quick access to your saved items.",
		LeftTitle:      "Get In Touch",
		ResponseTime:   "Within 48 hours (weekdays)",
		SupportHours:   "Monday – Friday, 9AM – 4PM GMT",
	}
}

// HelpItems returns the non-empty help items in display order.
func (d DashboardSettings) HelpItems() []string {
	items := make([]string, 0, 5)
	for _, item := range []string{d.HelpItem1, d.HelpItem2, d.HelpItem3, d.HelpItem4, d.HelpItem5} {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// SupportPath is the configured support URL or the built-in support page.
func (d DashboardSettings) SupportPath() string {
	if url := strings.TrimSpace(d.SupportURL); url != "" {
		return url
	}
	return "/support"
}

// ShopSettings controls the shop listing page.
type ShopSettings struct {
	ID uint `gorm:"primaryKey"`
	Singleton

	ProductDisplayMode string `gorm:"size:20;not null"`
	DisplayCategoryID  *uint
	ProductsPerPage    int
	IntroHeading       string `gorm:"size:150"`
	IntroText          string `gorm:"type:text"`

	UpdatedAt time.Time
}

// DefaultShopSettings returns the listing defaults.
func DefaultShopSettings() ShopSettings {
	return ShopSettings{
		ProductDisplayMode: ProductDisplayAll,
		ProductsPerPage:    12,
		IntroHeading:       "Shop",
	}
}

// TableName keeps the singular settings tables explicit.
func (SiteSettings) TableName() string {
	return "site_settings"
}

// TableName keeps the singular settings tables explicit.
func (DashboardSettings) TableName() string {
	return "dashboard_settings"
}

// TableName keeps the singular settings tables explicit.
func (ShopSettings) TableName() string {
	return "shop_settings"
}
