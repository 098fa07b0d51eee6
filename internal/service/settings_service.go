package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/ebuilder/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSingletonExists is returned when a second settings row is created.
var ErrSingletonExists = errors.New("settings record already exists")

// ErrHomepageModeInvalid rejects unknown homepage modes.
var ErrHomepageModeInvalid = errors.New("homepage mode is invalid")

// ErrDisplayModeInvalid rejects unknown product display modes.
var ErrDisplayModeInvalid = errors.New("product display mode is invalid")

// SettingsService reads and writes the singleton settings records.
type SettingsService struct {
	db *gorm.DB
}

// NewSettingsService constructs a SettingsService.
func NewSettingsService(gdb *gorm.DB) *SettingsService {
	return &SettingsService{db: gdb}
}

// CreateSite inserts the SiteSettings row. It fails with ErrSingletonExists
// when one is already stored.
func (s *SettingsService) CreateSite(settings *db.SiteSettings) error {
	return createSingleton(s.db, settings)
}

// CreateDashboard inserts the DashboardSettings row.
func (s *SettingsService) CreateDashboard(settings *db.DashboardSettings) error {
	return createSingleton(s.db, settings)
}

// CreateShop inserts the ShopSettings row.
func (s *SettingsService) CreateShop(settings *db.ShopSettings) error {
	return createSingleton(s.db, settings)
}

// SiteOrDefault returns the stored SiteSettings, creating it with defaults
// when absent. On any storage failure the defaults are returned.
func (s *SettingsService) SiteOrDefault() db.SiteSettings {
	settings, err := getOrCreateSingleton(s.db, db.DefaultSiteSettings())
	if err != nil {
		log.Printf("site settings unavailable, using defaults: %v", err)
		return db.DefaultSiteSettings()
	}
	return settings
}

// DashboardOrDefault returns the stored DashboardSettings or defaults.
func (s *SettingsService) DashboardOrDefault() db.DashboardSettings {
	settings, err := getOrCreateSingleton(s.db, db.DefaultDashboardSettings())
	if err != nil {
		log.Printf("dashboard settings unavailable, using defaults: %v", err)
		return db.DefaultDashboardSettings()
	}
	return settings
}

// ShopOrDefault returns the stored ShopSettings or defaults.
func (s *SettingsService) ShopOrDefault() db.ShopSettings {
	settings, err := getOrCreateSingleton(s.db, db.DefaultShopSettings())
	if err != nil {
		log.Printf("shop settings unavailable, using defaults: %v", err)
		return db.DefaultShopSettings()
	}
	return settings
}

// SiteSettingsInput holds editable SiteSettings fields.
type SiteSettingsInput struct {
	HomepageMode           string
	ShowShopOnHomepage     bool
	ShowBlogOnHomepage     bool
	ShowGalleryOnHomepage  bool
	BusinessName           string
	LogoPath               string
	SiteURL                string
	SupportEmail           string
	SiteAuthor             string
	Social1Name            string
	Social1URL             string
	Social2Name            string
	Social2URL             string
	CopyrightText          string
	DefaultMetaTitle       string
	DefaultMetaDescription string
	CurrencySymbol         string
	CurrencyCode           string
}

// UpdateSite saves SiteSettings, creating the row if needed. Blank required
// fields fall back to their defaults.
func (s *SettingsService) UpdateSite(input SiteSettingsInput) (db.SiteSettings, error) {
	mode := strings.ToUpper(strings.TrimSpace(input.HomepageMode))
	if mode == "" {
		mode = db.HomepageModePages
	}
	if mode != db.HomepageModePages && mode != db.HomepageModeShop {
		return db.SiteSettings{}, ErrHomepageModeInvalid
	}

	settings, err := getOrCreateSingleton(s.db, db.DefaultSiteSettings())
	if err != nil {
		return db.SiteSettings{}, fmt.Errorf("load site settings: %w", err)
	}

	defaults := db.DefaultSiteSettings()
	settings.HomepageMode = mode
	settings.ShowShopOnHomepage = input.ShowShopOnHomepage
	settings.ShowBlogOnHomepage = input.ShowBlogOnHomepage
	settings.ShowGalleryOnHomepage = input.ShowGalleryOnHomepage
	settings.BusinessName = orDefault(input.BusinessName, defaults.BusinessName)
	settings.LogoPath = strings.TrimSpace(input.LogoPath)
	settings.SiteURL = strings.TrimRight(orDefault(input.SiteURL, defaults.SiteURL), "/")
	settings.SupportEmail = orDefault(input.SupportEmail, defaults.SupportEmail)
	settings.SiteAuthor = strings.TrimSpace(input.SiteAuthor)
	settings.Social1Name = strings.TrimSpace(input.Social1Name)
	settings.Social1URL = strings.TrimSpace(input.Social1URL)
	settings.Social2Name = strings.TrimSpace(input.Social2Name)
	settings.Social2URL = strings.TrimSpace(input.Social2URL)
	settings.CopyrightText = strings.TrimSpace(input.CopyrightText)
	settings.DefaultMetaTitle = strings.TrimSpace(input.DefaultMetaTitle)
	settings.DefaultMetaDescription = strings.TrimSpace(input.DefaultMetaDescription)
	settings.CurrencySymbol = orDefault(input.CurrencySymbol, defaults.CurrencySymbol)
	settings.CurrencyCode = strings.ToUpper(orDefault(input.CurrencyCode, defaults.CurrencyCode))

	if err := s.db.Save(&settings).Error; err != nil {
		return db.SiteSettings{}, fmt.Errorf("update site settings: %w", err)
	}
	return settings, nil
}

// DashboardSettingsInput holds editable DashboardSettings fields.
type DashboardSettingsInput struct {
	WelcomeHeading      string
	IntroText           string
	SupportURL          string
	AnnouncementBarText string
	LeftTitle           string
	ResponseTime        string
	SupportHours        string
	PoliciesLink        string
	DocsLink            string
	HelpItems           []string
}

// UpdateDashboard saves DashboardSettings, creating the row if needed.
func (s *SettingsService) UpdateDashboard(input DashboardSettingsInput) (db.DashboardSettings, error) {
	settings, err := getOrCreateSingleton(s.db, db.DefaultDashboardSettings())
	if err != nil {
		return db.DashboardSettings{}, fmt.Errorf("load dashboard settings: %w", err)
	}

	defaults := db.DefaultDashboardSettings()
	settings.WelcomeHeading = orDefault(input.WelcomeHeading, defaults.WelcomeHeading)
	settings.IntroText = strings.TrimSpace(input.IntroText)
	settings.SupportURL = strings.TrimSpace(input.SupportURL)
	settings.AnnouncementBarText = strings.TrimSpace(input.AnnouncementBarText)
	settings.LeftTitle = orDefault(input.LeftTitle, defaults.LeftTitle)
	settings.ResponseTime = orDefault(input.ResponseTime, defaults.ResponseTime)
	settings.SupportHours = orDefault(input.SupportHours, defaults.SupportHours)
	settings.PoliciesLink = strings.TrimSpace(input.PoliciesLink)
	settings.DocsLink = strings.TrimSpace(input.DocsLink)

	slots := []*string{&settings.HelpItem1, &settings.HelpItem2, &settings.HelpItem3, &settings.HelpItem4, &settings.HelpItem5}
	for i, slot := range slots {
		*slot = ""
		if i < len(input.HelpItems) {
			*slot = strings.TrimSpace(input.HelpItems[i])
		}
	}

	if err := s.db.Save(&settings).Error; err != nil {
		return db.DashboardSettings{}, fmt.Errorf("update dashboard settings: %w", err)
	}
	return settings, nil
}

// ShopSettingsInput holds editable ShopSettings fields.
type ShopSettingsInput struct {
	ProductDisplayMode string
	DisplayCategoryID  *uint
	ProductsPerPage    int
	IntroHeading       string
	IntroText          string
}

// UpdateShop saves ShopSettings, creating the row if needed.
func (s *SettingsService) UpdateShop(input ShopSettingsInput) (db.ShopSettings, error) {
	mode := strings.ToLower(strings.TrimSpace(input.ProductDisplayMode))
	switch mode {
	case "":
		mode = db.ProductDisplayAll
	case db.ProductDisplayAll, db.ProductDisplayFeatured, db.ProductDisplayCategory:
	default:
		return db.ShopSettings{}, ErrDisplayModeInvalid
	}

	settings, err := getOrCreateSingleton(s.db, db.DefaultShopSettings())
	if err != nil {
		return db.ShopSettings{}, fmt.Errorf("load shop settings: %w", err)
	}

	defaults := db.DefaultShopSettings()
	settings.ProductDisplayMode = mode
	settings.DisplayCategoryID = input.DisplayCategoryID
	settings.ProductsPerPage = normalizePerPage(input.ProductsPerPage, defaults.ProductsPerPage)
	settings.IntroHeading = orDefault(input.IntroHeading, defaults.IntroHeading)
	settings.IntroText = strings.TrimSpace(input.IntroText)

	if err := s.db.Save(&settings).Error; err != nil {
		return db.ShopSettings{}, fmt.Errorf("update shop settings: %w", err)
	}
	return settings, nil
}

// createSingleton inserts row and maps the unique-key violation to
// ErrSingletonExists.
func createSingleton[T any](gdb *gorm.DB, row *T) error {
	if err := gdb.Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrSingletonExists
		}
		return err
	}
	return nil
}

// getOrCreateSingleton inserts defaults unless a row already holds the
// singleton key, then reads the stored row. Concurrent callers converge on
// the same row because the insert is guarded by the unique index.
func getOrCreateSingleton[T any](gdb *gorm.DB, defaults T) (T, error) {
	var row T
	if gdb == nil {
		return row, errors.New("database not initialized")
	}

	err := gdb.Where("singleton_key = ?", 1).Take(&row).Error
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return row, err
	}

	seed := defaults
	if err := gdb.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return row, err
	}

	if err := gdb.Where("singleton_key = ?", 1).Take(&row).Error; err != nil {
		return row, err
	}
	return row, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
