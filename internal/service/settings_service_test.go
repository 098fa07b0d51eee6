package service

import (
	"errors"
	"sync"
	"testing"

	"github.com/ebuilder/internal/db"
)

func TestCreateSiteRejectsSecondRow(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb)

	if err := svc.CreateSite(&db.SiteSettings{HomepageMode: db.HomepageModePages, BusinessName: "First"}); err != nil {
		t.Fatalf("first CreateSite returned error: %v", err)
	}

	err := svc.CreateSite(&db.SiteSettings{HomepageMode: db.HomepageModeShop, BusinessName: "Second"})
	if !errors.Is(err, ErrSingletonExists) {
		t.Fatalf("expected ErrSingletonExists, got %v", err)
	}

	var count int64
	gdb.Model(&db.SiteSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row, got %d", count)
	}
}

func TestCreateDashboardRejectsSecondRow(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb)

	first := db.DefaultDashboardSettings()
	if err := svc.CreateDashboard(&first); err != nil {
		t.Fatalf("first CreateDashboard returned error: %v", err)
	}
	second := db.DefaultDashboardSettings()
	if err := svc.CreateDashboard(&second); !errors.Is(err, ErrSingletonExists) {
		t.Fatalf("expected ErrSingletonExists, got %v", err)
	}
}

func TestSiteOrDefaultIsIdempotent(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb)

	first := svc.SiteOrDefault()
	second := svc.SiteOrDefault()

	if first.ID == 0 || first.ID != second.ID {
		t.Fatalf("expected the same stored row, got ids %d and %d", first.ID, second.ID)
	}
	if first.BusinessName != "My Site" || first.HomepageMode != db.HomepageModePages {
		t.Fatalf("expected defaults, got %+v", first)
	}

	var count int64
	gdb.Model(&db.SiteSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one row, got %d", count)
	}
}

func TestSiteOrDefaultConcurrentCallersShareRow(t *testing.T) {
	gdb := setupServiceTestDB(t)
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	svc := NewSettingsService(gdb)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.ShopOrDefault()
		}()
	}
	wg.Wait()

	var count int64
	gdb.Model(&db.ShopSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected one shop settings row, got %d", count)
	}
}

func TestSiteOrDefaultFallsBackWhenStoreFails(t *testing.T) {
	gdb := setupServiceTestDB(t)
	if err := gdb.Migrator().DropTable(&db.SiteSettings{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	settings := NewSettingsService(gdb).SiteOrDefault()
	if settings.BusinessName != "My Site" || settings.CurrencySymbol != "£" {
		t.Fatalf("expected default settings, got %+v", settings)
	}
}

func TestUpdateSitePersistsAndNormalizes(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewSettingsService(gdb)

	updated, err := svc.UpdateSite(SiteSettingsInput{
		HomepageMode: "shop",
		BusinessName: "  Maker Studio ",
		SiteURL:      "https://maker.example/",
		CurrencyCode: "eur",
	})
	if err != nil {
		t.Fatalf("UpdateSite returned error: %v", err)
	}

	if updated.HomepageMode != db.HomepageModeShop {
		t.Fatalf("expected SHOP mode, got %s", updated.HomepageMode)
	}
	if updated.SiteURL != "https://maker.example" {
		t.Fatalf("expected trailing slash trimmed, got %s", updated.SiteURL)
	}
	if updated.CurrencyCode != "EUR" || updated.CurrencySymbol != "£" {
		t.Fatalf("unexpected currency %s %s", updated.CurrencySymbol, updated.CurrencyCode)
	}

	reloaded := svc.SiteOrDefault()
	if reloaded.BusinessName != "Maker Studio" || reloaded.HomeURL() != "/shop" {
		t.Fatalf("expected persisted settings, got %+v", reloaded)
	}
}

func TestUpdateSiteRejectsUnknownMode(t *testing.T) {
	svc := NewSettingsService(setupServiceTestDB(t))
	if _, err := svc.UpdateSite(SiteSettingsInput{HomepageMode: "BLOG"}); !errors.Is(err, ErrHomepageModeInvalid) {
		t.Fatalf("expected ErrHomepageModeInvalid, got %v", err)
	}
}

func TestUpdateDashboardHelpItems(t *testing.T) {
	svc := NewSettingsService(setupServiceTestDB(t))

	updated, err := svc.UpdateDashboard(DashboardSettingsInput{
		HelpItems: []string{"Downloads", " ", "Refunds"},
	})
	if err != nil {
		t.Fatalf("UpdateDashboard returned error: %v", err)
	}

	items := updated.HelpItems()
	if len(items) != 2 || items[0] != "Downloads" || items[1] != "Refunds" {
		t.Fatalf("unexpected help items %v", items)
	}
	if updated.WelcomeHeading != "Welcome," {
		t.Fatalf("expected default heading, got %q", updated.WelcomeHeading)
	}
	if updated.SupportPath() != "/support" {
		t.Fatalf("expected built-in support path, got %s", updated.SupportPath())
	}
}

func TestUpdateShopValidatesMode(t *testing.T) {
	svc := NewSettingsService(setupServiceTestDB(t))

	if _, err := svc.UpdateShop(ShopSettingsInput{ProductDisplayMode: "random"}); !errors.Is(err, ErrDisplayModeInvalid) {
		t.Fatalf("expected ErrDisplayModeInvalid, got %v", err)
	}

	updated, err := svc.UpdateShop(ShopSettingsInput{ProductDisplayMode: "Featured", ProductsPerPage: 0})
	if err != nil {
		t.Fatalf("UpdateShop returned error: %v", err)
	}
	if updated.ProductDisplayMode != db.ProductDisplayFeatured || updated.ProductsPerPage != 12 {
		t.Fatalf("unexpected shop settings %+v", updated)
	}
}
