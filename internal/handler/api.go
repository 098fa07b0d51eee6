package handler

import (
	"log"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/mail"
	"github.com/ebuilder/internal/service"
	"github.com/ebuilder/internal/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db            *gorm.DB
	settings      *service.SettingsService
	pages         *service.PageService
	galleryImages *service.GalleryImageService
	posts         *service.PostService
	shop          *service.ShopService
	orders        *service.OrderService
	accounts      *service.AccountService
	files         *storage.Local
}

// Options configures NewAPI.
type Options struct {
	Files  *storage.Local
	Sender mail.Sender
	Mail   service.OrderMailConfig
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	settings := service.NewSettingsService(gdb)
	var files service.FileStore
	if opts.Files != nil {
		files = opts.Files
	}
	return &API{
		db:            gdb,
		settings:      settings,
		pages:         service.NewPageService(gdb, files),
		galleryImages: service.NewGalleryImageService(gdb, files),
		posts:         service.NewPostService(gdb),
		shop:          service.NewShopService(gdb),
		orders:        service.NewOrderService(gdb, settings, opts.Sender, opts.Mail),
		accounts:      service.NewAccountService(gdb),
		files:         opts.Files,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// MediaURL maps a stored media name to its public URL.
func (a *API) MediaURL(name string) string {
	return a.files.URL(name)
}

type siteContext struct {
	Settings    db.SiteSettings
	NavPages    []db.Page
	FooterPages []db.Page
}

const siteContextKey = "__site_context"

// SiteContext resolves the site settings and menu pages once per request.
func (a *API) SiteContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		a.siteContext(c)
		c.Next()
	}
}

func (a *API) siteContext(c *gin.Context) siteContext {
	if cached, exists := c.Get(siteContextKey); exists {
		if ctx, ok := cached.(siteContext); ok {
			return ctx
		}
	}

	ctx := siteContext{Settings: a.settings.SiteOrDefault()}

	var err error
	if ctx.NavPages, err = a.pages.Navigation(); err != nil {
		log.Printf("failed to load navigation pages: %v", err)
		c.Error(err)
	}
	if ctx.FooterPages, err = a.pages.FooterPages(); err != nil {
		log.Printf("failed to load footer pages: %v", err)
		c.Error(err)
	}

	c.Set(siteContextKey, ctx)
	return ctx
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	ctx := a.siteContext(c)

	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	defaults := gin.H{
		"site":        ctx.Settings,
		"navPages":    ctx.NavPages,
		"footerPages": ctx.FooterPages,
		"homeURL":     ctx.Settings.HomeURL(),
		"socialLinks": ctx.Settings.SocialLinks(),
		"copyright":   ctx.Settings.Copyright(),
		"currentUser": currentUser(c),
	}
	for key, value := range defaults {
		if _, exists := payload[key]; !exists {
			payload[key] = value
		}
	}
	if _, exists := payload["title"]; !exists {
		payload["title"] = ctx.Settings.DefaultMetaTitle
	}

	c.HTML(status, template, payload)
}
