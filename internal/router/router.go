package router

import (
	"net/http"
	"strings"

	"github.com/ebuilder/internal/config"
	"github.com/ebuilder/internal/handler"
	"github.com/ebuilder/internal/view"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const sessionName = "ebuilder_session"

// SetupRouter configures the Gin engine and its routes.
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
		}))
	}

	r.SetFuncMap(view.FuncMap(api.MediaURL))
	if glob := strings.TrimSpace(cfg.TemplateGlob); glob != "" {
		r.LoadHTMLGlob(glob)
	}

	if cfg.StaticDir != "" {
		r.Static("/static", cfg.StaticDir)
	}
	r.Static(mediaPrefix(cfg.MediaURL), cfg.MediaRoot)

	r.GET("/health", api.HealthCheck)

	site := r.Group("")
	site.Use(api.SiteContext())
	{
		site.GET("/", api.ShowHome)
		site.GET("/about", api.ShowAbout)
		site.GET("/gallery", api.ShowGallery)
		site.GET("/gallery/image/:id", api.ShowGalleryModal)

		site.GET("/blog", api.ShowBlogList)
		site.GET("/blog/category/:slug", api.ShowBlogCategory)
		site.GET("/blog/post/:slug", api.ShowPostDetail)

		site.GET("/shop", api.ShowShop)
		site.GET("/shop/category/:slug", api.ShowShopCategory)
		site.GET("/shop/product/:slug", api.ShowProductDetail)

		accounts := site.Group("/accounts")
		{
			accounts.GET("/login", api.ShowLoginPage)
			accounts.POST("/login", api.Login)
			accounts.GET("/logout", api.Logout)

			auth := accounts.Group("")
			auth.Use(handler.AuthRequired())
			{
				auth.GET("/dashboard", api.ShowDashboard)
			}
		}

		site.GET("/support", handler.AuthRequired(), api.ShowSupport)
		site.GET("/:slug", api.ShowCustomPage)
	}

	admin := r.Group("/admin")
	admin.Use(handler.StaffRequired())
	{
		admin.POST("/upload", api.UploadImage)

		adminAPI := admin.Group("/api")
		{
			adminAPI.GET("/settings/site", api.GetSiteSettings)
			adminAPI.PUT("/settings/site", api.UpdateSiteSettings)
			adminAPI.GET("/settings/dashboard", api.GetDashboardSettings)
			adminAPI.PUT("/settings/dashboard", api.UpdateDashboardSettings)
			adminAPI.GET("/settings/shop", api.GetShopSettings)
			adminAPI.PUT("/settings/shop", api.UpdateShopSettings)

			adminAPI.GET("/pages", api.ListPages)
			adminAPI.POST("/pages", api.CreatePage)
			adminAPI.GET("/pages/:id", api.GetPage)
			adminAPI.PUT("/pages/:id", api.UpdatePage)
			adminAPI.DELETE("/pages/:id", api.DeletePage)
			adminAPI.GET("/pages/:id/blocks", api.ListPageBlocks)
			adminAPI.POST("/pages/:id/blocks", api.CreatePageBlock)
			adminAPI.DELETE("/blocks/:kind/:blockID", api.DeletePageBlock)
			adminAPI.POST("/heroes", api.CreateHero)

			adminAPI.GET("/gallery-images", api.ListGalleryImages)
			adminAPI.POST("/galleries/:id/images", api.CreateGalleryImage)
			adminAPI.PUT("/gallery-images/:id", api.UpdateGalleryImage)
			adminAPI.DELETE("/gallery-images/:id", api.DeleteGalleryImage)

			adminAPI.POST("/posts", api.CreatePost)
			adminAPI.GET("/posts/:id", api.GetPost)
			adminAPI.PUT("/posts/:id", api.UpdatePost)
			adminAPI.DELETE("/posts/:id", api.DeletePost)

			adminAPI.POST("/products", api.CreateProduct)

			adminAPI.POST("/orders", api.CreateOrder)
			adminAPI.GET("/orders/:id", api.GetOrder)
			adminAPI.POST("/orders/:id/paid", api.MarkOrderPaid)
			adminAPI.POST("/orders/:id/confirmation", api.ResendOrderConfirmation)
		}
	}

	r.NoRoute(api.SiteContext(), api.NotFound)

	return r
}

func mediaPrefix(mediaURL string) string {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return "/media"
	}
	return prefix
}
