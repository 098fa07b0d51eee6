package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/service"
	"github.com/gin-gonic/gin"
)

// BlogPageSize is the number of posts per blog listing page.
const BlogPageSize = 10

// ShowHome renders the home page, the welcome fallback, or redirects to the
// shop depending on the site settings.
func (a *API) ShowHome(c *gin.Context) {
	site := a.siteContext(c).Settings

	result, err := a.pages.ResolveHome(site)
	if err != nil {
		a.serverError(c, err)
		return
	}
	if result.RedirectTo != "" {
		c.Redirect(http.StatusFound, result.RedirectTo)
		return
	}
	if result.Fallback {
		a.renderHTML(c, http.StatusOK, "welcome.html", gin.H{
			"title": site.BusinessName,
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title":            pageTitle(result.View.Page, site),
		"metaDescription":  pageDescription(result.View.Page, site),
		"page":             result.View.Page,
		"blocks":           result.View.Blocks,
		"hero":             result.View.Hero,
		"heroBanner":       result.HeroBanner,
		"posts":            result.Posts,
		"featuredProducts": result.FeaturedProducts,
		"galleryImages":    result.GalleryImages,
	})
}

// ShowAbout renders the page with the about role.
func (a *API) ShowAbout(c *gin.Context) {
	a.showTemplatePage(c, db.PageTemplateAbout, "about.html")
}

// ShowGallery renders the gallery page with every published gallery.
func (a *API) ShowGallery(c *gin.Context) {
	site := a.siteContext(c).Settings

	view, err := a.pages.ResolveTemplate(db.PageTemplateGallery)
	if err != nil && !errors.Is(err, service.ErrPageNotFound) {
		a.serverError(c, err)
		return
	}

	galleries, err := a.pages.GalleryOverview()
	if err != nil {
		a.serverError(c, err)
		return
	}

	data := gin.H{
		"title":     "Gallery",
		"galleries": galleries,
	}
	if view != nil {
		data["title"] = pageTitle(view.Page, site)
		data["metaDescription"] = pageDescription(view.Page, site)
		data["page"] = view.Page
		data["blocks"] = view.Blocks
		data["hero"] = view.Hero
	}
	a.renderHTML(c, http.StatusOK, "gallery.html", data)
}

// ShowGalleryModal renders a single published image for the lightbox.
func (a *API) ShowGalleryModal(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		a.NotFound(c)
		return
	}

	image, err := a.pages.PublishedImage(id)
	if err != nil {
		if errors.Is(err, service.ErrGalleryImageNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "gallery_modal.html", gin.H{
		"title": image.Title,
		"image": image,
	})
}

// ShowCustomPage renders a page by slug, redirecting role pages to their
// canonical route.
func (a *API) ShowCustomPage(c *gin.Context) {
	site := a.siteContext(c).Settings

	result, err := a.pages.ResolveSlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}
	if result.RedirectTo != "" {
		c.Redirect(http.StatusMovedPermanently, result.RedirectTo)
		return
	}

	a.renderHTML(c, http.StatusOK, "custom.html", gin.H{
		"title":           pageTitle(result.View.Page, site),
		"metaDescription": pageDescription(result.View.Page, site),
		"page":            result.View.Page,
		"blocks":          result.View.Blocks,
		"hero":            result.View.Hero,
	})
}

func (a *API) showTemplatePage(c *gin.Context, template, name string) {
	site := a.siteContext(c).Settings

	view, err := a.pages.ResolveTemplate(template)
	if err != nil {
		if errors.Is(err, service.ErrPageNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, name, gin.H{
		"title":           pageTitle(view.Page, site),
		"metaDescription": pageDescription(view.Page, site),
		"page":            view.Page,
		"blocks":          view.Blocks,
		"hero":            view.Hero,
	})
}

// ShowBlogList renders published posts, newest first.
func (a *API) ShowBlogList(c *gin.Context) {
	a.showBlogList(c, "")
}

// ShowBlogCategory renders published posts of one category.
func (a *API) ShowBlogCategory(c *gin.Context) {
	a.showBlogList(c, c.Param("slug"))
}

func (a *API) showBlogList(c *gin.Context, categorySlug string) {
	page := parsePositiveInt(c.DefaultQuery("page", "1"), 1)

	result, err := a.posts.ListPublished(page, BlogPageSize, categorySlug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	categories, err := a.posts.Categories()
	if err != nil {
		c.Error(err)
		log.Printf("failed to load blog categories: %v", err)
	}

	title := "Blog"
	if result.Category != nil {
		title = result.Category.Name
	}

	a.renderHTML(c, http.StatusOK, "blog_list.html", gin.H{
		"title":      title,
		"posts":      result.Posts,
		"category":   result.Category,
		"categories": categories,
		"page":       result.Page,
		"totalPages": result.TotalPages,
		"hasPrev":    result.Page > 1,
		"hasNext":    result.Page < result.TotalPages,
	})
}

// ShowPostDetail renders one published post.
func (a *API) ShowPostDetail(c *gin.Context) {
	post, err := a.posts.GetPublishedBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	a.renderHTML(c, http.StatusOK, "post_detail.html", gin.H{
		"title":           post.Title,
		"metaDescription": post.Excerpt,
		"post":            post,
	})
}

// ShowShop renders the product listing using the shop settings.
func (a *API) ShowShop(c *gin.Context) {
	a.showShopList(c, "")
}

// ShowShopCategory renders the products of one category.
func (a *API) ShowShopCategory(c *gin.Context) {
	a.showShopList(c, c.Param("slug"))
}

func (a *API) showShopList(c *gin.Context, categorySlug string) {
	shop := a.settings.ShopOrDefault()

	result, err := a.shop.ListProducts(service.ProductFilter{
		Settings:     shop,
		CategorySlug: categorySlug,
		Search:       c.Query("q"),
		Page:         parsePositiveInt(c.DefaultQuery("page", "1"), 1),
	})
	if err != nil {
		if errors.Is(err, service.ErrProductCategoryNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	categories, err := a.shop.CategoriesWithProducts()
	if err != nil {
		c.Error(err)
		log.Printf("failed to load shop categories: %v", err)
	}

	title := shop.IntroHeading
	if result.Category != nil {
		title = result.Category.Name
	}

	a.renderHTML(c, http.StatusOK, "shop_list.html", gin.H{
		"title":      title,
		"shop":       shop,
		"products":   result.Products,
		"category":   result.Category,
		"categories": categories,
		"query":      result.Query,
		"total":      result.Total,
		"page":       result.Page,
		"totalPages": result.TotalPages,
		"hasPrev":    result.Page > 1,
		"hasNext":    result.Page < result.TotalPages,
	})
}

// ShowProductDetail renders a product with related products.
func (a *API) ShowProductDetail(c *gin.Context) {
	product, err := a.shop.GetProduct(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			a.NotFound(c)
			return
		}
		a.serverError(c, err)
		return
	}

	related, err := a.shop.RelatedProducts(*product)
	if err != nil {
		c.Error(err)
		log.Printf("failed to load related products for %s: %v", product.Slug, err)
	}

	a.renderHTML(c, http.StatusOK, "product_detail.html", gin.H{
		"title":           product.Title,
		"metaDescription": product.Description,
		"product":         product,
		"related":         related,
	})
}

// NotFound renders the 404 page with post suggestions.
func (a *API) NotFound(c *gin.Context) {
	posts, category, err := a.posts.Suggestions()
	if err != nil {
		c.Error(err)
		log.Printf("failed to load 404 suggestions: %v", err)
	}

	a.renderHTML(c, http.StatusNotFound, "404.html", gin.H{
		"title":              "Page not found",
		"suggestions":        posts,
		"suggestionCategory": category,
	})
}

func (a *API) serverError(c *gin.Context, err error) {
	c.Error(err)
	log.Printf("request %s failed: %v", c.Request.URL.Path, err)
	a.renderHTML(c, http.StatusInternalServerError, "500.html", gin.H{
		"title": "Something went wrong",
	})
}

func pageTitle(page db.Page, site db.SiteSettings) string {
	if title := strings.TrimSpace(page.MetaTitle); title != "" {
		return title
	}
	if page.Title != "" {
		return page.Title
	}
	return site.DefaultMetaTitle
}

func pageDescription(page db.Page, site db.SiteSettings) string {
	if description := strings.TrimSpace(page.MetaDescription); description != "" {
		return description
	}
	return site.DefaultMetaDescription
}
