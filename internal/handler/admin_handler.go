package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/ebuilder/internal/service"
	"github.com/gin-gonic/gin"
)

// adminErrorStatus maps service errors to HTTP statuses for the admin API.
func adminErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPageNotFound),
		errors.Is(err, service.ErrBlockNotFound),
		errors.Is(err, service.ErrGalleryImageNotFound),
		errors.Is(err, service.ErrGalleryBlockNotFound),
		errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrCategoryNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPageSlugExists),
		errors.Is(err, service.ErrPageTemplateTaken),
		errors.Is(err, service.ErrPostSlugExists),
		errors.Is(err, service.ErrProductSlugExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrPageTitleMissing),
		errors.Is(err, service.ErrPageSlugInvalid),
		errors.Is(err, service.ErrPageTemplateInvalid),
		errors.Is(err, service.ErrBlockKindInvalid),
		errors.Is(err, service.ErrSectionTypeInvalid),
		errors.Is(err, service.ErrFAQItemInvalid),
		errors.Is(err, service.ErrHeroTitleMissing),
		errors.Is(err, service.ErrGalleryImageMissing),
		errors.Is(err, service.ErrPostTitleMissing),
		errors.Is(err, service.ErrPostSlugInvalid),
		errors.Is(err, service.ErrPostStatusInvalid),
		errors.Is(err, service.ErrProductTitleMissing),
		errors.Is(err, service.ErrProductSlugInvalid),
		errors.Is(err, service.ErrProductStatusInvalid),
		errors.Is(err, service.ErrProductPriceInvalid),
		errors.Is(err, service.ErrOrderEmailMissing),
		errors.Is(err, service.ErrOrderEmpty):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, err error, fallback string) {
	status := adminErrorStatus(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		respondError(c, status, fallback)
		return
	}
	respondError(c, status, err.Error())
}

type pageRequest struct {
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	Template         string `json:"template"`
	Published        bool   `json:"published"`
	MetaTitle        string `json:"metaTitle"`
	MetaDescription  string `json:"metaDescription"`
	ShowInNavigation bool   `json:"showInNavigation"`
	ShowInFooter     bool   `json:"showInFooter"`
	MenuOrder        int    `json:"menuOrder"`
}

func (r pageRequest) toInput() service.PageInput {
	return service.PageInput{
		Title:            r.Title,
		Slug:             r.Slug,
		Template:         r.Template,
		Published:        r.Published,
		MetaTitle:        r.MetaTitle,
		MetaDescription:  r.MetaDescription,
		ShowInNavigation: r.ShowInNavigation,
		ShowInFooter:     r.ShowInFooter,
		MenuOrder:        r.MenuOrder,
	}
}

// ListPages returns every page.
func (a *API) ListPages(c *gin.Context) {
	pages, err := a.pages.List()
	if err != nil {
		respondServiceError(c, err, "failed to load pages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"pages": pages})
}

// GetPage returns a page with its blocks in render order.
func (a *API) GetPage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	page, err := a.pages.Get(id)
	if err != nil {
		respondServiceError(c, err, "failed to load page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page})
}

// CreatePage adds a page.
func (a *API) CreatePage(c *gin.Context) {
	var payload pageRequest
	if !bindJSON(c, &payload, "invalid page") {
		return
	}

	page, err := a.pages.Create(payload.toInput())
	if err != nil {
		respondServiceError(c, err, "failed to create page")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "page created", "page": page})
}

// UpdatePage saves an existing page.
func (a *API) UpdatePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload pageRequest
	if !bindJSON(c, &payload, "invalid page") {
		return
	}

	page, err := a.pages.Update(id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "failed to update page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "page updated", "page": page})
}

// DeletePage removes a page with its blocks.
func (a *API) DeletePage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.pages.Delete(id); err != nil {
		respondServiceError(c, err, "failed to delete page")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "page deleted"})
}

type blockRequest struct {
	Kind      string `json:"kind"`
	Order     int    `json:"order"`
	Published bool   `json:"published"`

	Title       string `json:"title"`
	SectionType string `json:"sectionType"`
	Subtitle    string `json:"subtitle"`
	Body        string `json:"body"`
	ImagePath   string `json:"imagePath"`
	ButtonText  string `json:"buttonText"`
	ButtonLink  string `json:"buttonLink"`
	Col1Body    string `json:"col1Body"`
	Col2Body    string `json:"col2Body"`

	Columns [3]struct {
		Title     string `json:"title"`
		ImagePath string `json:"imagePath"`
		Body      string `json:"body"`
	} `json:"columns"`

	Items []struct {
		Question  string `json:"question"`
		Answer    string `json:"answer"`
		Order     int    `json:"order"`
		Published bool   `json:"published"`
	} `json:"items"`
}

// ListPageBlocks returns the published blocks of a page in render order.
func (a *API) ListPageBlocks(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := a.pages.Get(id); err != nil {
		respondServiceError(c, err, "failed to load page")
		return
	}

	blocks, err := service.NewBlockService(a.db).ForPage(id)
	if err != nil {
		respondServiceError(c, err, "failed to load blocks")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocks": blocks})
}

// CreatePageBlock adds a block of the requested kind to a page.
func (a *API) CreatePageBlock(c *gin.Context) {
	pageID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload blockRequest
	if !bindJSON(c, &payload, "invalid block") {
		return
	}

	placement := service.BlockPlacement{PageID: pageID, Order: payload.Order, Published: payload.Published}

	var block interface{}
	switch service.BlockKind(payload.Kind) {
	case service.BlockKindSection:
		block, err = a.pages.CreateSection(service.SectionInput{
			BlockPlacement: placement,
			SectionType:    payload.SectionType,
			Title:          payload.Title,
			Subtitle:       payload.Subtitle,
			Body:           payload.Body,
			ImagePath:      payload.ImagePath,
			ButtonText:     payload.ButtonText,
			ButtonLink:     payload.ButtonLink,
			Col1Body:       payload.Col1Body,
			Col2Body:       payload.Col2Body,
		})
	case service.BlockKindThreeColumn:
		input := service.ThreeColumnInput{BlockPlacement: placement}
		for i, column := range payload.Columns {
			input.Titles[i] = column.Title
			input.ImagePaths[i] = column.ImagePath
			input.Bodies[i] = column.Body
		}
		block, err = a.pages.CreateThreeColumn(input)
	case service.BlockKindGallery:
		block, err = a.pages.CreateGalleryBlock(placement, payload.Title)
	case service.BlockKindFAQ:
		items := make([]service.FAQItemInput, 0, len(payload.Items))
		for _, item := range payload.Items {
			items = append(items, service.FAQItemInput{
				Question:  item.Question,
				Answer:    item.Answer,
				Order:     item.Order,
				Published: item.Published,
			})
		}
		block, err = a.pages.CreateFAQBlock(placement, payload.Title, items)
	default:
		err = service.ErrBlockKindInvalid
	}
	if err != nil {
		respondServiceError(c, err, "failed to create block")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "block created", "block": block})
}

// DeletePageBlock removes a block by kind and id.
func (a *API) DeletePageBlock(c *gin.Context) {
	id, err := parseUintParam(c, "blockID")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.pages.DeleteBlock(service.BlockKind(c.Param("kind")), id); err != nil {
		respondServiceError(c, err, "failed to delete block")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "block deleted"})
}

type heroRequest struct {
	PageID     *uint  `json:"pageId"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Body       string `json:"body"`
	ImagePath  string `json:"imagePath"`
	ButtonText string `json:"buttonText"`
	ButtonLink string `json:"buttonLink"`
	IsActive   bool   `json:"isActive"`
	Order      int    `json:"order"`
}

// CreateHero adds a hero, optionally attached to a page.
func (a *API) CreateHero(c *gin.Context) {
	var payload heroRequest
	if !bindJSON(c, &payload, "invalid hero") {
		return
	}

	hero, err := a.pages.CreateHero(service.HeroInput{
		PageID:     payload.PageID,
		Title:      payload.Title,
		Subtitle:   payload.Subtitle,
		Body:       payload.Body,
		ImagePath:  payload.ImagePath,
		ButtonText: payload.ButtonText,
		ButtonLink: payload.ButtonLink,
		IsActive:   payload.IsActive,
		Order:      payload.Order,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create hero")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "hero created", "hero": hero})
}

// ListGalleryImages lists images, optionally of one gallery block.
func (a *API) ListGalleryImages(c *gin.Context) {
	filter := service.GalleryImageFilter{
		Page:    parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage: parsePositiveInt(c.DefaultQuery("perPage", "20"), 20),
	}
	if raw := c.Query("gallery"); raw != "" {
		id := parsePositiveInt(raw, 0)
		if id == 0 {
			respondError(c, http.StatusBadRequest, "invalid gallery")
			return
		}
		filter.GalleryBlockID = uint(id)
	}

	result, err := a.galleryImages.List(filter)
	if err != nil {
		respondServiceError(c, err, "failed to load images")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images":     result.Items,
		"total":      result.Total,
		"page":       result.Page,
		"perPage":    result.PerPage,
		"totalPages": result.TotalPages,
	})
}

func galleryImageInputFromForm(c *gin.Context) service.GalleryImageInput {
	return service.GalleryImageInput{
		Title:     c.PostForm("title"),
		Caption:   c.PostForm("caption"),
		Published: c.PostForm("published") == "true" || c.PostForm("published") == "on",
		Order:     parsePositiveInt(c.PostForm("order"), 0),
	}
}

// CreateGalleryImage uploads an image into a gallery block.
func (a *API) CreateGalleryImage(c *gin.Context) {
	galleryID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, service.ErrGalleryImageMissing.Error())
		return
	}
	src, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "could not read upload")
		return
	}
	defer src.Close()

	item, err := a.galleryImages.Create(galleryID, galleryImageInputFromForm(c), file.Filename, src)
	if err != nil {
		respondServiceError(c, err, "failed to save image")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "image created", "image": item})
}

// UpdateGalleryImage saves image metadata and, when a file is sent, replaces
// the source image.
func (a *API) UpdateGalleryImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	item, err := a.galleryImages.UpdateMetadata(id, galleryImageInputFromForm(c))
	if err != nil {
		respondServiceError(c, err, "failed to update image")
		return
	}

	if file, ferr := c.FormFile("image"); ferr == nil {
		src, err := file.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "could not read upload")
			return
		}
		defer src.Close()

		if item, err = a.galleryImages.ReplaceImage(id, file.Filename, src); err != nil {
			respondServiceError(c, err, "failed to replace image")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "image updated", "image": item})
}

// DeleteGalleryImage removes an image and its files.
func (a *API) DeleteGalleryImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.galleryImages.Delete(id); err != nil {
		respondServiceError(c, err, "failed to delete image")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "image deleted"})
}

type postRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	PublishDate *time.Time `json:"publishDate"`
	CategoryID  *uint      `json:"categoryId"`
}

func (r postRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Excerpt:     r.Excerpt,
		Content:     r.Content,
		Status:      r.Status,
		PublishDate: r.PublishDate,
		CategoryID:  r.CategoryID,
	}
}

// GetPost returns a post by id regardless of status.
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		respondServiceError(c, err, "failed to load post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost adds a blog post.
func (a *API) CreatePost(c *gin.Context) {
	var payload postRequest
	if !bindJSON(c, &payload, "invalid post") {
		return
	}

	post, err := a.posts.Create(payload.toInput())
	if err != nil {
		respondServiceError(c, err, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "post created", "post": post})
}

// UpdatePost saves a blog post.
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload postRequest
	if !bindJSON(c, &payload, "invalid post") {
		return
	}

	post, err := a.posts.Update(id, payload.toInput())
	if err != nil {
		respondServiceError(c, err, "failed to update post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post updated", "post": post})
}

// DeletePost removes a blog post.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.posts.Delete(id); err != nil {
		respondServiceError(c, err, "failed to delete post")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

type productRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImagePath   string `json:"imagePath"`
	PricePence  int64  `json:"pricePence"`
	Status      string `json:"status"`
	IsActive    bool   `json:"isActive"`
	Featured    bool   `json:"featured"`
	Order       int    `json:"order"`
	CategoryID  *uint  `json:"categoryId"`
}

// CreateProduct adds a product to the catalog.
func (a *API) CreateProduct(c *gin.Context) {
	var payload productRequest
	if !bindJSON(c, &payload, "invalid product") {
		return
	}

	product, err := a.shop.CreateProduct(service.ProductInput{
		Title:       payload.Title,
		Slug:        payload.Slug,
		Description: payload.Description,
		ImagePath:   payload.ImagePath,
		PricePence:  payload.PricePence,
		Status:      payload.Status,
		IsActive:    payload.IsActive,
		Featured:    payload.Featured,
		Order:       payload.Order,
		CategoryID:  payload.CategoryID,
	})
	if err != nil {
		respondServiceError(c, err, "failed to create product")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "product created", "product": product})
}

type orderRequest struct {
	Email  string `json:"email"`
	UserID *uint  `json:"userId"`
	Lines  []struct {
		ProductID uint `json:"productId"`
		Quantity  int  `json:"quantity"`
	} `json:"lines"`
}

// CreateOrder records an unpaid order.
func (a *API) CreateOrder(c *gin.Context) {
	var payload orderRequest
	if !bindJSON(c, &payload, "invalid order") {
		return
	}

	lines := make([]service.OrderLineInput, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, service.OrderLineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	order, err := a.orders.Create(payload.Email, payload.UserID, lines)
	if err != nil {
		respondServiceError(c, err, "failed to create order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "order created", "order": order})
}

// GetOrder returns an order with its items.
func (a *API) GetOrder(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := a.orders.Get(id)
	if err != nil {
		respondServiceError(c, err, "failed to load order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "totalPence": order.TotalPence()})
}

// MarkOrderPaid flags an order as paid and sends its emails once.
func (a *API) MarkOrderPaid(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	order, err := a.orders.MarkPaid(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "order saved but the confirmation email failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "order marked paid", "order": order})
}

// ResendOrderConfirmation sends the order emails again.
func (a *API) ResendOrderConfirmation(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.orders.SendConfirmation(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "failed to send confirmation email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "confirmation sent"})
}
