package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/mail"
	"github.com/ebuilder/internal/service"
	"github.com/ebuilder/internal/storage"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubHTMLRender struct {
	lastName string
	lastData interface{}
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.lastName = name
	r.lastData = data
	return stubHTMLInstance{}
}

func (stubHTMLInstance) Render(http.ResponseWriter) error { return nil }

func (stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type countingSender struct {
	sent []mail.Message
}

func (s *countingSender) Send(_ context.Context, msg mail.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func setupTestAPI(t *testing.T) (*API, *countingSender) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	sender := &countingSender{}
	api := NewAPI(gdb, Options{
		Files:  storage.NewLocal(t.TempDir(), "/media"),
		Sender: sender,
		Mail:   service.OrderMailConfig{From: "shop@example.com"},
	})
	return api, sender
}

// newTestRouter mounts routes behind a session whose values are preset by
// the first middleware.
func newTestRouter(values map[string]interface{}) (*gin.Engine, *stubHTMLRender) {
	renderer := &stubHTMLRender{}
	router := gin.New()
	router.HTMLRender = renderer
	router.Use(sessions.Sessions("test", cookie.NewStore([]byte("test-secret"))))
	router.Use(func(c *gin.Context) {
		session := sessions.Default(c)
		for key, value := range values {
			session.Set(key, value)
		}
		c.Next()
	})
	return router, renderer
}

func staffSession() map[string]interface{} {
	return map[string]interface{}{sessionUserID: uint(1), sessionEmail: "staff@example.com", sessionIsStaff: true}
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestStaffRequired(t *testing.T) {
	tests := []struct {
		name    string
		session map[string]interface{}
		want    int
	}{
		{name: "anonymous", session: nil, want: http.StatusUnauthorized},
		{name: "customer", session: map[string]interface{}{sessionUserID: uint(2), sessionIsStaff: false}, want: http.StatusForbidden},
		{name: "staff", session: staffSession(), want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(tt.session)
			router.GET("/admin/ping", StaffRequired(), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"/accounts/dashboard":  "/accounts/dashboard",
		"https://evil.example": "",
		"//evil.example":       "",
		"/\\evil.example":      "",
		"/\t/evil.example":     "",
		"/\r\n/evil.example":   "",
		"/\n/evil.example":     "",
		"/ok\\..\\evil":        "",
		"/shop?q=brush#top":    "/shop?q=brush#top",
		"":                     "",
	}
	for input, want := range tests {
		if got := safeNext(input); got != want {
			t.Fatalf("safeNext(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	api, _ := setupTestAPI(t)
	if err := db.EnsureStaff(api.DB(), "staff@example.com", "long-enough"); err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}

	router, renderer := newTestRouter(nil)
	router.POST("/accounts/login", api.Login)

	req := httptest.NewRequest(http.MethodPost, "/accounts/login", strings.NewReader("email=staff%40example.com&password=wrong"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if renderer.lastName != "login.html" {
		t.Fatalf("expected login template, got %q", renderer.lastName)
	}
	payload := renderer.lastData.(gin.H)
	if payload["error"] != "Invalid email or password" {
		t.Fatalf("unexpected error message %v", payload["error"])
	}
}

func TestRenderHTMLAddsSiteContext(t *testing.T) {
	api, _ := setupTestAPI(t)
	if _, err := api.settings.UpdateSite(service.SiteSettingsInput{
		BusinessName: "Acme Studio",
		HomepageMode: db.HomepageModeShop,
		Social1Name:  "github",
		Social1URL:   "https://github.com/acme",
	}); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}
	if _, err := api.pages.Create(service.PageInput{Title: "Contact", Published: true, ShowInNavigation: true}); err != nil {
		t.Fatalf("failed to create page: %v", err)
	}

	router, renderer := newTestRouter(nil)
	router.Use(api.SiteContext())
	router.GET("/shop", api.ShowShop)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/shop", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	payload := renderer.lastData.(gin.H)
	site := payload["site"].(db.SiteSettings)
	if site.BusinessName != "Acme Studio" {
		t.Fatalf("expected business name in context, got %q", site.BusinessName)
	}
	if payload["homeURL"] != "/shop" {
		t.Fatalf("expected shop home url, got %v", payload["homeURL"])
	}
	if nav := payload["navPages"].([]db.Page); len(nav) != 1 || nav[0].Slug != "contact" {
		t.Fatalf("unexpected navigation %+v", nav)
	}
	if links := payload["socialLinks"].([]db.SocialLink); len(links) != 1 {
		t.Fatalf("expected one social link, got %d", len(links))
	}
	if payload["copyright"] != "© Acme Studio. All rights reserved." {
		t.Fatalf("unexpected copyright %v", payload["copyright"])
	}
}

func TestNotFoundOffersSuggestions(t *testing.T) {
	api, _ := setupTestAPI(t)
	publish := time.Now().Add(-time.Hour)
	if _, err := api.posts.Create(service.PostInput{Title: "Hello there", Status: db.PostStatusPublished, PublishDate: &publish}); err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	router, renderer := newTestRouter(nil)
	router.NoRoute(api.NotFound)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if renderer.lastName != "404.html" {
		t.Fatalf("expected 404 template, got %q", renderer.lastName)
	}
	suggestions := renderer.lastData.(gin.H)["suggestions"].([]db.Post)
	if len(suggestions) != 1 || suggestions[0].Title != "Hello there" {
		t.Fatalf("unexpected suggestions %+v", suggestions)
	}
}

func TestAdminPageAndBlockLifecycle(t *testing.T) {
	api, _ := setupTestAPI(t)
	router, _ := newTestRouter(staffSession())
	router.POST("/pages", StaffRequired(), api.CreatePage)
	router.POST("/pages/:id/blocks", StaffRequired(), api.CreatePageBlock)
	router.GET("/pages/:id/blocks", StaffRequired(), api.ListPageBlocks)
	router.DELETE("/blocks/:kind/:blockID", StaffRequired(), api.DeletePageBlock)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, jsonRequest(t, http.MethodPost, "/pages", gin.H{"title": "Services", "published": true}))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created struct {
		Page db.Page `json:"page"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}

	duplicate := httptest.NewRecorder()
	router.ServeHTTP(duplicate, jsonRequest(t, http.MethodPost, "/pages", gin.H{"title": "Services"}))
	if duplicate.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate slug, got %d", duplicate.Code)
	}

	blocksURL := fmt.Sprintf("/pages/%d/blocks", created.Page.ID)
	for _, body := range []gin.H{
		{"kind": "faq", "order": 1, "published": true, "title": "Questions", "items": []gin.H{{"question": "Why?", "answer": "Because.", "published": true}}},
		{"kind": "section", "order": 1, "published": true, "title": "Intro", "body": "Hello"},
	} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, jsonRequest(t, http.MethodPost, blocksURL, body))
		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
	}

	invalid := httptest.NewRecorder()
	router.ServeHTTP(invalid, jsonRequest(t, http.MethodPost, blocksURL, gin.H{"kind": "carousel"}))
	if invalid.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", invalid.Code)
	}

	list := httptest.NewRecorder()
	router.ServeHTTP(list, httptest.NewRequest(http.MethodGet, blocksURL, nil))
	var listed struct {
		Blocks []service.ContentBlock `json:"blocks"`
	}
	if err := json.Unmarshal(list.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode blocks: %v", err)
	}
	if len(listed.Blocks) != 2 || listed.Blocks[0].Kind != service.BlockKindSection || listed.Blocks[1].Kind != service.BlockKindFAQ {
		t.Fatalf("unexpected block order %+v", listed.Blocks)
	}

	del := httptest.NewRecorder()
	router.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/blocks/faq/%d", listed.Blocks[1].ID), nil))
	if del.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", del.Code)
	}

	again := httptest.NewRecorder()
	router.ServeHTTP(again, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/blocks/faq/%d", listed.Blocks[1].ID), nil))
	if again.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", again.Code)
	}
}

func TestUpdateSiteSettingsValidatesMode(t *testing.T) {
	api, _ := setupTestAPI(t)
	router, _ := newTestRouter(staffSession())
	router.PUT("/settings/site", api.UpdateSiteSettings)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, jsonRequest(t, http.MethodPut, "/settings/site", gin.H{"homepageMode": "blog"}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	ok := httptest.NewRecorder()
	router.ServeHTTP(ok, jsonRequest(t, http.MethodPut, "/settings/site", gin.H{"homepageMode": "shop", "businessName": "Acme"}))
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ok.Code, ok.Body.String())
	}
	if got := api.settings.SiteOrDefault(); got.HomepageMode != db.HomepageModeShop || got.BusinessName != "Acme" {
		t.Fatalf("settings not persisted: %+v", got)
	}
}

func TestMarkOrderPaidSendsEmails(t *testing.T) {
	api, sender := setupTestAPI(t)
	product, err := api.shop.CreateProduct(service.ProductInput{Title: "Course", PricePence: 1500, Status: db.ProductStatusPublish, IsActive: true})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	order, err := api.orders.Create("buyer@example.com", nil, []service.OrderLineInput{{ProductID: product.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("failed to create order: %v", err)
	}

	router, _ := newTestRouter(staffSession())
	router.POST("/orders/:id/paid", api.MarkOrderPaid)

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/paid", order.ID), nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected customer and admin emails once, got %d", len(sender.sent))
	}
}
