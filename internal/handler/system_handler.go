package handler

import (
	"errors"
	"net/http"

	"github.com/ebuilder/internal/db"
	"github.com/ebuilder/internal/service"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether the database is reachable.
func (a *API) HealthCheck(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}

type siteSettingsRequest struct {
	HomepageMode           string `json:"homepageMode"`
	ShowShopOnHomepage     bool   `json:"showShopOnHomepage"`
	ShowBlogOnHomepage     bool   `json:"showBlogOnHomepage"`
	ShowGalleryOnHomepage  bool   `json:"showGalleryOnHomepage"`
	BusinessName           string `json:"businessName"`
	LogoPath               string `json:"logoPath"`
	SiteURL                string `json:"siteUrl"`
	SupportEmail           string `json:"supportEmail"`
	SiteAuthor             string `json:"siteAuthor"`
	Social1Name            string `json:"social1Name"`
	Social1URL             string `json:"social1Url"`
	Social2Name            string `json:"social2Name"`
	Social2URL             string `json:"social2Url"`
	CopyrightText          string `json:"copyrightText"`
	DefaultMetaTitle       string `json:"defaultMetaTitle"`
	DefaultMetaDescription string `json:"defaultMetaDescription"`
	CurrencySymbol         string `json:"currencySymbol"`
	CurrencyCode           string `json:"currencyCode"`
}

func (r siteSettingsRequest) toInput() service.SiteSettingsInput {
	return service.SiteSettingsInput{
		HomepageMode:           r.HomepageMode,
		ShowShopOnHomepage:     r.ShowShopOnHomepage,
		ShowBlogOnHomepage:     r.ShowBlogOnHomepage,
		ShowGalleryOnHomepage:  r.ShowGalleryOnHomepage,
		BusinessName:           r.BusinessName,
		LogoPath:               r.LogoPath,
		SiteURL:                r.SiteURL,
		SupportEmail:           r.SupportEmail,
		SiteAuthor:             r.SiteAuthor,
		Social1Name:            r.Social1Name,
		Social1URL:             r.Social1URL,
		Social2Name:            r.Social2Name,
		Social2URL:             r.Social2URL,
		CopyrightText:          r.CopyrightText,
		DefaultMetaTitle:       r.DefaultMetaTitle,
		DefaultMetaDescription: r.DefaultMetaDescription,
		CurrencySymbol:         r.CurrencySymbol,
		CurrencyCode:           r.CurrencyCode,
	}
}

func siteSettingsPayload(s db.SiteSettings) gin.H {
	return gin.H{
		"homepageMode":           s.HomepageMode,
		"showShopOnHomepage":     s.ShowShopOnHomepage,
		"showBlogOnHomepage":     s.ShowBlogOnHomepage,
		"showGalleryOnHomepage":  s.ShowGalleryOnHomepage,
		"businessName":           s.BusinessName,
		"logoPath":               s.LogoPath,
		"siteUrl":                s.SiteURL,
		"supportEmail":           s.SupportEmail,
		"siteAuthor":             s.SiteAuthor,
		"social1Name":            s.Social1Name,
		"social1Url":             s.Social1URL,
		"social2Name":            s.Social2Name,
		"social2Url":             s.Social2URL,
		"copyrightText":          s.CopyrightText,
		"defaultMetaTitle":       s.DefaultMetaTitle,
		"defaultMetaDescription": s.DefaultMetaDescription,
		"currencySymbol":         s.CurrencySymbol,
		"currencyCode":           s.CurrencyCode,
	}
}

// GetSiteSettings returns the site settings.
func (a *API) GetSiteSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": siteSettingsPayload(a.settings.SiteOrDefault())})
}

// UpdateSiteSettings saves the site settings.
func (a *API) UpdateSiteSettings(c *gin.Context) {
	var payload siteSettingsRequest
	if !bindJSON(c, &payload, "invalid site settings") {
		return
	}

	settings, err := a.settings.UpdateSite(payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrHomepageModeInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save site settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "site settings saved", "settings": siteSettingsPayload(settings)})
}

type dashboardSettingsRequest struct {
	WelcomeHeading      string   `json:"welcomeHeading"`
	IntroText           string   `json:"introText"`
	SupportURL          string   `json:"supportUrl"`
	AnnouncementBarText string   `json:"announcementBarText"`
	LeftTitle           string   `json:"leftTitle"`
	ResponseTime        string   `json:"responseTime"`
	SupportHours        string   `json:"supportHours"`
	PoliciesLink        string   `json:"policiesLink"`
	DocsLink            string   `json:"docsLink"`
	HelpItems           []string `json:"helpItems"`
}

func dashboardSettingsPayload(s db.DashboardSettings) gin.H {
	return gin.H{
		"welcomeHeading":      s.WelcomeHeading,
		"introText":           s.IntroText,
		"supportUrl":          s.SupportURL,
		"announcementBarText": s.AnnouncementBarText,
		"leftTitle":           s.LeftTitle,
		"responseTime":        s.ResponseTime,
		"supportHours":        s.SupportHours,
		"policiesLink":        s.PoliciesLink,
		"docsLink":            s.DocsLink,
		"helpItems":           s.HelpItems(),
	}
}

// GetDashboardSettings returns the customer dashboard settings.
func (a *API) GetDashboardSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": dashboardSettingsPayload(a.settings.DashboardOrDefault())})
}

// UpdateDashboardSettings saves the customer dashboard settings.
func (a *API) UpdateDashboardSettings(c *gin.Context) {
	var payload dashboardSettingsRequest
	if !bindJSON(c, &payload, "invalid dashboard settings") {
		return
	}

	settings, err := a.settings.UpdateDashboard(service.DashboardSettingsInput{
		WelcomeHeading:      payload.WelcomeHeading,
		IntroText:           payload.IntroText,
		SupportURL:          payload.SupportURL,
		AnnouncementBarText: payload.AnnouncementBarText,
		LeftTitle:           payload.LeftTitle,
		ResponseTime:        payload.ResponseTime,
		SupportHours:        payload.SupportHours,
		PoliciesLink:        payload.PoliciesLink,
		DocsLink:            payload.DocsLink,
		HelpItems:           payload.HelpItems,
	})
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save dashboard settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dashboard settings saved", "settings": dashboardSettingsPayload(settings)})
}

type shopSettingsRequest struct {
	ProductDisplayMode string `json:"productDisplayMode"`
	DisplayCategoryID  *uint  `json:"displayCategoryId"`
	ProductsPerPage    int    `json:"productsPerPage"`
	IntroHeading       string `json:"introHeading"`
	IntroText          string `json:"introText"`
}

func shopSettingsPayload(s db.ShopSettings) gin.H {
	return gin.H{
		"productDisplayMode": s.ProductDisplayMode,
		"displayCategoryId":  s.DisplayCategoryID,
		"productsPerPage":    s.ProductsPerPage,
		"introHeading":       s.IntroHeading,
		"introText":          s.IntroText,
	}
}

// GetShopSettings returns the shop listing settings.
func (a *API) GetShopSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"settings": shopSettingsPayload(a.settings.ShopOrDefault())})
}

// UpdateShopSettings saves the shop listing settings.
func (a *API) UpdateShopSettings(c *gin.Context) {
	var payload shopSettingsRequest
	if !bindJSON(c, &payload, "invalid shop settings") {
		return
	}

	settings, err := a.settings.UpdateShop(service.ShopSettingsInput{
		ProductDisplayMode: payload.ProductDisplayMode,
		DisplayCategoryID:  payload.DisplayCategoryID,
		ProductsPerPage:    payload.ProductsPerPage,
		IntroHeading:       payload.IntroHeading,
		IntroText:          payload.IntroText,
	})
	if err != nil {
		if errors.Is(err, service.ErrDisplayModeInvalid) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "failed to save shop settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "shop settings saved", "settings": shopSettingsPayload(settings)})
}
