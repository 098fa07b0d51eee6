package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/ebuilder/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionUserID  = "user_id"
	sessionEmail   = "email"
	sessionIsStaff = "is_staff"
	loginPath      = "/accounts/login"
)

type sessionUser struct {
	ID      uint
	Email   string
	IsStaff bool
}

func currentUser(c *gin.Context) *sessionUser {
	session := sessions.Default(c)
	id, ok := session.Get(sessionUserID).(uint)
	if !ok || id == 0 {
		return nil
	}
	email, _ := session.Get(sessionEmail).(string)
	staff, _ := session.Get(sessionIsStaff).(bool)
	return &sessionUser{ID: id, Email: email, IsStaff: staff}
}

// ShowLoginPage renders the login form.
func (a *API) ShowLoginPage(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Log in",
		"next":  safeNext(c.Query("next")),
	})
}

// Login checks the submitted credentials and starts a session.
func (a *API) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	next := safeNext(c.PostForm("next"))

	user, err := a.accounts.Authenticate(email, password)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Login failed, please try again"
		if errors.Is(err, service.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
			message = "Invalid email or password"
		} else {
			c.Error(err)
		}
		a.renderHTML(c, status, "login.html", gin.H{
			"title": "Log in",
			"error": message,
			"email": email,
			"next":  next,
		})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionUserID, user.ID)
	session.Set(sessionEmail, user.Email)
	session.Set(sessionIsStaff, user.IsStaff)
	if err := session.Save(); err != nil {
		log.Printf("failed to save session for user %d: %v", user.ID, err)
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "Log in",
			"error": "Could not start your session",
		})
		return
	}

	if next == "" {
		next = "/accounts/dashboard"
	}
	c.Redirect(http.StatusFound, next)
}

// Logout clears the session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, loginPath)
}

// AuthRequired redirects anonymous visitors to the login page.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffRequired rejects requests without a staff session with a JSON error.
func StaffRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if !user.IsStaff {
			respondError(c, http.StatusForbidden, "staff access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ShowDashboard renders the customer dashboard with paid orders.
func (a *API) ShowDashboard(c *gin.Context) {
	user := currentUser(c)
	account, err := a.accounts.Get(user.ID)
	if err != nil {
		c.Error(err)
		a.Logout(c)
		return
	}

	orders, err := a.orders.PaidForUser(user.ID)
	if err != nil {
		c.Error(err)
		log.Printf("failed to load orders for user %d: %v", user.ID, err)
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":     "Dashboard",
		"account":   account,
		"orders":    orders,
		"dashboard": a.settings.DashboardOrDefault(),
	})
}

// ShowSupport renders the support page.
func (a *API) ShowSupport(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "support.html", gin.H{
		"title":     "Support",
		"dashboard": a.settings.DashboardOrDefault(),
	})
}

// safeNext only allows local absolute paths as redirect targets. Control
// characters and backslashes are rejected because browsers drop or rewrite
// them, which can turn a local path into a host.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return ""
	}
	if strings.ContainsRune(next, '\\') || strings.IndexFunc(next, unicode.IsControl) >= 0 {
		return ""
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}
	return next
}
