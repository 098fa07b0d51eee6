// Package view holds the helpers exposed to HTML templates.
package view

import (
	"html/template"
	"strings"
	"time"

	"github.com/ebuilder/internal/db"
)

// FuncMap returns the template functions. mediaURL maps a stored media name
// to its public URL.
func FuncMap(mediaURL func(string) string) template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"sub": func(a, b int) int {
			return a - b
		},
		"markdown": Markdown,
		"currency": func(symbol string, pence int64) string {
			return db.FormatPence(symbol, pence)
		},
		"youtubeID":    YouTubeID,
		"youtubeEmbed": YouTubeEmbedURL,
		"socialIcon":   SocialIcon,
		"media": func(name string) string {
			name = strings.TrimSpace(name)
			if name == "" || strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") || strings.HasPrefix(name, "/") {
				return name
			}
			return mediaURL(name)
		},
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2 January 2006")
		},
		"year": func() int {
			return time.Now().Year()
		},
	}
}
