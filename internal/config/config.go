package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig collects the settings needed to run the site.
type AppConfig struct {
	ListenAddr         string
	Port               string
	DatabaseURL        string
	SessionSecret      string
	GinMode            string
	MediaRoot          string
	MediaURL           string
	StaticDir          string
	TemplateGlob       string
	SiteBaseURL        string
	CORSAllowedOrigins []string
	Email              EmailConfig
	SuperRootEmail     string
	SuperRootPassword  string
}

// EmailConfig selects and configures the outgoing mail backend.
type EmailConfig struct {
	Backend      string
	Host         string
	Port         int
	HostUser     string
	HostPassword string
	FromAddress  string
	AdminAddress string
}

// Email backends.
const (
	EmailBackendConsole = "console"
	EmailBackendSMTP    = "smtp"
)

var defaults = map[string]interface{}{
	"port":                 "8080",
	"database_url":         "ebuilder.db",
	"session_secret":       "ebuilder-dev-secret",
	"gin_mode":             "release",
	"media_root":           "media",
	"media_url":            "/media",
	"static_dir":           "web/static",
	"template_glob":        "web/template/*.html",
	"site_base_url":        "http://localhost:8080",
	"cors_allowed_origins": "",
	"email_backend":        EmailBackendConsole,
	"email_host":           "localhost",
	"email_port":           587,
	"email_host_user":      "",
	"email_host_password":  "",
	"default_from_email":   "noreply@example.com",
	"admin_email":          "admin@example.com",
	"super_root_email":     "",
	"super_root_password":  "",
}

// Load reads .env, an optional config file and the environment, filling gaps
// with defaults. configFile may be empty.
func Load(configFile string) (AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) AppConfig {
	port := stringOr(v, "port")

	listenAddr := strings.TrimSpace(v.GetString("listen_addr"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	mediaURL := "/" + strings.Trim(stringOr(v, "media_url"), "/")

	emailPort := v.GetInt("email_port")
	if emailPort <= 0 {
		emailPort = defaults["email_port"].(int)
	}

	backend := strings.ToLower(stringOr(v, "email_backend"))
	if backend != EmailBackendSMTP {
		backend = EmailBackendConsole
	}

	return AppConfig{
		ListenAddr:         listenAddr,
		Port:               port,
		DatabaseURL:        stringOr(v, "database_url"),
		SessionSecret:      stringOr(v, "session_secret"),
		GinMode:            stringOr(v, "gin_mode"),
		MediaRoot:          stringOr(v, "media_root"),
		MediaURL:           mediaURL,
		StaticDir:          stringOr(v, "static_dir"),
		TemplateGlob:       stringOr(v, "template_glob"),
		SiteBaseURL:        strings.TrimRight(stringOr(v, "site_base_url"), "/"),
		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		Email: EmailConfig{
			Backend:      backend,
			Host:         stringOr(v, "email_host"),
			Port:         emailPort,
			HostUser:     strings.TrimSpace(v.GetString("email_host_user")),
			HostPassword: strings.TrimSpace(v.GetString("email_host_password")),
			FromAddress:  stringOr(v, "default_from_email"),
			AdminAddress: stringOr(v, "admin_email"),
		},
		SuperRootEmail:    strings.TrimSpace(v.GetString("super_root_email")),
		SuperRootPassword: strings.TrimSpace(v.GetString("super_root_password")),
	}
}

// stringOr returns the trimmed value for key, or its default when blank.
func stringOr(v *viper.Viper, key string) string {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		if fallback, ok := defaults[key].(string); ok {
			return fallback
		}
	}
	return value
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
