// Package config loads site configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ffacttt-hash/frontend/internal/env"
	"github.com/ffacttt-hash/frontend/internal/seo"
)

const (
	DefaultPort          = "3000"
	DefaultSiteURL       = "http://localhost:3000"
	DefaultAPIURL        = "http://localhost:5000/api"
	DefaultSiteName      = "Reelhouse"
	DefaultAPITimeout    = 10 * time.Second
	DefaultDebounce      = 300 * time.Millisecond
	DefaultSessionIdle   = 10 * time.Minute
	defaultAPIPathSuffix = "/api"
)

type Config struct {
	Env      env.Environment
	Port     string
	LogLevel slog.Level

	SiteURL  string
	SiteName string

	APIURL     string
	APITimeout time.Duration

	SearchDebounce    time.Duration
	SearchSessionIdle time.Duration

	CORSOrigins  []string
	Verification Verification
}

// Verification holds search-engine site verification tokens.
type Verification struct {
	Google string
	Yandex string
	Yahoo  string
}

func Load() (*Config, error) {
	current := env.Parse(env.String(env.Key, string(env.Local)))

	level := slog.LevelDebug
	if current.IsProduction() {
		level = slog.LevelInfo
	}
	if raw := env.String("LOG_LEVEL", ""); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
	}

	cfg := &Config{
		Env:               current,
		Port:              env.String("PORT", DefaultPort),
		LogLevel:          level,
		SiteURL:           strings.TrimRight(env.String("SITE_URL", DefaultSiteURL), "/"),
		SiteName:          env.String("SITE_NAME", DefaultSiteName),
		APIURL:            strings.TrimRight(env.String("API_URL", DefaultAPIURL), "/"),
		APITimeout:        env.Duration("API_TIMEOUT", DefaultAPITimeout),
		SearchDebounce:    env.Duration("SEARCH_DEBOUNCE", DefaultDebounce),
		SearchSessionIdle: env.Duration("SEARCH_SESSION_IDLE", DefaultSessionIdle),
		CORSOrigins:       env.List("CORS_ORIGINS"),
		Verification: Verification{
			Google: env.String("GOOGLE_SITE_VERIFICATION", ""),
			Yandex: env.String("YANDEX_VERIFICATION", ""),
			Yahoo:  env.String("YAHOO_VERIFICATION", ""),
		},
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.SiteURL}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if _, err := url.ParseRequestURI(c.SiteURL); err != nil {
		errs = append(errs, fmt.Errorf("SITE_URL: %w", err))
	}
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		errs = append(errs, fmt.Errorf("API_URL: %w", err))
	}
	if strings.TrimSpace(c.Port) == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	return errors.Join(errs...)
}

// AssetOrigin is the API host that serves posters and redirect links,
// i.e. API_URL without its trailing /api segment.
func (c *Config) AssetOrigin() string {
	return AssetOrigin(c.APIURL)
}

func AssetOrigin(apiURL string) string {
	apiURL = strings.TrimRight(apiURL, "/")
	return strings.TrimSuffix(apiURL, defaultAPIPathSuffix)
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Site is the public identity the pages, feeds and sitemap are built with.
func (c *Config) Site() seo.Site {
	return seo.Site{
		BaseURL:     c.SiteURL,
		AssetOrigin: c.AssetOrigin(),
		Name:        c.SiteName,
		Verification: seo.Verification{
			Google: c.Verification.Google,
			Yandex: c.Verification.Yandex,
			Yahoo:  c.Verification.Yahoo,
		},
	}
}
