// Package handlers wires HTTP routing and the page, fragment, feed and
// search handlers.
package handlers

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/detail"
	"github.com/ffacttt-hash/frontend/internal/grid"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/search"
	"github.com/ffacttt-hash/frontend/internal/seo"
	"github.com/ffacttt-hash/frontend/internal/web"
)

const defaultKeepAlive = 20 * time.Second

// Catalog is everything the handlers read from the catalog API.
type Catalog interface {
	grid.Lister
	detail.Finder
	search.Backend
	GetFeaturedMovies(ctx context.Context, limit int) (catalog.Response[[]catalog.Movie], error)
	GetCategories(ctx context.Context) (catalog.Response[[]catalog.Facet], error)
	GetGenres(ctx context.Context) (catalog.Response[[]catalog.Facet], error)
	HealthCheck(ctx context.Context) (catalog.Response[catalog.Health], error)
}

type Handler struct {
	catalog     Catalog
	sessions    *search.Registry
	renderer    *web.Renderer
	site        seo.Site
	static      fs.FS
	corsOrigins []string
	log         *slog.Logger
	now         func() time.Time
	keepAlive   time.Duration
	secret      []byte
}

type Config struct {
	Catalog  Catalog
	Sessions *search.Registry
	Renderer *web.Renderer
	Site     seo.Site
	Static   fs.FS
	// CORSOrigins limits the JSON search proxies. Empty allows any origin.
	CORSOrigins []string
	Logger      *slog.Logger
	Now         func() time.Time
	// KeepAlive is the comment interval on idle event streams.
	KeepAlive time.Duration
}

func New(cfg *Config) (*Handler, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog client is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("search session registry is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("renderer is required")
	}
	if cfg.Static == nil {
		return nil, errors.New("static files are required")
	}
	if strings.TrimSpace(cfg.Site.BaseURL) == "" {
		return nil, errors.New("site url is required")
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	keepAlive := cfg.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("session secret: %w", err)
	}

	return &Handler{
		catalog:     cfg.Catalog,
		sessions:    cfg.Sessions,
		renderer:    cfg.Renderer,
		site:        cfg.Site,
		static:      cfg.Static,
		corsOrigins: origins,
		log:         log,
		now:         now,
		keepAlive:   keepAlive,
		secret:      secret,
	}, nil
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Use(MiddlewareRobotsTag)

	r.Method(http.MethodGet, "/", h.AdaptPage(h.getHome))
	r.Method(http.MethodGet, "/browse", h.AdaptPage(h.getBrowse))
	r.Method(http.MethodGet, "/category/{slug}", h.AdaptPage(h.getCategory))
	r.Method(http.MethodGet, "/genre/{slug}", h.AdaptPage(h.getGenre))
	r.Method(http.MethodGet, "/year/{year:[0-9]+}", h.AdaptPage(h.getYear))
	r.Method(http.MethodGet, "/movie/{ref}", h.AdaptPage(h.getMovie))
	r.Method(http.MethodGet, "/search", h.AdaptPage(h.getSearch))
	r.Method(http.MethodGet, "/partials/grid", h.Adapt(h.getGridPartial))

	r.Route("/api/search", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))

		r.Method(http.MethodGet, "/autocomplete", h.Adapt(h.getAutocomplete))
		r.Method(http.MethodGet, "/smart", h.Adapt(h.getSmartSearch))
	})

	r.Route("/search/sessions", func(r chi.Router) {
		r.Method(http.MethodPost, "/", h.Adapt(h.postSession))

		r.Route("/{id}", func(r chi.Router) {
			r.Method(http.MethodDelete, "/", h.Adapt(h.deleteSession))
			r.Method(http.MethodGet, "/events", h.Adapt(h.getSessionEvents))
			r.Method(http.MethodPost, "/actions", h.Adapt(h.postSessionAction))
		})
	})

	r.Method(http.MethodGet, "/rss.xml", h.Adapt(h.getRSS))
	r.Method(http.MethodGet, "/sitemap.xml", h.Adapt(h.getSitemap))
	r.Method(http.MethodGet, "/robots.txt", h.Adapt(h.getRobots))
	r.Method(http.MethodGet, "/healthz", h.Adapt(h.getHealthz))
	r.Handle("/static/*", http.StripPrefix("/static", Static(h.static)))

	r.NotFound(h.AdaptPage(h.getNotFound).ServeHTTP)
}

func (h *Handler) gridOptions(base string) grid.Options {
	return grid.Options{BasePath: base, AssetOrigin: h.site.AssetOrigin, Logger: h.log}
}

// facets loads the category and genre lists side by side. Failures are
// logged and leave the list empty, which hides its selectors.
func (h *Handler) facets(ctx context.Context) web.Facets {
	var (
		g      errgroup.Group
		facets web.Facets
	)
	g.Go(func() error {
		resp, err := h.catalog.GetCategories(ctx)
		facets.Categories = h.facetNames("categories", resp, err)
		return nil
	})
	g.Go(func() error {
		resp, err := h.catalog.GetGenres(ctx)
		facets.Genres = h.facetNames("genres", resp, err)
		return nil
	})
	_ = g.Wait()
	return facets
}

func (h *Handler) facetNames(kind string, resp catalog.Response[[]catalog.Facet], err error) []string {
	switch {
	case err != nil:
		h.log.Warn("facets: fetch failed", slog.String("kind", kind), logger.Error(err))
		return nil
	case !resp.Success:
		h.log.Warn("facets: unsuccessful response", slog.String("kind", kind), slog.String("message", resp.Failure("unknown error")))
		return nil
	}
	return catalog.FacetNames(resp.Data)
}

func (h *Handler) layout(r *http.Request, meta seo.Metadata, facets web.Facets, content any, ld ...[]byte) *web.Layout {
	return &web.Layout{
		SiteName: h.site.Name,
		Meta:     meta,
		JSONLD:   ld,
		Path:     r.URL.Path,
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Facets:   facets,
		Content:  content,
	}
}

// render writes a full page. The page is buffered so a template failure
// can still become an error page.
func (h *Handler) render(w http.ResponseWriter, status int, page string, layout *web.Layout) error {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, page, layout); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	writeBody(w, status, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	view := web.ErrorView{
		Status:  http.StatusInternalServerError,
		Title:   "Something went wrong",
		Message: "An unexpected error occurred. Please try again later.",
	}
	var statusErr *Error
	if errors.As(err, &statusErr) {
		view.Status = statusErr.Status
		view.Message = statusErr.Message
		view.Title = statusErr.Title
		if view.Title == "" {
			view.Title = http.StatusText(statusErr.Status)
		}
	} else {
		h.log.Error("page failed", slog.String("path", r.URL.Path), logger.Error(err))
	}

	meta := seo.SiteMetadata(h.site, seo.Overrides{
		Title:       view.Title + " | " + h.site.Name,
		Description: view.Message,
		NoIndex:     true,
	})
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf, web.PageError, h.layout(r, meta, web.Facets{}, view)); err != nil {
		h.log.Error("render error page failed", logger.Error(err))
		http.Error(w, view.Message, view.Status)
		return
	}
	writeBody(w, view.Status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) getNotFound(w http.ResponseWriter, r *http.Request) error {
	return &Error{
		Status:  http.StatusNotFound,
		Title:   "Page Not Found",
		Message: "The page you are looking for does not exist.",
	}
}
