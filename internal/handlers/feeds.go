package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ffacttt-hash/frontend/internal/grid"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/query"
	"github.com/ffacttt-hash/frontend/internal/seo"
	"github.com/ffacttt-hash/frontend/internal/web"
)

// GridSeqHeader echoes the client's sequence number on grid fragments so
// the browser can drop responses that arrive out of order.
const GridSeqHeader = "X-Grid-Seq"

const feedMaxAge = time.Hour

func (h *Handler) getGridPartial(w http.ResponseWriter, r *http.Request) error {
	values := r.URL.Query()
	seq := strings.TrimSpace(values.Get("seq"))
	if seq != "" {
		if _, err := strconv.ParseUint(seq, 10, 64); err != nil {
			return badRequest("invalid seq")
		}
	}

	base := partialBase(values.Get("base"))
	state := grid.Load(r.Context(), h.catalog, query.Decode(values), h.gridOptions(base))

	var buf bytes.Buffer
	if err := h.renderer.Partial(&buf, "grid", web.GridView{State: state, Base: base}); err != nil {
		return fmt.Errorf("render grid: %w", err)
	}
	if seq != "" {
		w.Header().Set(GridSeqHeader, seq)
	}
	w.Header().Set("Cache-Control", "no-store")
	writeBody(w, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	return nil
}

// partialBase accepts only site-relative listing paths.
func partialBase(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.ContainsAny(raw, "\\?#") {
		return "/browse"
	}
	return raw
}

func (h *Handler) getRSS(w http.ResponseWriter, r *http.Request) error {
	now := h.now()

	resp, err := h.catalog.GetFeaturedMovies(r.Context(), seo.FeedSize)
	var body []byte
	switch {
	case err != nil:
		h.log.Warn("rss: fetch featured failed", logger.Error(err))
		body, err = seo.FallbackFeed(h.site, now)
	case !resp.Success:
		h.log.Warn("rss: unsuccessful response", slog.String("message", resp.Failure("unknown error")))
		body, err = seo.Feed(h.site, nil, now)
	default:
		body, err = seo.Feed(h.site, resp.Data, now)
	}
	if err != nil {
		return fmt.Errorf("encode rss: %w", err)
	}

	cacheFor(w, feedMaxAge)
	writeBody(w, http.StatusOK, "application/xml; charset=utf-8", body)
	return nil
}

func (h *Handler) getSitemap(w http.ResponseWriter, r *http.Request) error {
	now := h.now()

	src, err := seo.LoadSitemapSource(r.Context(), h.catalog, h.log)
	var body []byte
	if err != nil {
		h.log.Warn("sitemap: catalog unavailable, serving static routes", logger.Error(err))
		body, err = seo.StaticSitemap(h.site, now)
	} else {
		body, err = seo.Sitemap(h.site, src, now)
	}
	if err != nil {
		return fmt.Errorf("encode sitemap: %w", err)
	}

	cacheFor(w, feedMaxAge)
	writeBody(w, http.StatusOK, "application/xml; charset=utf-8", body)
	return nil
}

func (h *Handler) getRobots(w http.ResponseWriter, r *http.Request) error {
	cacheFor(w, 24*time.Hour)
	writeBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte(seo.RobotsTxt(h.site)))
	return nil
}

type healthResponse struct {
	Status   string `json:"status"`
	API      string `json:"api"`
	Sessions int    `json:"searchSessions"`
}

func (h *Handler) getHealthz(w http.ResponseWriter, r *http.Request) error {
	out := healthResponse{Status: "ok", API: "ok", Sessions: h.sessions.Len()}

	resp, err := h.catalog.HealthCheck(r.Context())
	switch {
	case err != nil:
		h.log.Warn("healthz: catalog unreachable", logger.Error(err))
		out.Status, out.API = "degraded", "unreachable"
	case !resp.Success:
		out.Status, out.API = "degraded", resp.Failure("unhealthy")
	}

	status := http.StatusOK
	if out.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, &out)
	return nil
}
