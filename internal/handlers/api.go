package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/search"
)

const (
	maxSuggestions = 20
	maxResults     = 50
)

// getAutocomplete proxies suggestions. Queries shorter than the search
// minimum answer with an empty list without calling the catalog.
func (h *Handler) getAutocomplete(w http.ResponseWriter, r *http.Request) error {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < search.MinQueryLength {
		writeJSON(w, http.StatusOK, &catalog.Response[[]catalog.Suggestion]{Success: true, Data: []catalog.Suggestion{}})
		return nil
	}

	resp, err := h.catalog.Autocomplete(r.Context(), q, intParam(r, "limit", search.SuggestionLimit, maxSuggestions))
	if err != nil {
		h.log.Warn("api: autocomplete failed", logger.Error(err))
		return badGateway("Failed to fetch suggestions")
	}
	if resp.Data == nil {
		resp.Data = []catalog.Suggestion{}
	}
	writeJSON(w, proxyStatus(resp.Success, resp.Status), &resp)
	return nil
}

func (h *Handler) getSmartSearch(w http.ResponseWriter, r *http.Request) error {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if utf8.RuneCountInString(q) < search.MinQueryLength {
		writeJSON(w, http.StatusOK, &catalog.Response[catalog.SearchPage]{Success: true, Data: catalog.SearchPage{Results: []catalog.SearchResult{}}})
		return nil
	}

	resp, err := h.catalog.SmartSearch(r.Context(), catalog.SmartQuery{
		Query:      q,
		Page:       intParam(r, "page", 1, 0),
		Limit:      intParam(r, "limit", search.ResultLimit, maxResults),
		Genres:     listParam(r, "genre"),
		Categories: listParam(r, "category"),
		Year:       intParam(r, "year", 0, 0),
		MinRating:  min(floatParam(r, "rating"), 10),
	})
	if err != nil {
		h.log.Warn("api: smart search failed", logger.Error(err))
		return badGateway("Search failed")
	}
	if resp.Data.Results == nil {
		resp.Data.Results = []catalog.SearchResult{}
	}
	writeJSON(w, proxyStatus(resp.Success, resp.Status), &resp)
	return nil
}

// proxyStatus keeps upstream client errors and turns anything else that
// failed into a 502.
func proxyStatus(success bool, status int) int {
	switch {
	case success:
		return http.StatusOK
	case status >= 400 && status < 500:
		return status
	default:
		return http.StatusBadGateway
	}
}
