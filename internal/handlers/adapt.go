package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ffacttt-hash/frontend/internal/logger"
)

type HandlerWithErr func(w http.ResponseWriter, r *http.Request) error

type Error struct {
	Status  int
	Message string
	// Title heads the HTML error page. Defaults to the status text.
	Title string
}

func (e Error) Error() string {
	return e.Message + " code=" + strconv.FormatInt(int64(e.Status), 10)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Adapt turns a HandlerWithErr into a JSON endpoint. *Error values keep
// their status and message; anything else is a 500.
func (h *Handler) Adapt(fn HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			var statusErr *Error
			if errors.As(err, &statusErr) {
				writeJSON(w, statusErr.Status, &errorResponse{Error: statusErr.Message})
				return
			}
			h.log.Error("handler failed", slog.String("path", r.URL.Path), logger.Error(err))
			writeJSON(w, http.StatusInternalServerError, &errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
		}
	})
}

// AdaptPage is Adapt for full pages: errors render the HTML error page.
func (h *Handler) AdaptPage(fn HandlerWithErr) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.renderError(w, r, err)
		}
	})
}
