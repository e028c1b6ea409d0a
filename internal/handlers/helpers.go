package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const maxBodyBytes = 64 << 10

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", slog.Any("err", err))
	}
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug("write body failed", slog.Any("err", err))
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected trailing json")
		}
		return err
	}
	return nil
}

// intParam parses a positive integer query parameter, returning fallback
// when it is missing or invalid and clamping to limit when limit > 0.
func intParam(r *http.Request, name string, fallback, limit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil || n < 1 {
		return fallback
	}
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

func floatParam(r *http.Request, name string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(r.URL.Query().Get(name)), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

// listParam returns the non-blank values of a repeated query parameter.
func listParam(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func cacheFor(w http.ResponseWriter, d time.Duration) {
	secs := strconv.Itoa(int(d.Seconds()))
	w.Header().Set("Cache-Control", "public, max-age="+secs+", s-maxage="+secs)
}

func badRequest(msg string) error { return &Error{Status: http.StatusBadRequest, Message: msg} }
func forbidden(msg string) error  { return &Error{Status: http.StatusForbidden, Message: msg} }
func notFound(msg string) error   { return &Error{Status: http.StatusNotFound, Message: msg} }
func conflict(msg string) error   { return &Error{Status: http.StatusConflict, Message: msg} }
func badGateway(msg string) error { return &Error{Status: http.StatusBadGateway, Message: msg} }
