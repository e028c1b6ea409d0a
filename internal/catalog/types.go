package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Response is the envelope every catalog API call is normalized into.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	// Status is the HTTP status of the call; it is not part of the wire body.
	Status int `json:"-"`
}

// Failure is the message a caller should show for an unsuccessful response.
func (r Response[T]) Failure(fallback string) string {
	if r.Success {
		return ""
	}
	if msg := strings.TrimSpace(r.Message); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(r.Error); msg != "" {
		return msg
	}
	return fallback
}

// NotFound reports a missing resource as distinct from a failed call.
func (r Response[T]) NotFound() bool {
	return r.Status == http.StatusNotFound || (r.Status < 300 && !r.Success)
}

type DownloadLink struct {
	Quality string `json:"quality"`
	Size    string `json:"size"`
	URL     string `json:"url"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
}

type CrewMember struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// MovieSEO carries per-movie overrides managed in the catalog backend.
type MovieSEO struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	CanonicalURL string `json:"canonicalUrl,omitempty"`
}

type Movie struct {
	ID             string         `json:"_id"`
	Slug           string         `json:"slug,omitempty"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	ReleaseDate    string         `json:"releaseDate,omitempty"`
	Year           int            `json:"year,omitempty"`
	PosterURL      string         `json:"posterUrl,omitempty"`
	TrailerURL     string         `json:"trailerUrl,omitempty"`
	DownloadLinks  []DownloadLink `json:"downloadLinks"`
	LinksAvailable bool           `json:"linksAvailable,omitempty"`
	Categories     []string       `json:"categories"`
	Genres         []string       `json:"genres"`
	Language       string         `json:"language"`
	Views          int64          `json:"views"`
	Rating         float64        `json:"rating"`
	Featured       bool           `json:"featured"`
	Duration       int            `json:"duration,omitempty"`
	Cast           []CastMember   `json:"cast,omitempty"`
	Crew           []CrewMember   `json:"crew,omitempty"`
	Screenshots    []string       `json:"screenshots,omitempty"`
	SEO            *MovieSEO      `json:"seo,omitempty"`
	CreatedAt      string         `json:"createdAt"`
	UpdatedAt      string         `json:"updatedAt"`
}

// Ref is the canonical identifier used in movie URLs: the slug when the
// backend provides one, otherwise the database id.
func (m *Movie) Ref() string {
	if slug := strings.TrimSpace(m.Slug); slug != "" {
		return slug
	}
	return m.ID
}

// ReleaseYear prefers the explicit year and falls back to the release date.
func (m *Movie) ReleaseYear() int {
	if m.Year > 0 {
		return m.Year
	}
	return yearFromDate(m.ReleaseDate)
}

func (m *Movie) Created() time.Time { return parseTime(m.CreatedAt) }

// LastModified is the update time, or the creation time when absent.
func (m *Movie) LastModified() time.Time {
	if t := parseTime(m.UpdatedAt); !t.IsZero() {
		return t
	}
	return m.Created()
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalMovies int  `json:"totalMovies"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type MoviesPage struct {
	Movies     []Movie    `json:"movies"`
	Pagination Pagination `json:"pagination"`
}

// Facet is one value of a filterable dimension (category or genre). The
// API returns either bare names or name/count objects.
type Facet struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"`
}

func (f *Facet) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		*f = Facet{Name: name}
		return nil
	}
	type plain Facet
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*f = Facet(p)
	return nil
}

// FacetNames flattens facets into their names, skipping blanks.
func FacetNames(facets []Facet) []string {
	out := make([]string, 0, len(facets))
	for _, f := range facets {
		if name := strings.TrimSpace(f.Name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

type Suggestion struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

type suggestionsPayload struct {
	Suggestions []Suggestion `json:"suggestions"`
}

type SearchResult struct {
	ID             string   `json:"_id"`
	Slug           string   `json:"slug,omitempty"`
	Title          string   `json:"title"`
	Year           int      `json:"year,omitempty"`
	Genre          []string `json:"genre"`
	Category       []string `json:"category"`
	Poster         string   `json:"poster,omitempty"`
	IMDbRating     float64  `json:"imdbRating,omitempty"`
	Featured       bool     `json:"featured"`
	RelevanceScore float64  `json:"relevanceScore,omitempty"`
}

func (r *SearchResult) Ref() string {
	if slug := strings.TrimSpace(r.Slug); slug != "" {
		return slug
	}
	return r.ID
}

type SearchPage struct {
	Results    []SearchResult `json:"results"`
	Total      int            `json:"total,omitempty"`
	Page       int            `json:"page,omitempty"`
	TotalPages int            `json:"totalPages,omitempty"`
}

// SmartQuery is a ranked search request with optional facet filters.
type SmartQuery struct {
	Query      string
	Page       int
	Limit      int
	Genres     []string
	Categories []string
	Year       int
	MinRating  float64
}

type Health struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func yearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
