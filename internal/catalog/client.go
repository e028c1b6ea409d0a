// Package catalog wraps the movie catalog REST API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ffacttt-hash/frontend/internal/query"
)

const (
	DefaultTimeout = 10 * time.Second

	// Upper bound on error bodies read for a message.
	maxErrorBody = 64 << 10
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// GetMovies fetches one page of movies. Only the fields set on f are sent.
func (c *Client) GetMovies(ctx context.Context, f query.Filter) (Response[MoviesPage], error) {
	return get[MoviesPage](ctx, c, "movies", "/movies", query.Encode(f))
}

func (c *Client) GetMovieByID(ctx context.Context, id string) (Response[Movie], error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Response[Movie]{Status: http.StatusNotFound}, nil
	}
	return get[Movie](ctx, c, "movie", "/movies/"+url.PathEscape(id), nil)
}

func (c *Client) GetMovieBySlug(ctx context.Context, slug string) (Response[Movie], error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Response[Movie]{Status: http.StatusNotFound}, nil
	}
	return get[Movie](ctx, c, "movie_slug", "/movies/slug/"+url.PathEscape(slug), nil)
}

func (c *Client) GetFeaturedMovies(ctx context.Context, limit int) (Response[[]Movie], error) {
	values := url.Values{}
	if limit > 0 {
		values.Set(query.KeyLimit, strconv.Itoa(limit))
	}
	return get[[]Movie](ctx, c, "featured", "/movies/featured", values)
}

func (c *Client) SearchMovies(ctx context.Context, q string) (Response[[]Movie], error) {
	values := url.Values{}
	values.Set(query.KeyQuery, strings.TrimSpace(q))
	return get[[]Movie](ctx, c, "movie_search", "/movies/search", values)
}

func (c *Client) GetCategories(ctx context.Context) (Response[[]Facet], error) {
	return get[[]Facet](ctx, c, "categories", "/categories", nil)
}

func (c *Client) GetGenres(ctx context.Context) (Response[[]Facet], error) {
	return get[[]Facet](ctx, c, "genres", "/genres", nil)
}

// Autocomplete returns suggestions for a partial query.
func (c *Client) Autocomplete(ctx context.Context, q string, limit int) (Response[[]Suggestion], error) {
	values := url.Values{}
	values.Set("q", q)
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	resp, err := get[suggestionsPayload](ctx, c, "autocomplete", "/search/autocomplete", values)
	return Response[[]Suggestion]{
		Success: resp.Success,
		Data:    resp.Data.Suggestions,
		Message: resp.Message,
		Error:   resp.Error,
		Status:  resp.Status,
	}, err
}

// SmartSearch runs a relevance-ranked search. Genre and category filters
// are sent as repeated parameters.
func (c *Client) SmartSearch(ctx context.Context, sq SmartQuery) (Response[SearchPage], error) {
	return get[SearchPage](ctx, c, "smart_search", "/search/smart", SmartValues(sq))
}

func SmartValues(sq SmartQuery) url.Values {
	page := max(sq.Page, 1)
	limit := sq.Limit
	if limit < 1 {
		limit = 20
	}
	values := url.Values{}
	values.Set("q", sq.Query)
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))
	values.Set("sortBy", "relevance")
	for _, g := range sq.Genres {
		if g = strings.TrimSpace(g); g != "" {
			values.Add("genre", g)
		}
	}
	for _, cat := range sq.Categories {
		if cat = strings.TrimSpace(cat); cat != "" {
			values.Add("category", cat)
		}
	}
	if sq.Year > 0 {
		values.Set("year", strconv.Itoa(sq.Year))
	}
	if sq.MinRating > 0 {
		values.Set("rating", strconv.FormatFloat(sq.MinRating, 'f', -1, 64))
	}
	return values
}

func (c *Client) HealthCheck(ctx context.Context) (Response[Health], error) {
	return get[Health](ctx, c, "health", "/health", nil)
}

// get performs one GET. The returned error is reserved for transport and
// decoding failures; HTTP error statuses come back as an unsuccessful
// Response.
func get[T any](ctx context.Context, c *Client, name, path string, values url.Values) (out Response[T], err error) {
	started := time.Now()
	defer func() { observe(name, started, out, err) }()

	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return Response[T]{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response[T]{}, fmt.Errorf("catalog %s: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		failed := Response[T]{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.Body, resp.StatusCode),
		}
		if cerr := resp.Body.Close(); cerr != nil {
			return failed, fmt.Errorf("catalog %s: close body: %w", name, cerr)
		}
		return failed, nil
	}

	var payload Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		decodeErr := fmt.Errorf("catalog %s: decode: %w", name, err)
		if cerr := resp.Body.Close(); cerr != nil {
			return Response[T]{}, errors.Join(decodeErr, cerr)
		}
		return Response[T]{}, decodeErr
	}
	if err := resp.Body.Close(); err != nil {
		return Response[T]{}, fmt.Errorf("catalog %s: close body: %w", name, err)
	}
	payload.Status = resp.StatusCode
	return payload, nil
}

func errorMessage(body io.Reader, status int) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err == nil && json.Unmarshal(raw, &payload) == nil {
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Error); msg != "" {
			return msg
		}
	}
	return "HTTP error! status: " + strconv.Itoa(status)
}
