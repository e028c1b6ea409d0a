// Package detail loads a single movie and derives everything its page shows.
package detail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/query"
	"github.com/ffacttt-hash/frontend/internal/seo"
)

// RelatedLimit is the size of the related movies grid.
const RelatedLimit = 6

var ErrNotFound = errors.New("movie not found")

// Finder is the part of the catalog client detail lookups need.
type Finder interface {
	GetMovieBySlug(ctx context.Context, slug string) (catalog.Response[catalog.Movie], error)
	GetMovieByID(ctx context.Context, id string) (catalog.Response[catalog.Movie], error)
}

type Chip struct {
	Label string
	Href  string
}

type Download struct {
	Quality string
	Size    string
	Href    string
}

type Page struct {
	Movie       catalog.Movie
	Year        int
	Released    string
	Runtime     string
	Genres      string
	Categories  string
	PosterURL   string
	Screenshots []string
	Downloads   []Download

	CategoryChips []Chip
	GenreChips    []Chip
	YearChip      *Chip

	// Related is nil when the movie has no genre to match on.
	Related *query.Filter

	Metadata     seo.Metadata
	MovieLD      []byte
	BreadcrumbLD []byte
}

// Load resolves ref as a slug first and as a database id second. ErrNotFound
// means neither matched; any other error means the catalog could not answer.
func Load(ctx context.Context, finder Finder, ref string, site seo.Site) (*Page, error) {
	movie, err := find(ctx, finder, strings.TrimSpace(ref))
	if err != nil {
		return nil, err
	}
	return Build(site, movie)
}

func find(ctx context.Context, finder Finder, ref string) (*catalog.Movie, error) {
	if ref == "" {
		return nil, ErrNotFound
	}

	bySlug, err := finder.GetMovieBySlug(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("movie by slug %q: %w", ref, err)
	}
	if found(bySlug) {
		return &bySlug.Data, nil
	}

	byID, err := finder.GetMovieByID(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("movie by id %q: %w", ref, err)
	}
	if found(byID) {
		return &byID.Data, nil
	}

	// a 5xx from either lookup means the catalog could not answer
	if bySlug.Status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("movie by slug %q: %s", ref, bySlug.Failure("catalog unavailable"))
	}
	if byID.Status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("movie by id %q: %s", ref, byID.Failure("catalog unavailable"))
	}
	return nil, ErrNotFound
}

func found(resp catalog.Response[catalog.Movie]) bool {
	return resp.Success && (resp.Data.ID != "" || resp.Data.Slug != "")
}

// Build derives the page from a loaded movie.
func Build(site seo.Site, movie *catalog.Movie) (*Page, error) {
	p := &Page{
		Movie:      *movie,
		Year:       movie.ReleaseYear(),
		Released:   released(movie.ReleaseDate),
		Runtime:    runtime(movie.Duration),
		Genres:     strings.Join(movie.Genres, ", "),
		Categories: strings.Join(movie.Categories, ", "),
		PosterURL:  site.Asset(movie.PosterURL),
		Metadata:   seo.MovieMetadata(site, movie, seo.Overrides{}),
	}

	for _, s := range movie.Screenshots {
		if u := site.Asset(s); u != "" {
			p.Screenshots = append(p.Screenshots, u)
		}
	}
	for _, l := range movie.DownloadLinks {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		p.Downloads = append(p.Downloads, Download{
			Quality: l.Quality,
			Size:    l.Size,
			Href:    RedirectURL(site.AssetOrigin, movie.ID, l.URL),
		})
	}

	for _, c := range movie.Categories {
		p.CategoryChips = append(p.CategoryChips, Chip{Label: c, Href: "/category/" + seo.Slugify(c)})
	}
	for _, g := range movie.Genres {
		p.GenreChips = append(p.GenreChips, Chip{Label: g, Href: "/genre/" + seo.Slugify(g)})
	}
	if p.Year > 0 {
		y := strconv.Itoa(p.Year)
		p.YearChip = &Chip{Label: y, Href: "/year/" + y}
	}
	if len(movie.Genres) > 0 {
		p.Related = &query.Filter{Genre: movie.Genres[0], Limit: RelatedLimit}
	}

	var err error
	if p.MovieLD, err = seo.Marshal(seo.MovieJSONLD(site, movie)); err != nil {
		return nil, fmt.Errorf("movie json-ld: %w", err)
	}
	crumb := seo.Crumb{Name: movie.Title, URL: site.URL("/movie/" + movie.Ref())}
	if p.BreadcrumbLD, err = seo.Marshal(seo.BreadcrumbJSONLD(site, crumb)); err != nil {
		return nil, fmt.Errorf("breadcrumb json-ld: %w", err)
	}
	return p, nil
}

// RedirectURL routes a download link through the API's tracking redirect.
func RedirectURL(assetOrigin, id, target string) string {
	return strings.TrimRight(assetOrigin, "/") + "/go/" + url.PathEscape(id) + "?url=" + url.QueryEscape(target)
}

func released(raw string) string {
	if len(raw) < len(time.DateOnly) {
		return ""
	}
	t, err := time.Parse(time.DateOnly, raw[:len(time.DateOnly)])
	if err != nil {
		return ""
	}
	return t.Format("January 2, 2006")
}

func runtime(minutes int) string {
	switch {
	case minutes <= 0:
		return ""
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	}
}
