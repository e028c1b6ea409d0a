// Package grid turns one page of catalog movies into the state the movie
// grid renders: a loading skeleton, an error with a retry link, an explicit
// empty state, or cards with pagination.
package grid

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/query"
)

const (
	DefaultLimit = 12

	FailureMessage = "Failed to fetch movies"
	EmptyMessage   = "No movies found. Try adjusting your filters."

	maxCardCategories = 2
)

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseFailed  Phase = "failed"
	PhaseEmpty   Phase = "empty"
	PhaseReady   Phase = "ready"
)

// Lister is the part of the catalog client the grid needs.
type Lister interface {
	GetMovies(ctx context.Context, f query.Filter) (catalog.Response[catalog.MoviesPage], error)
}

type Card struct {
	Ref        string
	Href       string
	Title      string
	PosterURL  string
	Language   string
	Rating     float64
	Date       string
	Featured   bool
	Categories []string
}

type Link struct {
	Page int
	Href string
}

type Pager struct {
	Current    int
	TotalPages int
	Total      int
	Prev       *Link
	Next       *Link
}

type State struct {
	Phase     Phase
	Filter    query.Filter
	Skeletons int
	Message   string
	RetryURL  string
	Cards     []Card
	Pager     *Pager
}

// Options control how links and images are built.
type Options struct {
	// BasePath is the listing page that pagination and retry links target.
	BasePath string
	// AssetOrigin is prefixed to relative poster paths.
	AssetOrigin string
	Logger      *slog.Logger
}

// Loading is the placeholder shown while a page is in flight: one skeleton
// card per requested item.
func Loading(f query.Filter) State {
	return State{
		Phase:     PhaseLoading,
		Filter:    f,
		Skeletons: f.EffectiveLimit(DefaultLimit),
	}
}

// Load issues exactly one fetch for f.
func Load(ctx context.Context, lister Lister, f query.Filter, opts Options) State {
	s, _ := Fetch(ctx, lister, f, opts)
	return s
}

// Fetch is Load that also hands back the movies behind the cards.
func Fetch(ctx context.Context, lister Lister, f query.Filter, opts Options) (State, []catalog.Movie) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	// The page size is always sent, but links keep the caller's filter.
	req := f
	if req.Limit < 1 {
		req = req.WithLimit(DefaultLimit)
	}

	resp, err := lister.GetMovies(ctx, req)
	if err != nil {
		log.Warn("grid: fetch movies failed", logger.Error(err), slog.String("filter", f.String()))
		return failed(f, FailureMessage, opts), nil
	}
	if !resp.Success {
		return FromResponse(f, resp, opts), nil
	}
	return FromResponse(f, resp, opts), resp.Data.Movies
}

// FromResponse maps a catalog response to a grid state.
func FromResponse(f query.Filter, resp catalog.Response[catalog.MoviesPage], opts Options) State {
	if !resp.Success {
		return failed(f, resp.Failure(FailureMessage), opts)
	}
	if len(resp.Data.Movies) == 0 {
		return State{Phase: PhaseEmpty, Filter: f, Message: EmptyMessage}
	}

	cards := make([]Card, 0, len(resp.Data.Movies))
	for i := range resp.Data.Movies {
		cards = append(cards, NewCard(&resp.Data.Movies[i], opts.AssetOrigin))
	}
	return State{
		Phase:  PhaseReady,
		Filter: f,
		Cards:  cards,
		Pager:  NewPager(f, resp.Data.Pagination, basePath(opts)),
	}
}

func failed(f query.Filter, msg string, opts Options) State {
	return State{
		Phase:    PhaseFailed,
		Filter:   f,
		Message:  msg,
		RetryURL: f.URL(basePath(opts)),
	}
}

func basePath(opts Options) string {
	if opts.BasePath == "" {
		return "/browse"
	}
	return opts.BasePath
}

// MovieHref is the detail link for a movie: slug when present, else id.
func MovieHref(m *catalog.Movie) string {
	return "/movie/" + m.Ref()
}

func NewCard(m *catalog.Movie, assetOrigin string) Card {
	date := m.ReleaseDate
	if date == "" {
		date = m.CreatedAt
	}
	return Card{
		Ref:        m.Ref(),
		Href:       MovieHref(m),
		Title:      m.Title,
		PosterURL:  AssetURL(assetOrigin, m.PosterURL),
		Language:   m.Language,
		Rating:     m.Rating,
		Date:       formatDate(date),
		Featured:   m.Featured,
		Categories: slices.Clone(m.Categories[:min(len(m.Categories), maxCardCategories)]),
	}
}

// NewPager returns nil unless there is more than one page. Prev and Next
// are links built from f so every other filter survives navigation.
func NewPager(f query.Filter, p catalog.Pagination, path string) *Pager {
	if p.TotalPages <= 1 {
		return nil
	}
	current := p.CurrentPage
	if current < 1 {
		current = f.EffectivePage()
	}
	pager := &Pager{Current: current, TotalPages: p.TotalPages, Total: p.TotalMovies}
	if p.HasPrevPage {
		pager.Prev = &Link{Page: current - 1, Href: f.WithPage(current - 1).URL(path)}
	}
	if p.HasNextPage {
		pager.Next = &Link{Page: current + 1, Href: f.WithPage(current + 1).URL(path)}
	}
	return pager
}

// AssetURL resolves a poster path against the API host. Absolute URLs pass
// through untouched.
func AssetURL(origin, p string) string {
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "http://"), strings.HasPrefix(p, "https://"):
		return p
	default:
		return origin + p
	}
}

func formatDate(raw string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02 Jan 2006")
		}
	}
	return ""
}
