package web

import (
	"strings"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/detail"
	"github.com/ffacttt-hash/frontend/internal/grid"
	"github.com/ffacttt-hash/frontend/internal/query"
	"github.com/ffacttt-hash/frontend/internal/search"
	"github.com/ffacttt-hash/frontend/internal/seo"
)

// Layout wraps every full page.
type Layout struct {
	SiteName string
	Meta     seo.Metadata
	JSONLD   [][]byte
	Path     string
	// Query prefills the header search box.
	Query   string
	Facets  Facets
	Content any
}

// Facets feed the search filter panel. Empty lists hide their selector.
type Facets struct {
	Categories []string
	Genres     []string
}

type Link struct {
	Label  string
	Href   string
	Active bool
}

type Option struct {
	Value    string
	Label    string
	Selected bool
}

// GridView is a grid state bound to the listing path it belongs to.
type GridView struct {
	grid.State
	Base string
}

func (g GridView) Loading() bool { return g.Phase == grid.PhaseLoading }
func (g GridView) Failed() bool  { return g.Phase == grid.PhaseFailed }
func (g GridView) Empty() bool   { return g.Phase == grid.PhaseEmpty }
func (g GridView) Ready() bool   { return g.Phase == grid.PhaseReady }

// Src is the fragment URL that re-renders this grid.
func (g GridView) Src() string {
	values := query.Set(query.Encode(g.Filter), "base", g.Base)
	return "/partials/grid?" + values.Encode()
}

// Limit is the page size the grid was requested with.
func (g GridView) Limit() int { return g.Filter.EffectiveLimit(grid.DefaultLimit) }

type HomeView struct {
	Categories []Link
	Genres     []Link
	Grid       GridView
}

type BrowseView struct {
	Query      string
	Categories []Option
	Genres     []Option
	Years      []Option
	Sorts      []Option
	Clear      string
	Grid       GridView
}

type ListingView struct {
	Heading string
	Intro   string
	Grid    GridView
}

type MovieView struct {
	*detail.Page
	Related *GridView
}

type ResultCard struct {
	Href     string
	Title    string
	Poster   string
	Year     int
	Rating   float64
	Genres   string
	Featured bool
}

func NewResultCard(r *catalog.SearchResult, assetOrigin string) ResultCard {
	return ResultCard{
		Href:     "/movie/" + r.Ref(),
		Title:    r.Title,
		Poster:   grid.AssetURL(assetOrigin, r.Poster),
		Year:     r.Year,
		Rating:   r.IMDbRating,
		Genres:   strings.Join(r.Genre, ", "),
		Featured: r.Featured,
	}
}

type SearchView struct {
	Query    string
	Filters  search.Filters
	Results  []ResultCard
	Message  string
	Searched bool
}

type ErrorView struct {
	Status  int
	Title   string
	Message string
}
