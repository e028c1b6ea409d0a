package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/detail"
	"github.com/ffacttt-hash/frontend/internal/grid"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/query"
	"github.com/ffacttt-hash/frontend/internal/search"
	"github.com/ffacttt-hash/frontend/internal/seo"
	"github.com/ffacttt-hash/frontend/internal/web"
)

const firstYear = 1900

func (h *Handler) getHome(w http.ResponseWriter, r *http.Request) error {
	f := query.Decode(r.URL.Query())
	facets, view, _ := h.listing(r, f, "/")

	home := web.HomeView{Grid: view}
	home.Categories = append(home.Categories, web.Link{
		Label:  "All",
		Href:   f.WithCategory("").URL("/"),
		Active: f.Category == "",
	})
	for _, c := range facets.Categories {
		home.Categories = append(home.Categories, web.Link{
			Label:  c,
			Href:   f.WithCategory(c).URL("/"),
			Active: f.Category == c,
		})
	}
	for _, g := range facets.Genres {
		home.Genres = append(home.Genres, web.Link{Label: g, Href: "/genre/" + seo.Slugify(g)})
	}

	ld, err := marshalLD(seo.WebsiteJSONLD(h.site), seo.OrganizationJSONLD(h.site))
	if err != nil {
		return err
	}
	meta := seo.SiteMetadata(h.site, seo.Overrides{})
	return h.render(w, http.StatusOK, web.PageHome, h.layout(r, meta, facets, home, ld...))
}

func (h *Handler) getBrowse(w http.ResponseWriter, r *http.Request) error {
	f := query.Decode(r.URL.Query())
	facets, view, movies := h.listing(r, f, "/browse")

	browse := web.BrowseView{
		Query:      f.Query,
		Categories: options(facets.Categories, f.Category),
		Genres:     options(facets.Genres, f.Genre),
		Years:      yearOptions(h.now().Year(), f.Year),
		Sorts:      sortOptions(f.EffectiveSort()),
		Clear:      "/browse",
		Grid:       view,
	}

	url := h.site.URL("/browse")
	ld, err := marshalLD(
		seo.ItemListJSONLD(h.site, movies, "Browse Movies", url),
		seo.BreadcrumbJSONLD(h.site, seo.Crumb{Name: "Browse", URL: url}),
	)
	if err != nil {
		return err
	}
	meta := seo.SiteMetadata(h.site, seo.Overrides{
		Title:        "Browse Movies - " + h.site.Name,
		Description:  "Browse and filter the full " + h.site.Name + " movie catalog by category, genre, year and rating.",
		CanonicalURL: url,
	})
	return h.render(w, http.StatusOK, web.PageBrowse, h.layout(r, meta, facets, browse, ld...))
}

// facetPage describes a listing scoped to one category or genre.
type facetPage struct {
	prefix string
	names  func(web.Facets) []string
	scope  func(query.Filter, string) query.Filter
	meta   func(seo.Site, string, seo.Overrides) seo.Metadata
	intro  string
}

var (
	categoryPage = facetPage{
		prefix: "/category/",
		names:  func(f web.Facets) []string { return f.Categories },
		scope:  query.Filter.WithCategory,
		meta:   seo.CategoryMetadata,
		intro:  "Browse our collection of %s movies.",
	}
	genrePage = facetPage{
		prefix: "/genre/",
		names:  func(f web.Facets) []string { return f.Genres },
		scope:  query.Filter.WithGenre,
		meta:   seo.GenreMetadata,
		intro:  "Explore the best %s movies, from the latest releases to timeless classics.",
	}
)

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) error {
	return h.facetListing(w, r, categoryPage)
}

func (h *Handler) getGenre(w http.ResponseWriter, r *http.Request) error {
	return h.facetListing(w, r, genrePage)
}

func (h *Handler) facetListing(w http.ResponseWriter, r *http.Request, p facetPage) error {
	slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slug")))
	if slug == "" {
		return h.getNotFound(w, r)
	}

	// The slug has to be resolved against the facet list before the grid
	// can be fetched, so these two calls are sequential.
	facets := h.facets(r.Context())
	name := resolveSlug(slug, p.names(facets))
	base := p.prefix + slug

	decoded := query.Decode(r.URL.Query())
	f := p.scope(decoded, name).WithPage(decoded.Page)
	state, movies := grid.Fetch(r.Context(), h.catalog, f, h.gridOptions(base))

	view := web.ListingView{
		Heading: name + " Movies",
		Intro:   fmt.Sprintf(p.intro, name),
		Grid:    web.GridView{State: state, Base: base},
	}
	meta := p.meta(h.site, name, seo.Overrides{})
	ld, err := marshalLD(
		seo.ItemListJSONLD(h.site, movies, view.Heading, meta.Canonical),
		seo.BreadcrumbJSONLD(h.site, seo.Crumb{Name: view.Heading, URL: meta.Canonical}),
	)
	if err != nil {
		return err
	}
	return h.render(w, http.StatusOK, web.PageListing, h.layout(r, meta, facets, view, ld...))
}

func (h *Handler) getYear(w http.ResponseWriter, r *http.Request) error {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < firstYear || year > h.now().Year()+1 {
		return h.getNotFound(w, r)
	}

	decoded := query.Decode(r.URL.Query())
	f := decoded.WithYear(year).WithPage(decoded.Page)
	base := "/year/" + strconv.Itoa(year)
	facets, view, movies := h.listing(r, f, base)

	listing := web.ListingView{
		Heading: strconv.Itoa(year) + " Movies",
		Intro:   "Movies released in " + strconv.Itoa(year) + ".",
		Grid:    view,
	}
	meta := seo.YearMetadata(h.site, year, seo.Overrides{})
	ld, err := marshalLD(
		seo.ItemListJSONLD(h.site, movies, listing.Heading, meta.Canonical),
		seo.BreadcrumbJSONLD(h.site, seo.Crumb{Name: listing.Heading, URL: meta.Canonical}),
	)
	if err != nil {
		return err
	}
	return h.render(w, http.StatusOK, web.PageListing, h.layout(r, meta, facets, listing, ld...))
}

func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	ref := chi.URLParam(r, "ref")

	var (
		g       errgroup.Group
		facets  web.Facets
		page    *detail.Page
		loadErr error
	)
	g.Go(func() error {
		facets = h.facets(ctx)
		return nil
	})
	g.Go(func() error {
		page, loadErr = detail.Load(ctx, h.catalog, ref, h.site)
		return nil
	})
	_ = g.Wait()

	switch {
	case errors.Is(loadErr, detail.ErrNotFound):
		return &Error{
			Status:  http.StatusNotFound,
			Title:   "Movie Not Found",
			Message: "The movie you are looking for does not exist or has been removed.",
		}
	case loadErr != nil:
		h.log.Warn("movie: load failed", slog.String("ref", ref), logger.Error(loadErr))
		return &Error{
			Status:  http.StatusBadGateway,
			Title:   "Something went wrong",
			Message: "Failed to load movie details. Please try again later.",
		}
	}

	view := web.MovieView{Page: page}
	if page.Related != nil {
		view.Related = h.related(r, page)
	}
	return h.render(w, http.StatusOK, web.PageMovie, h.layout(r, page.Metadata, facets, view, page.MovieLD, page.BreadcrumbLD))
}

// related loads the related movies grid without the movie itself and
// without pagination. Nil when nothing else matched.
func (h *Handler) related(r *http.Request, page *detail.Page) *web.GridView {
	state := grid.Load(r.Context(), h.catalog, *page.Related, h.gridOptions("/browse"))
	state.Pager = nil
	if state.Phase == grid.PhaseReady {
		self := page.Movie.Ref()
		state.Cards = slices.DeleteFunc(state.Cards, func(c grid.Card) bool { return c.Ref == self })
		if len(state.Cards) == 0 {
			return nil
		}
	}
	return &web.GridView{State: state, Base: "/browse"}
}

// getSearch is the full page behind the search form, used when scripts
// are unavailable.
func (h *Handler) getSearch(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	view := web.SearchView{
		Query: q,
		Filters: search.Filters{
			Genres:     listParam(r, "genre"),
			Categories: listParam(r, "category"),
			Year:       intParam(r, "year", 0, 0),
			MinRating:  min(floatParam(r, "rating"), 10),
		},
	}

	var (
		g      errgroup.Group
		facets web.Facets
	)
	g.Go(func() error {
		facets = h.facets(ctx)
		return nil
	})
	if utf8.RuneCountInString(q) >= search.MinQueryLength {
		view.Searched = true
		g.Go(func() error {
			resp, err := h.catalog.SmartSearch(ctx, catalog.SmartQuery{
				Query:      q,
				Page:       intParam(r, "page", 1, 0),
				Limit:      search.ResultLimit,
				Genres:     view.Filters.Genres,
				Categories: view.Filters.Categories,
				Year:       view.Filters.Year,
				MinRating:  view.Filters.MinRating,
			})
			switch {
			case err != nil:
				h.log.Warn("search page: smart search failed", logger.Error(err))
				view.Message = "Search failed. Please try again."
			case !resp.Success:
				view.Message = resp.Failure("Search failed. Please try again.")
			default:
				for i := range resp.Data.Results {
					view.Results = append(view.Results, web.NewResultCard(&resp.Data.Results[i], h.site.AssetOrigin))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	title := "Search"
	if q != "" {
		title = "Search: " + q
	}
	meta := seo.SiteMetadata(h.site, seo.Overrides{
		Title:        title + " | " + h.site.Name,
		CanonicalURL: h.site.URL("/search"),
		NoIndex:      true,
	})
	return h.render(w, http.StatusOK, web.PageSearch, h.layout(r, meta, facets, view))
}

// listing fetches the facets and one grid page side by side.
func (h *Handler) listing(r *http.Request, f query.Filter, base string) (web.Facets, web.GridView, []catalog.Movie) {
	ctx := r.Context()
	var (
		g      errgroup.Group
		facets web.Facets
		state  grid.State
		movies []catalog.Movie
	)
	g.Go(func() error {
		facets = h.facets(ctx)
		return nil
	})
	g.Go(func() error {
		state, movies = grid.Fetch(ctx, h.catalog, f, h.gridOptions(base))
		return nil
	})
	_ = g.Wait()
	return facets, web.GridView{State: state, Base: base}, movies
}

// resolveSlug maps a URL slug back to the facet name it was made from,
// falling back to a title-cased guess for names the API did not list.
func resolveSlug(slug string, names []string) string {
	for _, n := range names {
		if seo.Slugify(n) == slug {
			return n
		}
	}
	return seo.Unslugify(slug)
}

func options(values []string, selected string) []web.Option {
	out := make([]web.Option, 0, len(values))
	for _, v := range values {
		out = append(out, web.Option{Value: v, Label: v, Selected: v == selected})
	}
	return out
}

func yearOptions(current, selected int) []web.Option {
	out := make([]web.Option, 0, current-firstYear+1)
	for y := current; y >= firstYear; y-- {
		s := strconv.Itoa(y)
		out = append(out, web.Option{Value: s, Label: s, Selected: y == selected})
	}
	return out
}

func sortOptions(selected query.Sort) []web.Option {
	sorts := query.Sorts()
	out := make([]web.Option, 0, len(sorts))
	for _, s := range sorts {
		out = append(out, web.Option{Value: string(s), Label: s.Label(), Selected: s == selected})
	}
	return out
}

func marshalLD(docs ...any) ([][]byte, error) {
	out := make([][]byte, 0, len(docs))
	for _, d := range docs {
		b, err := seo.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("json-ld: %w", err)
		}
		out = append(out, b)
	}
	return out, nil
}
