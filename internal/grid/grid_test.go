package grid

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/query"
)

type fakeLister struct {
	calls []query.Filter
	resp  catalog.Response[catalog.MoviesPage]
	err   error
}

func (f *fakeLister) GetMovies(_ context.Context, filter query.Filter) (catalog.Response[catalog.MoviesPage], error) {
	f.calls = append(f.calls, filter)
	return f.resp, f.err
}

func opts() Options {
	return Options{BasePath: "/browse", AssetOrigin: "http://api.local", Logger: logger.Discard()}
}

func TestLoadIssuesExactlyOneFetchWithDefaultLimit(t *testing.T) {
	lister := &fakeLister{resp: catalog.Response[catalog.MoviesPage]{Success: true}}

	Load(context.Background(), lister, query.Filter{Genre: "Drama"}, opts())

	require.Len(t, lister.calls, 1)
	assert.Equal(t, query.Filter{Genre: "Drama", Limit: DefaultLimit}, lister.calls[0])
}

func TestLoadingSkeletonMatchesPageSize(t *testing.T) {
	assert.Equal(t, 12, Loading(query.Filter{}).Skeletons)
	assert.Equal(t, 6, Loading(query.Filter{Limit: 6}).Skeletons)
	assert.Equal(t, PhaseLoading, Loading(query.Filter{}).Phase)
}

func TestEmptyIsDistinctFromError(t *testing.T) {
	empty := FromResponse(query.Filter{}, catalog.Response[catalog.MoviesPage]{
		Success: true,
		Data:    catalog.MoviesPage{Movies: []catalog.Movie{}, Pagination: catalog.Pagination{CurrentPage: 1, TotalPages: 0}},
	}, opts())
	assert.Equal(t, PhaseEmpty, empty.Phase)
	assert.Equal(t, EmptyMessage, empty.Message)

	failure := FromResponse(query.Filter{}, catalog.Response[catalog.MoviesPage]{Success: false, Message: "x"}, opts())
	assert.Equal(t, PhaseFailed, failure.Phase)
	assert.Equal(t, "x", failure.Message)
}

func TestTransportErrorGetsGenericMessageAndRetry(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}

	state := Load(context.Background(), lister, query.Filter{Category: "Hollywood", Page: 2}, opts())

	assert.Equal(t, PhaseFailed, state.Phase)
	assert.Equal(t, FailureMessage, state.Message)
	assert.Equal(t, "/browse?category=Hollywood&page=2", state.RetryURL)
}

func TestCardHrefPrefersSlugOverID(t *testing.T) {
	noSlug := catalog.Movie{ID: "abc123", Title: "Untitled"}
	withSlug := catalog.Movie{ID: "zzz999", Slug: "my-movie", Title: "My Movie"}

	assert.Equal(t, "/movie/abc123", MovieHref(&noSlug))
	assert.Equal(t, "/movie/my-movie", MovieHref(&withSlug))
}

func TestReadyStateBuildsCards(t *testing.T) {
	resp := catalog.Response[catalog.MoviesPage]{
		Success: true,
		Data: catalog.MoviesPage{
			Movies: []catalog.Movie{{
				ID:          "abc123",
				Title:       "Heat",
				PosterURL:   "/uploads/heat.jpg",
				ReleaseDate: "1995-12-15",
				Categories:  []string{"Hollywood", "Dual Audio", "4K"},
				Featured:    true,
			}},
			Pagination: catalog.Pagination{CurrentPage: 1, TotalPages: 1, TotalMovies: 1},
		},
	}

	state := FromResponse(query.Filter{}, resp, opts())

	require.Equal(t, PhaseReady, state.Phase)
	require.Len(t, state.Cards, 1)
	card := state.Cards[0]
	assert.Equal(t, "/movie/abc123", card.Href)
	assert.Equal(t, "http://api.local/uploads/heat.jpg", card.PosterURL)
	assert.Equal(t, "15 Dec 1995", card.Date)
	assert.Equal(t, []string{"Hollywood", "Dual Audio"}, card.Categories)
	assert.Nil(t, state.Pager, "single page has no pagination controls")
}

func TestPagerPreservesFilters(t *testing.T) {
	f := query.Filter{Genre: "Action", Sort: query.SortRating, Page: 2}
	pager := NewPager(f, catalog.Pagination{CurrentPage: 2, TotalPages: 4, TotalMovies: 48, HasNextPage: true, HasPrevPage: true}, "/browse")

	require.NotNil(t, pager)
	require.NotNil(t, pager.Prev)
	require.NotNil(t, pager.Next)
	assert.Equal(t, "/browse?genre=Action&sort=rating", pager.Prev.Href)
	assert.Equal(t, "/browse?genre=Action&page=3&sort=rating", pager.Next.Href)
}

func TestPagerOmitsUnavailableDirections(t *testing.T) {
	pager := NewPager(query.Filter{}, catalog.Pagination{CurrentPage: 1, TotalPages: 3, HasNextPage: true}, "/year/2020")
	require.NotNil(t, pager)
	assert.Nil(t, pager.Prev)
	assert.Equal(t, "/year/2020?page=2", pager.Next.Href)
}

func TestAssetURL(t *testing.T) {
	assert.Equal(t, "", AssetURL("http://api.local", ""))
	assert.Equal(t, "https://cdn.example.com/p.jpg", AssetURL("http://api.local", "https://cdn.example.com/p.jpg"))
	assert.Equal(t, "http://api.local/p.jpg", AssetURL("http://api.local", "/p.jpg"))
}

func TestFetchReturnsMoviesOnlyOnSuccess(t *testing.T) {
	movies := []catalog.Movie{{ID: "a1", Title: "Heat"}}
	lister := &fakeLister{resp: catalog.Response[catalog.MoviesPage]{Success: true, Data: catalog.MoviesPage{Movies: movies}}}

	state, got := Fetch(context.Background(), lister, query.Filter{}, opts())
	assert.Equal(t, PhaseReady, state.Phase)
	assert.Equal(t, movies, got)

	lister = &fakeLister{err: errors.New("boom")}
	state, got = Fetch(context.Background(), lister, query.Filter{}, opts())
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.Nil(t, got)
}
