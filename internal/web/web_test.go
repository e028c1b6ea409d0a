package web

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffacttt-hash/frontend/internal/grid"
	"github.com/ffacttt-hash/frontend/internal/query"
	"github.com/ffacttt-hash/frontend/internal/seo"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	return r
}

func TestGridPartialRendersSkeletons(t *testing.T) {
	r := newRenderer(t)

	var buf bytes.Buffer
	view := GridView{State: grid.Loading(query.Filter{Genre: "Drama", Limit: 6}), Base: "/browse"}
	require.NoError(t, r.Partial(&buf, "grid", view))

	out := buf.String()
	assert.Equal(t, 6, strings.Count(out, "card-skeleton"))
	assert.Contains(t, out, `aria-busy="true"`)
	assert.Contains(t, out, `data-limit="6"`)
}

func TestGridPartialStates(t *testing.T) {
	r := newRenderer(t)

	var buf bytes.Buffer
	empty := GridView{State: grid.State{Phase: grid.PhaseEmpty, Message: grid.EmptyMessage}, Base: "/"}
	require.NoError(t, r.Partial(&buf, "grid", empty))
	assert.Contains(t, buf.String(), "No movies found")
	assert.NotContains(t, buf.String(), "Retry")

	buf.Reset()
	failed := GridView{State: grid.State{Phase: grid.PhaseFailed, Message: grid.FailureMessage, RetryURL: "/browse?page=2"}, Base: "/browse"}
	require.NoError(t, r.Partial(&buf, "grid", failed))
	assert.Contains(t, buf.String(), grid.FailureMessage)
	assert.Contains(t, buf.String(), `href="/browse?page=2"`)

	buf.Reset()
	ready := GridView{
		State: grid.State{
			Phase: grid.PhaseReady,
			Cards: []grid.Card{{Href: "/movie/heat-1995", Title: "Heat", Rating: 8.3, Featured: true, Categories: []string{"Dual Audio"}}},
			Pager: &grid.Pager{Current: 1, TotalPages: 3, Next: &grid.Link{Page: 2, Href: "/browse?page=2"}},
		},
		Base: "/browse",
	}
	require.NoError(t, r.Partial(&buf, "grid", ready))
	out := buf.String()
	assert.Contains(t, out, `href="/movie/heat-1995"`)
	assert.Contains(t, out, "8.3")
	assert.Contains(t, out, "FEATURED")
	assert.Contains(t, out, `href="/category/dual-audio"`)
	assert.Contains(t, out, "Page 1 of 3")
	assert.Contains(t, out, `rel="next"`)
	assert.NotContains(t, out, `rel="prev"`)
}

func TestGridViewSrcCarriesBase(t *testing.T) {
	view := GridView{State: grid.Loading(query.Filter{Genre: "Drama"}), Base: "/genre/drama"}
	assert.Equal(t, "/partials/grid?base=%2Fgenre%2Fdrama&genre=Drama", view.Src())
	assert.Equal(t, grid.DefaultLimit, view.Limit())
}

func TestPageRendersLayout(t *testing.T) {
	r := newRenderer(t)
	site := seo.Site{BaseURL: "https://films.example", Name: "Reelhouse"}
	site.Verification.Google = "g-token"
	ld, err := seo.Marshal(seo.WebsiteJSONLD(site))
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Page(&buf, PageError, &Layout{
		SiteName: site.Name,
		Meta:     seo.SiteMetadata(site, seo.Overrides{Title: "Movie Not Found", NoIndex: true}),
		JSONLD:   [][]byte{ld},
		Path:     "/movie/missing",
		Facets:   Facets{Genres: []string{"Drama"}},
		Content:  ErrorView{Status: 404, Title: "Movie Not Found", Message: "The movie you are looking for does not exist."},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<title>Movie Not Found</title>")
	assert.Contains(t, out, `content="noindex,nofollow"`)
	assert.Contains(t, out, `name="google-site-verification" content="g-token"`)
	assert.Contains(t, out, `<script type="application/ld+json">{"@context":"https://schema.org"`)
	assert.Contains(t, out, `<option value="Drama">Drama</option>`)
	assert.Contains(t, out, "404")
	assert.Contains(t, out, "Go home")
}

func TestUnknownPage(t *testing.T) {
	r := newRenderer(t)
	assert.Error(t, r.Page(&bytes.Buffer{}, "nope", &Layout{}))
}

func TestStaticAssets(t *testing.T) {
	static, err := Static()
	require.NoError(t, err)

	for _, name := range []string{"app.js", "app.css", "favicon.svg"} {
		_, err := fs.Stat(static, name)
		assert.NoError(t, err, name)
	}
}
