package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/search"
	"github.com/ffacttt-hash/frontend/internal/seo"
	"github.com/ffacttt-hash/frontend/internal/web"
)

const heatJSON = `{"_id":"65f0c0ffee","slug":"heat-1995","title":"Heat","description":"A group of professional bank robbers.","releaseDate":"1995-12-15","posterUrl":"/uploads/heat.jpg","categories":["Hollywood"],"genres":["Crime","Drama"],"language":"English","views":42,"rating":8.3,"createdAt":"2024-01-02T03:04:05Z"}`

const ghostJSON = `{"_id":"abc123","title":"Ghost","categories":["Dual Audio"],"genres":["Crime"]}`

// fakeAPI is a catalog API with one page of two movies.
type fakeAPI struct {
	autocompleteCalls atomic.Int32

	mu       sync.Mutex
	lastList url.Values
	lastFind url.Values
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	write := func(status int, body string) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	switch path := strings.TrimPrefix(r.URL.Path, "/api"); path {
	case "/movies":
		f.mu.Lock()
		f.lastList = r.URL.Query()
		f.mu.Unlock()
		if r.URL.Query().Get("genre") == "Empty" {
			write(http.StatusOK, `{"success":true,"data":{"movies":[],"pagination":{"currentPage":1,"totalPages":0}}}`)
			return
		}
		write(http.StatusOK, `{"success":true,"data":{"movies":[`+heatJSON+`,`+ghostJSON+`],"pagination":{"currentPage":1,"totalPages":2,"totalMovies":14,"hasNextPage":true}}}`)
	case "/movies/slug/heat-1995":
		write(http.StatusOK, `{"success":true,"data":`+heatJSON+`}`)
	case "/movies/abc123":
		write(http.StatusOK, `{"success":true,"data":`+ghostJSON+`}`)
	case "/movies/featured":
		write(http.StatusOK, `{"success":true,"data":[`+heatJSON+`]}`)
	case "/categories":
		write(http.StatusOK, `{"success":true,"data":["Hollywood","Dual Audio"]}`)
	case "/genres":
		write(http.StatusOK, `{"success":true,"data":[{"name":"Crime","count":2},{"name":"Science Fiction","count":1}]}`)
	case "/search/autocomplete":
		f.autocompleteCalls.Add(1)
		write(http.StatusOK, `{"success":true,"data":{"suggestions":[{"text":"Heat","type":"movie","category":"Hollywood"}]}}`)
	case "/search/smart":
		f.mu.Lock()
		f.lastFind = r.URL.Query()
		f.mu.Unlock()
		write(http.StatusOK, `{"success":true,"data":{"results":[{"_id":"65f0c0ffee","slug":"heat-1995","title":"Heat","year":1995,"genre":["Crime"],"category":["Hollywood"],"imdbRating":8.3}],"total":1,"page":1,"totalPages":1}}`)
	case "/health":
		write(http.StatusOK, `{"success":true,"data":{"message":"ok","timestamp":"2026-01-01T00:00:00Z"}}`)
	default:
		write(http.StatusNotFound, `{"success":false,"message":"Movie not found"}`)
	}
}

type testEnv struct {
	api      *fakeAPI
	server   *httptest.Server
	sessions *search.Registry
}

func newTestEnv(t *testing.T, apiHandler http.Handler) *testEnv {
	t.Helper()

	api := &fakeAPI{}
	if apiHandler == nil {
		apiHandler = api
	}
	apiServer := httptest.NewServer(apiHandler)
	t.Cleanup(apiServer.Close)
	client := catalog.New(apiServer.URL+"/api", catalog.WithHTTPClient(apiServer.Client()))

	renderer, err := web.NewRenderer()
	require.NoError(t, err)
	static, err := web.Static()
	require.NoError(t, err)

	sessions := search.NewRegistry(search.Config{Backend: client, Debounce: 10 * time.Millisecond, Logger: logger.Discard()})
	t.Cleanup(sessions.Close)

	h, err := New(&Config{
		Catalog:  client,
		Sessions: sessions,
		Renderer: renderer,
		Site:     seo.Site{BaseURL: "https://films.example", AssetOrigin: apiServer.URL, Name: "Reelhouse"},
		Static:   static,
		Logger:   logger.Discard(),
		Now:      func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return &testEnv{api: api, server: server, sessions: sessions}
}

// downAPI returns a handler whose server refuses connections.
func downAPI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			_ = conn.Close()
		}
	})
}

func get(t *testing.T, client *http.Client, rawURL string) (*http.Response, string) {
	t.Helper()
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHomeRendersGridAndFacets(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "noindex, nofollow", resp.Header.Get("X-Robots-Tag"))
	assert.Contains(t, body, `href="/movie/heat-1995"`)
	assert.Contains(t, body, `href="/movie/abc123"`)
	assert.Contains(t, body, ">Dual Audio</a>")
	assert.Contains(t, body, `href="/genre/science-fiction"`)
	assert.Contains(t, body, "Page 1 of 2")
	assert.Contains(t, body, `"@type":"WebSite"`)

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	assert.Equal(t, url.Values{"limit": {"12"}}, env.api.lastList)
}

func TestBrowseKeepsFiltersInPagerAndForm(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/browse?genre=Crime&sort=rating")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body, `<option value="Crime" selected>Crime</option>`)
	assert.Contains(t, body, `<option value="rating" selected>Top Rated</option>`)
	assert.Contains(t, body, `<option value="2026">2026</option>`)
	assert.Contains(t, body, `href="/browse?genre=Crime&amp;page=2&amp;sort=rating"`)
	assert.Contains(t, body, `"@type":"ItemList"`)
}

func TestEmptyGridIsNotAnError(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := get(t, nil, env.server.URL+"/browse?genre=Empty")
	assert.Contains(t, body, "No movies found")
	assert.NotContains(t, body, "Failed to fetch movies")
}

func TestGridFailureOffersRetry(t *testing.T) {
	env := newTestEnv(t, downAPI())

	resp, body := get(t, nil, env.server.URL+"/browse?page=3")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Failed to fetch movies")
	assert.Contains(t, body, `href="/browse?page=3"`)
}

func TestCategoryResolvesSlugToFacetName(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/category/dual-audio")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Dual Audio Movies</h1>")
	assert.Contains(t, body, `<link rel="canonical" href="https://films.example/category/dual-audio">`)

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	assert.Equal(t, "Dual Audio", env.api.lastList.Get("category"))
}

func TestYearOutOfRangeIsNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := get(t, nil, env.server.URL+"/year/1800")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, nil, env.server.URL+"/year/1995")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "1995 Movies")
}

func TestMovieDetailBySlugOrID(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/movie/heat-1995")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<title>Heat (1995) - Watch Online | Reelhouse</title>")
	assert.Contains(t, body, `"@type":"Movie"`)
	assert.Contains(t, body, `"@type":"BreadcrumbList"`)
	assert.Contains(t, body, "Related Movies")
	assert.Contains(t, body, `href="/movie/abc123"`)

	resp, body = get(t, nil, env.server.URL+"/movie/abc123")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>Ghost</h1>")
}

func TestMovieNotFound(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/movie/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Movie Not Found")
	assert.NotContains(t, body, "Retry")
}

func TestMovieTransportFailureIsBadGateway(t *testing.T) {
	env := newTestEnv(t, downAPI())

	resp, body := get(t, nil, env.server.URL+"/movie/heat-1995")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "Failed to load movie details")
}

func TestSearchPage(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/search?q=heat&genre=Crime&genre=Drama")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `href="/movie/heat-1995"`)
	assert.Contains(t, body, "noindex,nofollow")

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	assert.Equal(t, []string{"Crime", "Drama"}, env.api.lastFind["genre"])
}

func TestGridPartialEchoesSequence(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/partials/grid?genre=Crime&seq=7&base=/genre/crime")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7", resp.Header.Get(GridSeqHeader))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `href="/genre/crime?genre=Crime&amp;page=2"`)

	resp, _ = get(t, nil, env.server.URL+"/partials/grid?seq=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPartialBase(t *testing.T) {
	assert.Equal(t, "/genre/crime", partialBase("/genre/crime"))
	assert.Equal(t, "/browse", partialBase("//evil.example"))
	assert.Equal(t, "/browse", partialBase("https://evil.example"))
	assert.Equal(t, "/browse", partialBase(""))
}

func TestRSS(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/rss.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600, s-maxage=3600", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, "<title><![CDATA[Heat (1995)]]></title>")
}

func TestRSSFallsBackWhenAPIDown(t *testing.T) {
	env := newTestEnv(t, downAPI())

	resp, body := get(t, nil, env.server.URL+"/rss.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<rss")
	assert.NotContains(t, body, "<item>")
}

func TestSitemap(t *testing.T) {
	env := newTestEnv(t, nil)

	_, body := get(t, nil, env.server.URL+"/sitemap.xml")
	assert.Contains(t, body, "<loc>https://films.example/movie/heat-1995</loc>")
	assert.Contains(t, body, "<loc>https://films.example/category/dual-audio</loc>")
	assert.Contains(t, body, "<loc>https://films.example/year/2001</loc>")

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	assert.Equal(t, "1000", env.api.lastList.Get("limit"))
}

func TestSitemapFallsBackWhenAPIDown(t *testing.T) {
	env := newTestEnv(t, downAPI())

	_, body := get(t, nil, env.server.URL+"/sitemap.xml")
	assert.Equal(t, 2, strings.Count(body, "<url>"))
}

func TestRobots(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/robots.txt")
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, body, "Sitemap: https://films.example/sitemap.xml")
}

func TestHealthz(t *testing.T) {
	resp, _ := get(t, nil, newTestEnv(t, nil).server.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, nil, newTestEnv(t, downAPI()).server.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `"status":"degraded"`)
}

func TestAutocompleteShortQuerySkipsAPI(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/api/search/autocomplete?q=h")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":[]}`, body)
	assert.Zero(t, env.api.autocompleteCalls.Load())

	_, body = get(t, nil, env.server.URL+"/api/search/autocomplete?q=he")
	assert.JSONEq(t, `{"success":true,"data":[{"text":"Heat","type":"movie","category":"Hollywood"}]}`, body)
	assert.Equal(t, int32(1), env.api.autocompleteCalls.Load())
}

func TestSmartSearchProxyAllowsCrossOrigin(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/search/smart?q=heat&category=Hollywood&year=1995", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://elsewhere.example")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	var out catalog.Response[catalog.SearchPage]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Data.Results, 1)
	assert.Equal(t, "heat-1995", out.Data.Results[0].Ref())

	env.api.mu.Lock()
	defer env.api.mu.Unlock()
	assert.Equal(t, "Hollywood", env.api.lastFind.Get("category"))
	assert.Equal(t, "1995", env.api.lastFind.Get("year"))
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := get(t, nil, env.server.URL+"/static/app.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	resp, _ = get(t, nil, env.server.URL+"/static/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := get(t, nil, env.server.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page Not Found")
}
