package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heatJSON = `{"_id":"65f0c0ffee","slug":"heat-1995","title":"Heat","releaseDate":"1995-12-15","categories":["Hollywood"],"genres":["Crime"],"updatedAt":"2024-02-03T04:05:06Z"}`

func catalogAPI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/movies":
			_, _ = io.WriteString(w, `{"success":true,"data":{"movies":[`+heatJSON+`],"pagination":{"currentPage":1,"totalPages":1}}}`)
		case "/api/movies/featured":
			_, _ = io.WriteString(w, `{"success":true,"data":[`+heatJSON+`]}`)
		case "/api/categories":
			_, _ = io.WriteString(w, `{"success":true,"data":["Hollywood"]}`)
		case "/api/genres":
			_, _ = io.WriteString(w, `{"success":true,"data":["Crime"]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"success":false,"message":"not found"}`)
		}
	})
}

func execute(t *testing.T, apiURL string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("SITE_URL", "https://films.example")
	t.Setenv("API_URL", apiURL)
	t.Setenv("API_TIMEOUT", "2s")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestSitemapToStdout(t *testing.T) {
	api := httptest.NewServer(catalogAPI())
	t.Cleanup(api.Close)

	out, err := execute(t, api.URL+"/api", "sitemap")
	require.NoError(t, err)

	assert.Contains(t, out, "<loc>https://films.example/movie/heat-1995</loc>")
	assert.Contains(t, out, "<loc>https://films.example/category/hollywood</loc>")
	assert.Contains(t, out, "<loc>https://films.example/genre/crime</loc>")
}

func TestSitemapFallsBackWhenCatalogIsDown(t *testing.T) {
	api := httptest.NewServer(catalogAPI())
	url := api.URL + "/api"
	api.Close()

	out, err := execute(t, url, "sitemap")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "<url>"))

	_, err = execute(t, url, "sitemap", "--strict")
	require.Error(t, err)
}

func TestRSSToFile(t *testing.T) {
	api := httptest.NewServer(catalogAPI())
	t.Cleanup(api.Close)
	path := filepath.Join(t.TempDir(), "rss.xml")

	out, err := execute(t, api.URL+"/api", "rss", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<title><![CDATA[Heat (1995)]]></title>")
	assert.Contains(t, string(body), "<link>https://films.example/movie/heat-1995</link>")
}
