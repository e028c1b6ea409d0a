package seo

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/ffacttt-hash/frontend/internal/catalog"
)

const (
	// SitemapMovieLimit caps how many movies are requested for the sitemap.
	SitemapMovieLimit = 1000
	// SitemapYears is how many years, counting back from the current one,
	// get a route.
	SitemapYears = 26
)

type ChangeFreq string

const (
	Daily   ChangeFreq = "daily"
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
)

type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapSource is the catalog data a sitemap is built from. Categories and
// genres are display names.
type SitemapSource struct {
	Movies     []catalog.Movie
	Categories []string
	Genres     []string
}

func entry(loc string, mod time.Time, freq ChangeFreq, priority float64) SitemapURL {
	return SitemapURL{
		Loc:        loc,
		LastMod:    mod.UTC().Format(time.RFC3339),
		ChangeFreq: freq,
		Priority:   strconv.FormatFloat(priority, 'f', 1, 64),
	}
}

func StaticRoutes(s Site, now time.Time) []SitemapURL {
	return []SitemapURL{
		entry(s.BaseURL, now, Daily, 1.0),
		entry(s.URL("/browse"), now, Daily, 0.8),
	}
}

// YearRoutes lists the current year and the 25 before it, newest first.
func YearRoutes(s Site, now time.Time) []SitemapURL {
	urls := make([]SitemapURL, 0, SitemapYears)
	for y := now.Year(); y > now.Year()-SitemapYears; y-- {
		urls = append(urls, entry(s.URL("/year/"+strconv.Itoa(y)), now, Monthly, 0.5))
	}
	return urls
}

// SitemapURLs lists static, movie, category, genre and year routes in that
// order. A movie's lastmod is its update time, else its creation time.
func SitemapURLs(s Site, src SitemapSource, now time.Time) []SitemapURL {
	urls := StaticRoutes(s, now)
	for i := range src.Movies {
		m := &src.Movies[i]
		mod := m.LastModified()
		if mod.IsZero() {
			mod = now
		}
		urls = append(urls, entry(s.URL("/movie/"+m.Ref()), mod, Weekly, 0.7))
	}
	for _, c := range src.Categories {
		if strings.TrimSpace(c) != "" {
			urls = append(urls, entry(s.CategoryURL(c), now, Weekly, 0.6))
		}
	}
	for _, g := range src.Genres {
		if strings.TrimSpace(g) != "" {
			urls = append(urls, entry(s.GenreURL(g), now, Weekly, 0.6))
		}
	}
	return append(urls, YearRoutes(s, now)...)
}

func Sitemap(s Site, src SitemapSource, now time.Time) ([]byte, error) {
	return EncodeSitemap(SitemapURLs(s, src, now))
}

// StaticSitemap is served when the catalog cannot be reached.
func StaticSitemap(s Site, now time.Time) ([]byte, error) {
	return EncodeSitemap(StaticRoutes(s, now))
}

func EncodeSitemap(urls []SitemapURL) ([]byte, error) {
	return encodeXML(urlset{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9", URLs: urls})
}

// RobotsTxt allows crawling of pages and points at the sitemap. Machine
// endpoints are disallowed.
func RobotsTxt(s Site) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/api/", "/partials/", "/search/sessions/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + s.URL("/sitemap.xml") + "\n")
	return b.String()
}
