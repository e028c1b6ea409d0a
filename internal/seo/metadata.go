package seo

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ffacttt-hash/frontend/internal/catalog"
)

const (
	TwitterSummary      = "summary"
	TwitterLargeSummary = "summary_large_image"

	robotsIndex   = "index,follow"
	robotsNoIndex = "noindex,nofollow"
)

type Image struct {
	URL    string
	Width  int
	Height int
	Alt    string
}

// Metadata is everything rendered into a page head.
type Metadata struct {
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	Robots      string

	OGType   string
	URL      string
	SiteName string
	Locale   string
	Images   []Image

	TwitterCard   string
	TwitterImages []string

	Verification Verification
}

// Overrides replace generated fields when set.
type Overrides struct {
	Title        string
	Description  string
	Keywords     []string
	CanonicalURL string
	NoIndex      bool
	OGImage      string
	TwitterCard  string
}

func (o Overrides) apply(m *Metadata) {
	if o.Title != "" {
		m.Title = o.Title
	}
	if o.Description != "" {
		m.Description = o.Description
	}
	if len(o.Keywords) > 0 {
		m.Keywords = slices.Clone(o.Keywords)
	}
	if o.CanonicalURL != "" {
		m.Canonical = o.CanonicalURL
	}
	if o.NoIndex {
		m.Robots = robotsNoIndex
	}
	if o.OGImage != "" && len(m.Images) > 0 {
		m.Images[0].URL = o.OGImage
		m.TwitterImages = []string{o.OGImage}
	}
	if o.TwitterCard != "" {
		m.TwitterCard = o.TwitterCard
	}
}

func (s Site) page(title, description, url string) Metadata {
	return Metadata{
		Title:       title,
		Description: description,
		Canonical:   url,
		Robots:      robotsIndex,
		OGType:      "website",
		URL:         url,
		SiteName:    s.Name,
		Locale:      "en_US",
		TwitterCard: TwitterLargeSummary,
	}
}

// SiteMetadata is the default head for the home and browse pages and
// carries the search engine verification tokens.
func SiteMetadata(s Site, o Overrides) Metadata {
	m := s.page(
		s.Name+" - Movie Information & Reviews Platform",
		"Discover comprehensive movie information, reviews, ratings, and detailed insights on "+s.Name+". Your ultimate destination for movie discovery and entertainment.",
		s.URL("/"),
	)
	m.Keywords = []string{"movies", "reviews", "ratings", "movie information", "entertainment", "cinema", "film database"}
	m.Images = []Image{{URL: s.DefaultImage(), Width: 1200, Height: 630, Alt: s.Name + " - Movie Information Platform"}}
	m.TwitterImages = []string{s.DefaultImage()}
	m.Verification = s.Verification
	o.apply(&m)
	return m
}

// MovieMetadata builds the head for a detail page. SEO fields stored on
// the movie win over generated ones; o wins over both.
func MovieMetadata(s Site, movie *catalog.Movie, o Overrides) Metadata {
	year := "N/A"
	if y := movie.ReleaseYear(); y > 0 {
		year = strconv.Itoa(y)
	}
	url := s.URL("/movie/" + movie.Ref())

	var desc []string
	if y := movie.ReleaseYear(); y > 0 {
		desc = append(desc, fmt.Sprintf("Watch %s (%d) online on %s.", movie.Title, y, s.Name))
	} else {
		desc = append(desc, fmt.Sprintf("Watch %s online on %s.", movie.Title, s.Name))
	}
	desc = append(desc, movie.Description)
	if len(movie.Genres) > 0 {
		desc = append(desc, "Genres: "+strings.Join(movie.Genres, ", ")+".")
	}
	if movie.Rating > 0 {
		desc = append(desc, "Rating: "+formatRating(movie.Rating)+"/10.")
	}

	keywords := []string{movie.Title}
	keywords = append(keywords, movie.Genres...)
	keywords = append(keywords, movie.Categories...)
	for _, c := range movie.Cast[:min(len(movie.Cast), 5)] {
		keywords = append(keywords, c.Name)
	}
	keywords = append(keywords, "watch online", "movie", "streaming")
	if y := movie.ReleaseYear(); y > 0 {
		keywords = append(keywords, strconv.Itoa(y))
	}
	keywords = append(keywords, movie.Language)
	keywords = slices.DeleteFunc(keywords, func(k string) bool { return strings.TrimSpace(k) == "" })

	poster := s.Asset(movie.PosterURL)
	if poster == "" {
		poster = s.DefaultImage()
	}

	m := s.page(
		fmt.Sprintf("%s (%s) - Watch Online | %s", movie.Title, year, s.Name),
		strings.Join(strings.Fields(strings.Join(desc, " ")), " "),
		url,
	)
	m.OGType = "video.movie"
	m.Keywords = keywords
	m.Images = []Image{
		{URL: poster, Width: 1200, Height: 630, Alt: movie.Title + " poster"},
		{URL: poster, Width: 500, Height: 750, Alt: movie.Title + " poster"},
	}
	m.TwitterImages = []string{poster}

	if movie.SEO != nil {
		Overrides{
			Title:        movie.SEO.Title,
			Description:  movie.SEO.Description,
			CanonicalURL: movie.SEO.CanonicalURL,
		}.apply(&m)
	}
	o.apply(&m)
	return m
}

func CategoryMetadata(s Site, category string, o Overrides) Metadata {
	m := s.page(
		category+" Movies - Watch Online | "+s.Name,
		fmt.Sprintf("Discover and watch the best %[1]s movies online on %[2]s. Browse our extensive collection of %[1]s films with detailed information, ratings, and reviews.", category, s.Name),
		s.CategoryURL(category),
	)
	m.Keywords = []string{category, category + " movies", "watch online", "streaming", "movie database", "film collection"}
	m.Images = []Image{{URL: s.DefaultImage(), Width: 1200, Height: 630, Alt: category + " movies on " + s.Name}}
	m.TwitterImages = []string{s.DefaultImage()}
	o.apply(&m)
	return m
}

func GenreMetadata(s Site, genre string, o Overrides) Metadata {
	m := s.page(
		genre+" Movies - Watch Online | "+s.Name,
		fmt.Sprintf("Explore %[1]s movies on %[2]s. Watch the latest and classic %[1]s films online with comprehensive information, cast details, and user ratings.", genre, s.Name),
		s.GenreURL(genre),
	)
	m.Keywords = []string{genre, genre + " movies", genre + " films", "watch online", "streaming", "movie genre"}
	m.Images = []Image{{URL: s.DefaultImage(), Width: 1200, Height: 630, Alt: genre + " movies on " + s.Name}}
	m.TwitterImages = []string{s.DefaultImage()}
	o.apply(&m)
	return m
}

func YearMetadata(s Site, year int, o Overrides) Metadata {
	y := strconv.Itoa(year)
	m := s.page(
		y+" Movies - Watch Online | "+s.Name,
		fmt.Sprintf("Watch %[1]s movies online on %[2]s. Discover the best films released in %[1]s with detailed information, cast, crew, and user reviews.", y, s.Name),
		s.URL("/year/"+y),
	)
	m.Keywords = []string{y + " movies", y + " films", "movies " + y, "watch online", "streaming", "movie year"}
	m.Images = []Image{{URL: s.DefaultImage(), Width: 1200, Height: 630, Alt: y + " movies on " + s.Name}}
	m.TwitterImages = []string{s.DefaultImage()}
	o.apply(&m)
	return m
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
