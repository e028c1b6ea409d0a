package seo

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ffacttt-hash/frontend/internal/catalog"
)

const schemaContext = "https://schema.org"

type Person struct {
	Type          string `json:"@type"`
	Name          string `json:"name"`
	CharacterName string `json:"characterName,omitempty"`
}

type Organization struct {
	Context     string   `json:"@context,omitempty"`
	Type        string   `json:"@type"`
	Name        string   `json:"name"`
	URL         string   `json:"url"`
	Logo        string   `json:"logo,omitempty"`
	Description string   `json:"description,omitempty"`
	SameAs      []string `json:"sameAs,omitempty"`
}

type AggregateRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	RatingCount int64   `json:"ratingCount,omitempty"`
	BestRating  int     `json:"bestRating"`
	WorstRating *int    `json:"worstRating,omitempty"`
}

type VideoObject struct {
	Type         string `json:"@type"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	UploadDate   string `json:"uploadDate,omitempty"`
	EmbedURL     string `json:"embedUrl"`
}

type MovieDoc struct {
	Context         string           `json:"@context,omitempty"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	URL             string           `json:"url"`
	Description     string           `json:"description,omitempty"`
	DatePublished   string           `json:"datePublished,omitempty"`
	Image           string           `json:"image,omitempty"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
	Genre           []string         `json:"genre,omitempty"`
	InLanguage      string           `json:"inLanguage,omitempty"`
	Duration        string           `json:"duration,omitempty"`
	Actor           []Person         `json:"actor,omitempty"`
	Director        []Person         `json:"director,omitempty"`
	Trailer         *VideoObject     `json:"trailer,omitempty"`
	Publisher       *Organization    `json:"publisher,omitempty"`
}

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name,omitempty"`
	Item     any    `json:"item"`
}

type BreadcrumbList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

type ItemList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	NumberOfItems   int        `json:"numberOfItems"`
	ItemListElement []ListItem `json:"itemListElement"`
}

type EntryPoint struct {
	Type        string `json:"@type"`
	URLTemplate string `json:"urlTemplate"`
}

type SearchAction struct {
	Type       string     `json:"@type"`
	Target     EntryPoint `json:"target"`
	QueryInput string     `json:"query-input"`
}

type WebSite struct {
	Context         string        `json:"@context"`
	Type            string        `json:"@type"`
	Name            string        `json:"name"`
	URL             string        `json:"url"`
	Description     string        `json:"description"`
	PotentialAction SearchAction  `json:"potentialAction"`
	Publisher       *Organization `json:"publisher"`
}

// Crumb is one breadcrumb after the implicit Home entry.
type Crumb struct {
	Name string
	URL  string
}

func (s Site) publisher() *Organization {
	return &Organization{Type: "Organization", Name: s.Name, URL: s.BaseURL}
}

// MovieJSONLD describes a movie for the detail page, including its trailer.
func MovieJSONLD(s Site, movie *catalog.Movie) MovieDoc {
	doc := MovieDoc{
		Context:     schemaContext,
		Type:        "Movie",
		Name:        movie.Title,
		URL:         s.URL("/movie/" + movie.Ref()),
		Description: movie.Description,
		Image:       s.Asset(movie.PosterURL),
		Genre:       movie.Genres,
		InLanguage:  movie.Language,
		Publisher:   s.publisher(),
	}
	if movie.SEO != nil {
		if movie.SEO.Title != "" {
			doc.Name = movie.SEO.Title
		}
		if movie.SEO.Description != "" {
			doc.Description = movie.SEO.Description
		}
		if movie.SEO.CanonicalURL != "" {
			doc.URL = movie.SEO.CanonicalURL
		}
	}

	published := releaseDate(movie)
	doc.DatePublished = published
	if movie.Duration > 0 {
		doc.Duration = "PT" + strconv.Itoa(movie.Duration) + "M"
	}
	if movie.Rating > 0 {
		worst := 0
		doc.AggregateRating = &AggregateRating{
			Type:        "AggregateRating",
			RatingValue: movie.Rating,
			RatingCount: max(movie.Views, 1),
			BestRating:  10,
			WorstRating: &worst,
		}
	}
	for _, c := range movie.Cast {
		doc.Actor = append(doc.Actor, Person{Type: "Person", Name: c.Name, CharacterName: c.Character})
	}
	for _, c := range movie.Crew {
		if strings.Contains(strings.ToLower(c.Role), "director") {
			doc.Director = append(doc.Director, Person{Type: "Person", Name: c.Name})
		}
	}
	if movie.TrailerURL != "" {
		doc.Trailer = &VideoObject{
			Type:         "VideoObject",
			Name:         movie.Title + " Trailer",
			Description:  movie.Title + " Official Trailer",
			ThumbnailURL: doc.Image,
			UploadDate:   published,
			EmbedURL:     movie.TrailerURL,
		}
	}
	return doc
}

func releaseDate(movie *catalog.Movie) string {
	if len(movie.ReleaseDate) >= len("2006-01-02") {
		return movie.ReleaseDate[:len("2006-01-02")]
	}
	if y := movie.ReleaseYear(); y > 0 {
		return strconv.Itoa(y) + "-01-01"
	}
	return ""
}

// BreadcrumbJSONLD always starts at Home.
func BreadcrumbJSONLD(s Site, crumbs ...Crumb) BreadcrumbList {
	items := make([]ListItem, 0, len(crumbs)+1)
	items = append(items, ListItem{Type: "ListItem", Position: 1, Name: "Home", Item: s.BaseURL})
	for i, c := range crumbs {
		items = append(items, ListItem{Type: "ListItem", Position: i + 2, Name: c.Name, Item: c.URL})
	}
	return BreadcrumbList{Context: schemaContext, Type: "BreadcrumbList", ItemListElement: items}
}

// ItemListJSONLD summarizes a listing page.
func ItemListJSONLD(s Site, movies []catalog.Movie, name, url string) ItemList {
	items := make([]ListItem, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		doc := &MovieDoc{
			Type:  "Movie",
			Name:  m.Title,
			URL:   s.URL("/movie/" + m.Ref()),
			Image: s.Asset(m.PosterURL),
		}
		if y := m.ReleaseYear(); y > 0 {
			doc.DatePublished = strconv.Itoa(y) + "-01-01"
		}
		if m.Rating > 0 {
			doc.AggregateRating = &AggregateRating{Type: "AggregateRating", RatingValue: m.Rating, BestRating: 10}
		}
		items = append(items, ListItem{Type: "ListItem", Position: i + 1, Item: doc})
	}
	return ItemList{
		Context:         schemaContext,
		Type:            "ItemList",
		Name:            name,
		URL:             url,
		NumberOfItems:   len(movies),
		ItemListElement: items,
	}
}

func WebsiteJSONLD(s Site) WebSite {
	return WebSite{
		Context:     schemaContext,
		Type:        "WebSite",
		Name:        s.Name,
		URL:         s.BaseURL,
		Description: "Discover comprehensive movie information, reviews, ratings, and detailed insights on " + s.Name + ".",
		PotentialAction: SearchAction{
			Type:       "SearchAction",
			Target:     EntryPoint{Type: "EntryPoint", URLTemplate: s.URL("/browse") + "?q={search_term_string}"},
			QueryInput: "required name=search_term_string",
		},
		Publisher: s.publisher(),
	}
}

func OrganizationJSONLD(s Site) Organization {
	return Organization{
		Context:     schemaContext,
		Type:        "Organization",
		Name:        s.Name,
		URL:         s.BaseURL,
		Logo:        s.Logo(),
		Description: "Your ultimate destination for movie discovery and entertainment information.",
	}
}

// Marshal encodes a JSON-LD document for embedding in a script tag. Field
// order follows the struct so equal input gives equal bytes, and <, > and &
// are escaped so the payload cannot close the tag.
func Marshal(doc any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
