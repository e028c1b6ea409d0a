package seo

import (
	"bytes"
	"encoding/xml"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ffacttt-hash/frontend/internal/catalog"
)

// FeedSize is how many movies the RSS feed carries.
const FeedSize = 50

const rfc822GMT = "Mon, 02 Jan 2006 15:04:05 GMT"

type cdata struct {
	Text string `xml:",cdata"`
}

type rss struct {
	XMLName    xml.Name `xml:"rss"`
	Version    string   `xml:"version,attr"`
	Atom       string   `xml:"xmlns:atom,attr,omitempty"`
	Content    string   `xml:"xmlns:content,attr,omitempty"`
	DublinCore string   `xml:"xmlns:dc,attr,omitempty"`
	Channel    channel  `xml:"channel"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type feedImage struct {
	URL         string `xml:"url"`
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Width       int    `xml:"width"`
	Height      int    `xml:"height"`
	Description string `xml:"description"`
}

type channel struct {
	Title          string     `xml:"title"`
	Link           string     `xml:"link"`
	AtomLink       *atomLink  `xml:"atom:link,omitempty"`
	Description    string     `xml:"description"`
	Language       string     `xml:"language"`
	Copyright      string     `xml:"copyright,omitempty"`
	ManagingEditor string     `xml:"managingEditor,omitempty"`
	WebMaster      string     `xml:"webMaster,omitempty"`
	LastBuildDate  string     `xml:"lastBuildDate"`
	PubDate        string     `xml:"pubDate,omitempty"`
	TTL            int        `xml:"ttl,omitempty"`
	Image          *feedImage `xml:"image,omitempty"`
	Categories     []string   `xml:"category"`
	Items          []Item     `xml:"item"`
}

type guid struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// Item is one movie in the feed.
type Item struct {
	Title       cdata      `xml:"title"`
	Link        string     `xml:"link"`
	GUID        guid       `xml:"guid"`
	PubDate     string     `xml:"pubDate,omitempty"`
	Description cdata      `xml:"description"`
	Category    cdata      `xml:"category"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
	Author      string     `xml:"author,omitempty"`
	Rating      string     `xml:"rating,omitempty"`
	Language    string     `xml:"language,omitempty"`
}

func (s Site) editor() string {
	host := "localhost"
	if u, err := url.Parse(s.BaseURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return "noreply@" + host + " (" + s.Name + " Team)"
}

// FeedItem converts one movie. The description falls back to a generated
// sentence naming categories and genres when the movie has none.
func FeedItem(s Site, movie *catalog.Movie) Item {
	link := s.URL("/movie/" + movie.Ref())
	categories := strings.Join(movie.Categories, ", ")

	year := "N/A"
	if y := movie.ReleaseYear(); y > 0 {
		year = strconv.Itoa(y)
	}

	item := Item{
		Title:       cdata{movie.Title + " (" + year + ")"},
		Link:        link,
		GUID:        guid{Value: link, IsPermaLink: true},
		Description: cdata{FeedDescription(movie)},
		Category:    cdata{categories},
		Author:      s.editor(),
		Language:    movie.Language,
	}
	if created := movie.Created(); !created.IsZero() {
		item.PubDate = created.UTC().Format(rfc822GMT)
	}
	if poster := s.Asset(movie.PosterURL); poster != "" {
		item.Enclosure = &enclosure{URL: poster, Type: "image/jpeg"}
	}
	if movie.Rating > 0 {
		item.Rating = formatRating(movie.Rating) + "/10"
	}
	return item
}

func FeedDescription(movie *catalog.Movie) string {
	if strings.TrimSpace(movie.Description) != "" {
		return movie.Description
	}
	parts := []string{"Watch " + movie.Title + " online."}
	if len(movie.Categories) > 0 {
		parts = append(parts, "Categories: "+strings.Join(movie.Categories, ", ")+".")
	}
	if len(movie.Genres) > 0 {
		parts = append(parts, "Genres: "+strings.Join(movie.Genres, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// Feed renders the RSS 2.0 document for movies.
func Feed(s Site, movies []catalog.Movie, now time.Time) ([]byte, error) {
	stamp := now.UTC().Format(rfc822GMT)
	items := make([]Item, 0, len(movies))
	for i := range movies {
		items = append(items, FeedItem(s, &movies[i]))
	}

	return encodeXML(rss{
		Version:    "2.0",
		Atom:       "http://www.w3.org/2005/Atom",
		Content:    "http://purl.org/rss/1.0/modules/content/",
		DublinCore: "http://purl.org/dc/elements/1.1/",
		Channel: channel{
			Title:          s.Name + " - Latest Movies & TV Shows",
			Link:           s.BaseURL,
			AtomLink:       &atomLink{Href: s.URL("/rss.xml"), Rel: "self", Type: "application/rss+xml"},
			Description:    "Discover the latest movies and TV shows on " + s.Name + ". Get comprehensive movie information, reviews, and ratings.",
			Language:       "en-us",
			Copyright:      "Copyright " + strconv.Itoa(now.Year()) + " " + s.Name + ". All rights reserved.",
			ManagingEditor: s.editor(),
			WebMaster:      s.editor(),
			LastBuildDate:  stamp,
			PubDate:        stamp,
			TTL:            60,
			Image: &feedImage{
				URL:         s.Logo(),
				Title:       s.Name,
				Link:        s.BaseURL,
				Width:       144,
				Height:      144,
				Description: s.Name + " Logo",
			},
			Categories: []string{"Entertainment", "Movies", "TV Shows"},
			Items:      items,
		},
	})
}

// FallbackFeed is the minimal valid feed served when the catalog is down.
func FallbackFeed(s Site, now time.Time) ([]byte, error) {
	return encodeXML(rss{
		Version: "2.0",
		Channel: channel{
			Title:         s.Name + " - Latest Movies",
			Link:          s.BaseURL,
			Description:   "Latest movies and TV shows on " + s.Name,
			Language:      "en-us",
			LastBuildDate: now.UTC().Format(rfc822GMT),
		},
	})
}

func encodeXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
