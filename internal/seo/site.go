// Package seo builds everything search engines and feed readers see: page
// metadata, JSON-LD documents, the RSS feed, the sitemap and robots.txt.
// All functions are pure; callers fetch the catalog data.
package seo

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Verification struct {
	Google string
	Yandex string
	Yahoo  string
}

// Site holds the public identity of the site.
type Site struct {
	BaseURL     string
	AssetOrigin string
	Name        string

	Verification Verification
}

// URL joins an absolute site path onto the base URL.
func (s Site) URL(path string) string {
	return strings.TrimRight(s.BaseURL, "/") + path
}

// Asset resolves an API-hosted path. Absolute URLs pass through.
func (s Site) Asset(path string) string {
	switch {
	case path == "":
		return ""
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return path
	default:
		return strings.TrimRight(s.AssetOrigin, "/") + path
	}
}

func (s Site) DefaultImage() string { return s.URL("/og-image.jpg") }

func (s Site) Logo() string { return s.URL("/logo.png") }

func (s Site) CategoryURL(name string) string { return s.URL("/category/" + Slugify(name)) }

func (s Site) GenreURL(name string) string { return s.URL("/genre/" + Slugify(name)) }

// Slugify lowercases name, folds accents and joins whitespace runs with "-".
// "Science Fiction" becomes "science-fiction", "Café Noir" "cafe-noir".
func Slugify(name string) string {
	// transformers carry state, so each call gets its own chain
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(cases.Lower(language.Und).String(folded)), "-")
}

// Unslugify turns a route slug back into a display name: "dual-audio" is
// "Dual Audio".
func Unslugify(slug string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(strings.ReplaceAll(slug, "-", " ")), " "))
}
