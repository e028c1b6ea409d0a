// Package query maps browse filter state to and from URL query parameters.
//
// A field appears in the URL only when it holds a value; clearing a field
// removes its key instead of writing an empty string.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Sort is the listing order understood by the catalog API.
type Sort string

const (
	SortRecent Sort = "createdAt"
	SortViews  Sort = "views"
	SortRating Sort = "rating"
	SortTitle  Sort = "title"
	SortOldest Sort = "oldest"
	SortYear   Sort = "year"

	DefaultSort = SortRecent
)

// Parameter names shared by site URLs and the catalog API.
const (
	KeyQuery    = "q"
	KeyCategory = "category"
	KeyGenre    = "genre"
	KeyYear     = "year"
	KeySort     = "sort"
	KeyPage     = "page"
	KeyLimit    = "limit"
)

var sortLabels = map[Sort]string{
	SortRecent: "Recently Added",
	SortViews:  "Most Viewed",
	SortRating: "Top Rated",
	SortTitle:  "Title (A-Z)",
	SortOldest: "Oldest",
	SortYear:   "Year",
}

// Sorts lists the sort keys in display order.
func Sorts() []Sort {
	return []Sort{SortRecent, SortViews, SortRating, SortTitle, SortOldest, SortYear}
}

func (s Sort) Valid() bool {
	_, ok := sortLabels[s]
	return ok
}

func (s Sort) Label() string { return sortLabels[s] }

// Filter is the browse state. Zero values mean "unset".
type Filter struct {
	Query    string
	Category string
	Genre    string
	Year     int
	Sort     Sort
	Page     int
	Limit    int
}

func (f Filter) EffectiveSort() Sort {
	if f.Sort == "" {
		return DefaultSort
	}
	return f.Sort
}

func (f Filter) EffectivePage() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

func (f Filter) EffectiveLimit(fallback int) int {
	if f.Limit < 1 {
		return fallback
	}
	return f.Limit
}

func (f Filter) WithQuery(q string) Filter {
	f.Query = strings.TrimSpace(q)
	f.Page = 0
	return f
}

func (f Filter) WithCategory(c string) Filter {
	f.Category = strings.TrimSpace(c)
	f.Page = 0
	return f
}

func (f Filter) WithGenre(g string) Filter {
	f.Genre = strings.TrimSpace(g)
	f.Page = 0
	return f
}

func (f Filter) WithYear(y int) Filter {
	f.Year = max(y, 0)
	f.Page = 0
	return f
}

func (f Filter) WithSort(s Sort) Filter {
	if !s.Valid() {
		s = ""
	}
	f.Sort = s
	f.Page = 0
	return f
}

func (f Filter) WithPage(p int) Filter {
	if p <= 1 {
		p = 0
	}
	f.Page = p
	return f
}

func (f Filter) WithLimit(l int) Filter {
	f.Limit = max(l, 0)
	return f
}

// Encode writes only the fields that hold a value.
func Encode(f Filter) url.Values {
	values := url.Values{}
	setString(values, KeyQuery, f.Query)
	setString(values, KeyCategory, f.Category)
	setString(values, KeyGenre, f.Genre)
	setInt(values, KeyYear, f.Year)
	setString(values, KeySort, string(f.Sort))
	setInt(values, KeyPage, f.Page)
	setInt(values, KeyLimit, f.Limit)
	return values
}

// Decode reads a Filter, ignoring blank values, unparsable numbers and
// unknown sort keys.
func Decode(values url.Values) Filter {
	f := Filter{
		Query:    strings.TrimSpace(values.Get(KeyQuery)),
		Category: strings.TrimSpace(values.Get(KeyCategory)),
		Genre:    strings.TrimSpace(values.Get(KeyGenre)),
		Year:     positiveInt(values.Get(KeyYear)),
		Page:     positiveInt(values.Get(KeyPage)),
		Limit:    positiveInt(values.Get(KeyLimit)),
	}
	if s := Sort(strings.TrimSpace(values.Get(KeySort))); s.Valid() {
		f.Sort = s
	}
	return f
}

// Parse decodes a raw query string.
func Parse(rawQuery string) Filter {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Filter{}
	}
	return Decode(values)
}

// String is the normalized query string for f.
func (f Filter) String() string {
	return Encode(f).Encode()
}

// URL renders a site link for f under path.
func (f Filter) URL(path string) string {
	qs := f.String()
	if qs == "" {
		return path
	}
	return path + "?" + qs
}

// Set returns a copy of values with key replaced; an empty value removes
// the key. Every other key is preserved.
func Set(values url.Values, key, value string) url.Values {
	out := make(url.Values, len(values))
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	if value = strings.TrimSpace(value); value == "" {
		out.Del(key)
	} else {
		out.Set(key, value)
	}
	return out
}

func setString(values url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		values.Set(key, value)
	}
}

func setInt(values url.Values, key string, value int) {
	if value > 0 {
		values.Set(key, strconv.Itoa(value))
	}
}

func positiveInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
