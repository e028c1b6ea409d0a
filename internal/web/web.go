// Package web embeds the page templates and static assets and renders them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/ffacttt-hash/frontend/internal/seo"
)

//go:embed templates
var templates embed.FS

//go:embed static
var static embed.FS

// Pages that can be passed to Renderer.Page.
const (
	PageHome    = "home"
	PageBrowse  = "browse"
	PageListing = "listing"
	PageMovie   = "movie"
	PageSearch  = "search"
	PageError   = "error"
)

var pageNames = []string{PageHome, PageBrowse, PageListing, PageMovie, PageSearch, PageError}

func Static() (fs.FS, error) {
	return fs.Sub(static, "static")
}

var funcs = template.FuncMap{
	"join": strings.Join,
	"jsonld": func(b []byte) template.JS {
		return template.JS(b)
	},
	"rating": func(r float64) string {
		return strconv.FormatFloat(r, 'f', 1, 64)
	},
	"times": func(n int) []int {
		return make([]int, max(n, 0))
	},
	"slug": seo.Slugify,
}

type Renderer struct {
	partials *template.Template
	pages    map[string]*template.Template
}

// NewRenderer parses every page against the shared layout and partials.
func NewRenderer() (*Renderer, error) {
	partials, err := template.New("partials").Funcs(funcs).ParseFS(templates, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse partials: %w", err)
	}

	r := &Renderer{partials: partials, pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := partials.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone partials for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templates, "templates/layout.html", "templates/pages/"+name+".html"); err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Page renders a full document.
func (r *Renderer) Page(w io.Writer, name string, data *Layout) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// Partial renders one shared fragment, such as "grid".
func (r *Renderer) Partial(w io.Writer, name string, data any) error {
	return r.partials.ExecuteTemplate(w, name, data)
}
