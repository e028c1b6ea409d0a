package seo

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/query"
)

// SitemapCatalog is the part of the catalog a sitemap is built from.
type SitemapCatalog interface {
	GetMovies(ctx context.Context, f query.Filter) (catalog.Response[catalog.MoviesPage], error)
	GetCategories(ctx context.Context) (catalog.Response[[]catalog.Facet], error)
	GetGenres(ctx context.Context) (catalog.Response[[]catalog.Facet], error)
}

// LoadSitemapSource fetches movies, categories and genres in parallel. A
// transport failure in any of them fails the whole source; unsuccessful
// responses just leave their part empty.
func LoadSitemapSource(ctx context.Context, c SitemapCatalog, log *slog.Logger) (SitemapSource, error) {
	var src SitemapSource
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, err := c.GetMovies(ctx, query.Filter{Limit: SitemapMovieLimit})
		if err != nil {
			return fmt.Errorf("movies: %w", err)
		}
		if !resp.Success {
			log.Warn("sitemap: movies unsuccessful", slog.String("message", resp.Failure("unknown error")))
			return nil
		}
		src.Movies = resp.Data.Movies
		return nil
	})
	g.Go(func() error {
		resp, err := c.GetCategories(ctx)
		if err != nil {
			return fmt.Errorf("categories: %w", err)
		}
		src.Categories = sitemapFacets(log, "categories", resp)
		return nil
	})
	g.Go(func() error {
		resp, err := c.GetGenres(ctx)
		if err != nil {
			return fmt.Errorf("genres: %w", err)
		}
		src.Genres = sitemapFacets(log, "genres", resp)
		return nil
	})

	if err := g.Wait(); err != nil {
		return SitemapSource{}, err
	}
	return src, nil
}

func sitemapFacets(log *slog.Logger, kind string, resp catalog.Response[[]catalog.Facet]) []string {
	if !resp.Success {
		log.Warn("sitemap: facets unsuccessful", slog.String("kind", kind), slog.String("message", resp.Failure("unknown error")))
		return nil
	}
	return catalog.FacetNames(resp.Data)
}
