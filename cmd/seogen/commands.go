package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ffacttt-hash/frontend/internal/logger"
	"github.com/ffacttt-hash/frontend/internal/seo"
)

func newSitemapCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := ctx.cfg.Site()
			now := ctx.now()

			src, err := seo.LoadSitemapSource(cmd.Context(), ctx.client(), ctx.log)
			var body []byte
			if err != nil {
				if strict {
					return fmt.Errorf("fetch sitemap source: %w", err)
				}
				ctx.log.Warn("catalog unavailable, writing static routes", logger.Error(err))
				body, err = seo.StaticSitemap(site, now)
			} else {
				body, err = seo.Sitemap(site, src, now)
			}
			if err != nil {
				return fmt.Errorf("encode sitemap: %w", err)
			}
			return ctx.write(cmd, body)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of falling back to static routes")
	return cmd
}

func newRSSCommand(ctx *commandContext) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "rss",
		Short: "Write rss.xml with the featured movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			site := ctx.cfg.Site()
			now := ctx.now()

			resp, err := ctx.client().GetFeaturedMovies(cmd.Context(), seo.FeedSize)
			var body []byte
			switch {
			case err != nil && strict:
				return fmt.Errorf("fetch featured movies: %w", err)
			case err != nil:
				ctx.log.Warn("catalog unavailable, writing empty feed", logger.Error(err))
				body, err = seo.FallbackFeed(site, now)
			case !resp.Success:
				ctx.log.Warn("featured movies unsuccessful", slog.String("message", resp.Failure("unknown error")))
				body, err = seo.Feed(site, nil, now)
			default:
				body, err = seo.Feed(site, resp.Data, now)
			}
			if err != nil {
				return fmt.Errorf("encode rss: %w", err)
			}
			return ctx.write(cmd, body)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Fail instead of writing an empty feed")
	return cmd
}
