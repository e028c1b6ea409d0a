package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ffacttt-hash/frontend/internal/catalog"
	"github.com/ffacttt-hash/frontend/internal/config"
	"github.com/ffacttt-hash/frontend/internal/logger"
)

type commandContext struct {
	out string
	cfg *config.Config
	log *slog.Logger
	now func() time.Time
}

func (c *commandContext) client() *catalog.Client {
	return catalog.New(c.cfg.APIURL, catalog.WithTimeout(c.cfg.APITimeout))
}

// write sends body to --out, or to the command's stdout when unset.
func (c *commandContext) write(cmd *cobra.Command, body []byte) error {
	if c.out == "" || c.out == "-" {
		_, err := cmd.OutOrStdout().Write(body)
		return err
	}
	if err := os.WriteFile(c.out, body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", c.out, err)
	}
	c.log.Info("wrote file", slog.String("path", c.out), slog.Int("bytes", len(body)))
	return nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{now: time.Now}

	rootCmd := &cobra.Command{
		Use:           "seogen",
		Short:         "Generate the sitemap and RSS feed from the catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx.cfg = cfg
			ctx.log = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Env, cfg.LogLevel)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.out, "out", "o", "", "Output file (default stdout)")

	rootCmd.AddCommand(newSitemapCommand(ctx))
	rootCmd.AddCommand(newRSSCommand(ctx))

	return rootCmd
}
