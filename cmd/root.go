// Package cmd defines the CLI for the moviescraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/movie-scraper/internal/app"
	"github.com/JakeFAU/movie-scraper/internal/config"
	"github.com/JakeFAU/movie-scraper/internal/logging"
	"github.com/JakeFAU/movie-scraper/internal/render"
	"github.com/JakeFAU/movie-scraper/internal/scraper"
)

// Runner is what the root command needs from the application.
// This allows us to inject a fake app during tests.
type Runner interface {
	Run(ctx context.Context) (scraper.Summary, error)
	Close()
}

// newApp is the application factory. It's a variable so tests can replace it.
var newApp = func(ctx context.Context, cfg config.Config, opts app.Options, logger *zap.Logger) (Runner, error) {
	return app.New(ctx, cfg, opts, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var (
		cfgFile    string
		markupFile string
	)
	cmd := &cobra.Command{
		Use:   "moviescraper",
		Short: "Scrapes the IMDb Top 250 and enriches it with OMDb metadata.",
		Long: `moviescraper renders the IMDb Top 250 chart in headless Chrome, looks up
every title on the OMDb API, downloads the posters, and writes a dated
movies.json report. It runs once and exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfgFile, markupFile)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (defaults and SCRAPER_* env vars apply without one)")
	cmd.Flags().StringVar(&markupFile, "markup-file", "", "use saved chart markup instead of launching a browser")

	return cmd
}

func run(ctx context.Context, cfgFile, markupFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	var opts app.Options
	if markupFile != "" {
		static, err := render.NewStaticFromFile(markupFile)
		if err != nil {
			return err
		}
		opts.Renderer = static
	}

	appInstance, err := newApp(ctx, cfg, opts, logger)
	if err != nil {
		logger.Error("failed to initialize application services", zap.Error(err))
		return fmt.Errorf("failed to initialize application services: %w", err)
	}
	defer appInstance.Close()

	if _, err := appInstance.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("run interrupted", zap.Error(err))
		} else {
			logger.Error("run failed", zap.Error(err))
		}
		return fmt.Errorf("run scraper: %w", err)
	}
	return nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "moviescraper: %v\n", err)
		stop()
		os.Exit(1)
	}
}
