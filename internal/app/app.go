// Package app initializes and holds the services for one scraper run,
// acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	gcsstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/JakeFAU/movie-scraper/internal/clock/system"
	"github.com/JakeFAU/movie-scraper/internal/config"
	collyfetcher "github.com/JakeFAU/movie-scraper/internal/fetcher/colly"
	"github.com/JakeFAU/movie-scraper/internal/id/uuid"
	"github.com/JakeFAU/movie-scraper/internal/logging"
	"github.com/JakeFAU/movie-scraper/internal/metrics"
	"github.com/JakeFAU/movie-scraper/internal/omdb"
	"github.com/JakeFAU/movie-scraper/internal/poster"
	"github.com/JakeFAU/movie-scraper/internal/render"
	"github.com/JakeFAU/movie-scraper/internal/report"
	"github.com/JakeFAU/movie-scraper/internal/scraper"
	"github.com/JakeFAU/movie-scraper/internal/storage"
	"github.com/JakeFAU/movie-scraper/internal/storage/gcs"
	"github.com/JakeFAU/movie-scraper/internal/storage/local"
)

// Options overrides pieces of the default wiring.
type Options struct {
	// Renderer replaces the chromedp renderer, e.g. with saved markup.
	Renderer scraper.Renderer
	// GCSClient is used instead of dialing Cloud Storage with default credentials.
	GCSClient *gcsstorage.Client
}

// App holds the shared services for a run.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	recorder  *metrics.Recorder
	scraper   *scraper.Scraper
	gcsClient *gcsstorage.Client
	ownsGCS   bool
}

// GetLogger returns the run-scoped logger.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// GetScraper returns the wired pipeline.
func (a *App) GetScraper() *scraper.Scraper {
	return a.scraper
}

// GetRecorder exposes the run metrics.
func (a *App) GetRecorder() *metrics.Recorder {
	return a.recorder
}

// New validates the filesystem layout and wires every pipeline stage.
// It fails fast before any network call is made.
func New(ctx context.Context, cfg config.Config, opts Options, logger *zap.Logger) (*App, error) {
	if err := cfg.CheckLayout(); err != nil {
		return nil, err
	}

	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, fmt.Errorf("generate run id: %w", err)
	}
	l := logging.ForRun(logger, runID)
	l.Info("initializing scraper", zap.String("chart", cfg.Chart.URL))

	recorder, err := metrics.NewRecorder()
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	a := &App{cfg: cfg, logger: l, recorder: recorder}

	renderer := opts.Renderer
	if renderer == nil {
		renderer, err = render.NewChromedp(render.ChromedpConfig{
			Settle:    cfg.Render.Settle,
			Timeout:   cfg.Render.Timeout,
			UserAgent: cfg.Render.UserAgent,
		}, l.Named("render"))
		if err != nil {
			return nil, fmt.Errorf("init renderer: %w", err)
		}
	}

	metadata, err := omdb.NewClient(
		omdb.Config{BaseURL: cfg.OMDb.BaseURL, APIKey: cfg.OMDb.APIKey},
		collyfetcher.New(collyfetcher.Config{UserAgent: cfg.HTTP.UserAgent, Timeout: cfg.HTTP.Timeout}),
		l.Named("omdb"),
	)
	if err != nil {
		return nil, fmt.Errorf("init metadata client: %w", err)
	}

	store, err := a.buildStore(ctx, opts)
	if err != nil {
		return nil, err
	}
	posters, err := poster.NewDownloader(
		poster.Config{Dir: cfg.Output.ThumbsDir, UserAgent: cfg.HTTP.UserAgent},
		&http.Client{Timeout: cfg.HTTP.Timeout},
		store,
		l.Named("poster"),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init poster downloader: %w", err)
	}

	writer, err := report.NewWriter(cfg.ReportPath())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init report writer: %w", err)
	}

	a.scraper, err = scraper.New(
		scraper.Config{ChartURL: cfg.Chart.URL},
		renderer,
		metadata,
		posters,
		writer,
		system.New(),
		recorder,
		runID,
		l.Named("scraper"),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init scraper: %w", err)
	}
	return a, nil
}

func (a *App) buildStore(ctx context.Context, opts Options) (storage.BlobStore, error) {
	if a.cfg.Storage.GCSBucket == "" {
		a.logger.Info("storing posters on local disk", zap.String("dir", filepath.Join(a.cfg.Output.Dir, a.cfg.Output.ThumbsDir)))
		store, err := local.New(local.Config{BaseDir: a.cfg.Output.Dir})
		if err != nil {
			return nil, fmt.Errorf("init local store: %w", err)
		}
		return store, nil
	}

	client := opts.GCSClient
	if client == nil {
		var err error
		client, err = gcsstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create GCS client: %w", err)
		}
		a.ownsGCS = true
	}
	a.gcsClient = client
	a.logger.Info("storing posters in GCS", zap.String("bucket", a.cfg.Storage.GCSBucket))
	store, err := gcs.New(client, gcs.Config{Bucket: a.cfg.Storage.GCSBucket, Prefix: a.cfg.Storage.Prefix})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init GCS store: %w", err)
	}
	return store, nil
}

// Run executes the scraper once and exports metrics when configured.
func (a *App) Run(ctx context.Context) (scraper.Summary, error) {
	summary, err := a.scraper.Run(ctx)
	if path := a.cfg.Metrics.Textfile; path != "" {
		if werr := a.recorder.WriteTextfile(path); werr != nil {
			a.logger.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(werr))
		}
	}
	return summary, err
}

// Close releases clients owned by the App.
func (a *App) Close() {
	if a.gcsClient != nil && a.ownsGCS {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("error closing GCS client", zap.Error(err))
		}
	}
	a.gcsClient = nil
}
