// Package scraper runs the chart → metadata → poster → report pipeline.
//
// Everything happens sequentially on the calling goroutine. Failure policy:
//   - render and extraction errors abort the run;
//   - a metadata failure for any identifier aborts the run and no report is
//     written, so a written report always has one entry per identifier;
//   - a poster failure (or a record without a poster) is logged, counted in
//     the Summary, and the run moves on to the next identifier.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/movie-scraper/internal/extract"
	"github.com/JakeFAU/movie-scraper/internal/metrics"
	"github.com/JakeFAU/movie-scraper/internal/omdb"
)

// Config holds the pipeline's fixed inputs.
type Config struct {
	ChartURL string
}

// Summary describes the outcome of one run.
type Summary struct {
	RunID          string
	Identifiers    int
	Movies         int
	PostersSaved   int
	PostersSkipped []string
	PostersFailed  []string
	ReportPath     string
	Duration       time.Duration
}

// Scraper wires the pipeline stages together.
type Scraper struct {
	cfg      Config
	renderer Renderer
	metadata MetadataSource
	posters  PosterSaver
	writer   ReportWriter
	clock    Clock
	recorder Recorder
	logger   *zap.Logger
	runID    string
}

// New creates a Scraper. recorder may be nil.
func New(
	cfg Config,
	renderer Renderer,
	metadata MetadataSource,
	posters PosterSaver,
	writer ReportWriter,
	clock Clock,
	recorder Recorder,
	runID string,
	logger *zap.Logger,
) (*Scraper, error) {
	if cfg.ChartURL == "" {
		return nil, errors.New("chart url is required")
	}
	if renderer == nil || metadata == nil || posters == nil || writer == nil || clock == nil {
		return nil, errors.New("renderer, metadata source, poster saver, report writer and clock are required")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		cfg:      cfg,
		renderer: renderer,
		metadata: metadata,
		posters:  posters,
		writer:   writer,
		clock:    clock,
		recorder: recorder,
		logger:   logger,
		runID:    runID,
	}, nil
}

// Run executes the pipeline once. The returned Summary is populated as far
// as the run got, even when an error is returned.
func (s *Scraper) Run(ctx context.Context) (summary Summary, err error) {
	start := s.clock.Now()
	summary.RunID = s.runID
	defer func() {
		finished := s.clock.Now()
		summary.Duration = finished.Sub(start)
		s.recorder.ObserveRun(summary.Duration, finished, err == nil)
	}()

	markup, err := s.renderer.Render(ctx, s.cfg.ChartURL)
	if err != nil {
		return summary, fmt.Errorf("render chart %s: %w", s.cfg.ChartURL, err)
	}

	ids, err := extract.IDs(markup)
	if err != nil {
		return summary, fmt.Errorf("extract identifiers: %w", err)
	}
	summary.Identifiers = len(ids)
	s.recorder.ObserveIdentifiers(len(ids))
	s.logger.Info("identifiers extracted", zap.Int("count", len(ids)))
	if len(ids) == 0 {
		s.logger.Warn("no identifiers matched on chart page", zap.String("url", s.cfg.ChartURL))
	}

	movies := make([]json.RawMessage, 0, len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("run interrupted before %s: %w", id, err)
		}

		fetchStart := time.Now()
		record, err := s.metadata.Movie(ctx, id)
		if err != nil {
			return summary, fmt.Errorf("metadata for %s (%d of %d): %w", id, i+1, len(ids), err)
		}
		s.recorder.ObserveMovie(time.Since(fetchStart))
		movies = append(movies, record)

		s.savePoster(ctx, id, record, &summary)
	}

	if err := s.writer.Write(ctx, start, movies); err != nil {
		return summary, fmt.Errorf("write report: %w", err)
	}
	summary.Movies = len(movies)
	summary.ReportPath = s.writer.Path()

	s.logger.Info("run complete",
		zap.Int("identifiers", summary.Identifiers),
		zap.Int("movies", summary.Movies),
		zap.Int("posters_saved", summary.PostersSaved),
		zap.Strings("posters_skipped", summary.PostersSkipped),
		zap.Strings("posters_failed", summary.PostersFailed),
		zap.String("report", summary.ReportPath),
	)
	return summary, nil
}

func (s *Scraper) savePoster(ctx context.Context, id string, record json.RawMessage, summary *Summary) {
	imageURL, ok := omdb.PosterURL(record)
	if !ok {
		s.logger.Warn("no poster in metadata; image not saved", zap.String("id", id))
		summary.PostersSkipped = append(summary.PostersSkipped, id)
		s.recorder.ObservePoster("", metrics.PosterSkipped)
		return
	}

	uri, err := s.posters.Save(ctx, id, imageURL)
	if err != nil {
		s.logger.Error("cannot save movie image",
			zap.String("id", id),
			zap.String("poster_url", imageURL),
			zap.Error(err),
		)
		summary.PostersFailed = append(summary.PostersFailed, id)
		s.recorder.ObservePoster(imageURL, metrics.PosterFailed)
		return
	}

	summary.PostersSaved++
	s.recorder.ObservePoster(imageURL, metrics.PosterSaved)
	s.logger.Debug("poster saved", zap.String("id", id), zap.String("uri", uri))
}
