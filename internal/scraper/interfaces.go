package scraper

import (
	"context"
	"encoding/json"
	"time"
)

// Renderer returns the fully rendered markup of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// MetadataSource fetches the raw metadata document for one identifier.
type MetadataSource interface {
	Movie(ctx context.Context, id string) (json.RawMessage, error)
}

// PosterSaver stores the poster image for one identifier.
type PosterSaver interface {
	Save(ctx context.Context, id, imageURL string) (string, error)
}

// ReportWriter persists the final document.
type ReportWriter interface {
	Write(ctx context.Context, date time.Time, movies []json.RawMessage) error
	Path() string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// Recorder receives run metrics. Implemented by metrics.Recorder.
type Recorder interface {
	ObserveIdentifiers(n int)
	ObserveMovie(duration time.Duration)
	ObservePoster(imageURL, result string)
	ObserveRun(duration time.Duration, finished time.Time, success bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveIdentifiers(int)                    {}
func (nopRecorder) ObserveMovie(time.Duration)                {}
func (nopRecorder) ObservePoster(string, string)              {}
func (nopRecorder) ObserveRun(time.Duration, time.Time, bool) {}
