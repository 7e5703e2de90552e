// Package metrics exposes Prometheus collectors for a scraper run.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Poster outcomes used as the "result" label.
const (
	PosterSaved   = "saved"
	PosterSkipped = "skipped"
	PosterFailed  = "failed"
)

// Recorder owns the collectors for one scraper process.
type Recorder struct {
	registry *prometheus.Registry

	identifiers     prometheus.Gauge
	movies          prometheus.Counter
	metadataSeconds prometheus.Histogram
	posters         *prometheus.CounterVec
	runSeconds      prometheus.Gauge
	lastSuccess     prometheus.Gauge
}

// NewRecorder registers the collectors against a fresh registry.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		identifiers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scraper_identifiers",
			Help: "Identifiers extracted from the chart page in the last run.",
		}),
		movies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_movies_fetched_total",
			Help: "Metadata documents fetched.",
		}),
		metadataSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_metadata_fetch_duration_seconds",
			Help:    "Metadata API call latency.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		posters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_posters_total",
			Help: "Poster downloads partitioned by site and result.",
		}, []string{"site", "result"}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scraper_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "scraper_last_success_timestamp_seconds",
			Help: "Unix time the last successful run finished.",
		}),
	}
	for _, collector := range []prometheus.Collector{
		r.identifiers,
		r.movies,
		r.metadataSeconds,
		r.posters,
		r.runSeconds,
		r.lastSuccess,
	} {
		if err := r.registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register scraper collector: %w", err)
		}
	}
	return r, nil
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveIdentifiers records how many ids the extractor produced.
func (r *Recorder) ObserveIdentifiers(n int) {
	r.identifiers.Set(float64(n))
}

// ObserveMovie counts one fetched metadata document.
func (r *Recorder) ObserveMovie(duration time.Duration) {
	r.movies.Inc()
	r.metadataSeconds.Observe(duration.Seconds())
}

// ObservePoster counts a poster outcome for the image's host.
func (r *Recorder) ObservePoster(imageURL, result string) {
	site := "none"
	if imageURL != "" {
		site = SanitizeSite(imageURL)
	}
	r.posters.WithLabelValues(site, result).Inc()
}

// ObserveRun records the run's wall time and, on success, its finish time.
func (r *Recorder) ObserveRun(duration time.Duration, finished time.Time, success bool) {
	r.runSeconds.Set(duration.Seconds())
	if success {
		r.lastSuccess.Set(float64(finished.Unix()))
	}
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}
