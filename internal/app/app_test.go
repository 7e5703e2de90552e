// Package app_test contains end-to-end tests for the wired scraper.
package app_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/movie-scraper/internal/app"
	"github.com/JakeFAU/movie-scraper/internal/config"
	"github.com/JakeFAU/movie-scraper/internal/render"
)

const chart = `<html><body>
<a href="/title/tt0111161/"><img></a><a href="/title/tt0111161/">Shawshank</a>
<a href="/title/tt0068646/"><img></a><a href="/title/tt0068646/">Godfather</a>
<a href="/title/tt0000000/">No poster</a>
</body></html>`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/omdb/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "test-key" || q.Get("r") != "json" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := q.Get("i")
		poster := srv.URL + "/posters/" + id + ".jpg"
		if id == "tt0000000" {
			poster = "N/A"
		}
		if id == "tt0068646" {
			poster = srv.URL + "/posters/broken.jpg"
		}
		fmt.Fprintf(w, `{"Title":"Movie %s","imdbID":%q,"Poster":%q,"Response":"True"}`, id, id, poster)
	})
	mux.HandleFunc("/posters/broken.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/posters/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		fmt.Fprint(w, "jpeg:"+strings.TrimPrefix(r.URL.Path, "/posters/"))
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, upstream string) config.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "thumbs"), 0o750))
	return config.Config{
		Chart:   config.ChartConfig{URL: "https://www.imdb.com/chart/top/"},
		OMDb:    config.OMDbConfig{BaseURL: upstream + "/omdb/", APIKey: "test-key"},
		HTTP:    config.HTTPConfig{UserAgent: "test"},
		Output:  config.OutputConfig{Dir: dir, ThumbsDir: "thumbs", ReportFile: "movies.json"},
		Metrics: config.MetricsConfig{Textfile: filepath.Join(dir, "scraper.prom")},
	}
}

func TestRunEndToEnd(t *testing.T) {
	upstream := newUpstream(t)
	cfg := testConfig(t, upstream.URL)

	a, err := app.New(context.Background(), cfg, app.Options{Renderer: render.NewStatic(chart)}, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.GetLogger())
	require.NotNil(t, a.GetScraper())

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Identifiers)
	assert.Equal(t, 3, summary.Movies)
	assert.Equal(t, 1, summary.PostersSaved)
	assert.Equal(t, []string{"tt0000000"}, summary.PostersSkipped)
	assert.Equal(t, []string{"tt0068646"}, summary.PostersFailed)
	assert.NotEmpty(t, summary.RunID)

	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(cfg.ReportPath())
	require.NoError(t, err)
	var doc struct {
		Date   string                   `json:"date"`
		Movies []map[string]interface{} `json:"movies"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, doc.Date)
	require.Len(t, doc.Movies, 3)
	assert.Equal(t, "tt0111161", doc.Movies[0]["imdbID"])
	assert.Equal(t, "tt0068646", doc.Movies[1]["imdbID"])
	assert.Equal(t, "tt0000000", doc.Movies[2]["imdbID"])

	// #nosec G304 -- test reads from the controlled temp directory.
	poster, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "thumbs", "tt0111161.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg:tt0111161.jpg", string(poster))
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "thumbs", "tt0068646.jpg"))
	assert.True(t, os.IsNotExist(err))

	// #nosec G304 -- test reads from the controlled temp directory.
	prom, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "scraper_identifiers 3")
}

func TestRunBadAPIKeyIsFatal(t *testing.T) {
	upstream := newUpstream(t)
	cfg := testConfig(t, upstream.URL)
	cfg.OMDb.APIKey = "wrong"

	a, err := app.New(context.Background(), cfg, app.Options{Renderer: render.NewStatic(chart)}, nil)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tt0111161")

	_, statErr := os.Stat(cfg.ReportPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewRequiresLayout(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Output.ThumbsDir = "missing"

	_, err := app.New(context.Background(), cfg, app.Options{Renderer: render.NewStatic(chart)}, nil)
	assert.Error(t, err)
}
