// Package main hosts the moviescraper entrypoint.
//
// One invocation performs one run:
//   - Render: headless Chrome (chromedp) loads the IMDb Top 250 chart, scrolls to the bottom so lazy rows load,
//     waits render.settle, and hands back the DOM. The browser process is torn down before parsing starts.
//   - Extract: goquery walks a[href] and keeps /title/<id> links, collapsing only adjacent repeats.
//   - Enrich: one OMDb GET per id (colly fetcher), strictly sequential. Any metadata failure ends the run and no
//     report is written.
//   - Posters: each record's Poster URL is streamed to external-movies/thumbs/<id>.jpg (or GCS when
//     storage.gcs_bucket is set). Missing or failed posters are logged and counted, never fatal.
//   - Report: external-movies/movies.json is overwritten with {"date": "YYYY-MM-DD", "movies": [...]}.
//
// Quick checklist:
//   - OMDB_API_KEY must be set; the run refuses to start otherwise.
//   - external-movies/ and external-movies/thumbs/ must already exist.
//   - Other settings use SCRAPER_* env vars (SCRAPER_RENDER_SETTLE=3s, SCRAPER_METRICS_TEXTFILE=...) or --config.
//   - --markup-file replays a saved chart page instead of launching Chrome.
package main
