// Package omdb fetches raw movie metadata documents from the OMDb API.
package omdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/movie-scraper/internal/fetcher"
)

// ErrNotObject is returned when the API body is not a JSON object.
var ErrNotObject = errors.New("metadata response is not a JSON object")

// Config identifies the API endpoint and credentials.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client issues one GET per identifier and returns the body untouched.
type Client struct {
	baseURL *url.URL
	apiKey  string
	fetcher fetcher.Fetcher
	logger  *zap.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, f fetcher.Fetcher, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if f == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		fetcher: f,
		logger:  logger,
	}, nil
}

// Movie fetches the metadata document for id.
//
// OMDb reports unknown ids in-band ({"Response":"False",...}) with a 200;
// such documents are returned as-is.
func (c *Client) Movie(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, fmt.Errorf("identifier is required")
	}
	resp, err := c.fetcher.Fetch(ctx, fetcher.Request{URL: c.movieURL(id)})
	if err != nil {
		return nil, fmt.Errorf("fetch metadata for %s: %w", id, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("fetch metadata for %s: unexpected status %d", id, resp.StatusCode)
	}

	body := bytes.TrimSpace(resp.Body)
	if !json.Valid(body) {
		return nil, fmt.Errorf("decode metadata for %s: invalid JSON", id)
	}
	if len(body) == 0 || body[0] != '{' {
		return nil, fmt.Errorf("decode metadata for %s: %w", id, ErrNotObject)
	}

	c.logger.Debug("metadata fetched",
		zap.String("id", id),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", resp.Duration),
	)
	return json.RawMessage(body), nil
}

func (c *Client) movieURL(id string) string {
	u := *c.baseURL
	q := u.Query()
	q.Set("i", id)
	q.Set("r", "json")
	q.Set("apikey", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String()
}

// PosterURL returns the poster URL from a metadata record. Records without
// a usable poster (missing, not a string, empty, or "N/A") report false.
func PosterURL(record json.RawMessage) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(record, &fields); err != nil {
		return "", false
	}
	raw, ok := fields["Poster"]
	if !ok {
		return "", false
	}
	var poster string
	if err := json.Unmarshal(raw, &poster); err != nil {
		return "", false
	}
	poster = strings.TrimSpace(poster)
	if poster == "" || strings.EqualFold(poster, "N/A") {
		return "", false
	}
	return poster, true
}
