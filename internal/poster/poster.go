// Package poster downloads poster images into a blob store.
package poster

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/movie-scraper/internal/storage"
)

// ErrNoPoster marks a metadata record that carries no usable poster URL.
var ErrNoPoster = errors.New("no poster url")

const defaultContentType = "image/jpeg"

// Config controls where posters land and how they are requested.
type Config struct {
	// Dir is the blob path prefix, e.g. "thumbs".
	Dir       string
	UserAgent string
}

// Downloader streams poster images into a BlobStore.
type Downloader struct {
	cfg    Config
	client *http.Client
	store  storage.BlobStore
	logger *zap.Logger
}

// NewDownloader wires a Downloader. A nil client uses http.DefaultClient.
func NewDownloader(cfg Config, client *http.Client, store storage.BlobStore, logger *zap.Logger) (*Downloader, error) {
	if store == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{cfg: cfg, client: client, store: store, logger: logger}, nil
}

// Path returns the blob path for id's poster.
func (d *Downloader) Path(id string) string {
	return path.Join(d.cfg.Dir, id+".jpg")
}

// Save downloads imageURL and stores it under Path(id). The response body
// is closed on every path.
func (d *Downloader) Save(ctx context.Context, id, imageURL string) (string, error) {
	if strings.TrimSpace(imageURL) == "" {
		return "", ErrNoPoster
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build poster request: %w", err)
	}
	if d.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", d.cfg.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download poster: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			d.logger.Warn("close poster body", zap.String("id", id), zap.Error(closeErr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download poster: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultContentType
	}
	uri, err := d.store.PutObject(ctx, d.Path(id), contentType, resp.Body)
	if err != nil {
		return "", fmt.Errorf("store poster: %w", err)
	}
	return uri, nil
}
