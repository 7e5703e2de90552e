package poster

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/movie-scraper/internal/storage/memory"
)

const posterURL = "https://m.media-amazon.com/images/M/poster.jpg"

func newMockedDownloader(t *testing.T) (*Downloader, *memory.BlobStore) {
	t.Helper()

	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	store := memory.NewBlobStore()
	d, err := NewDownloader(Config{Dir: "thumbs", UserAgent: "test-agent"}, client, store, nil)
	require.NoError(t, err)
	return d, store
}

func TestNewDownloaderRequiresStore(t *testing.T) {
	_, err := NewDownloader(Config{}, nil, nil, nil)
	assert.Error(t, err)
}

func TestSaveStoresPoster(t *testing.T) {
	d, store := newMockedDownloader(t)
	httpmock.RegisterResponder(http.MethodGet, posterURL, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "test-agent", req.Header.Get("User-Agent"))
		return httpmock.NewBytesResponse(http.StatusOK, []byte("jpeg-bytes")), nil
	})

	uri, err := d.Save(context.Background(), "tt0111161", posterURL)
	require.NoError(t, err)
	assert.Equal(t, "memory://thumbs/tt0111161.jpg", uri)

	data, ok := store.Get("thumbs/tt0111161.jpg")
	require.True(t, ok)
	assert.Equal(t, "jpeg-bytes", string(data))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestSaveNon2xx(t *testing.T) {
	d, store := newMockedDownloader(t)
	httpmock.RegisterResponder(http.MethodGet, posterURL, httpmock.NewStringResponder(http.StatusNotFound, "missing"))

	_, err := d.Save(context.Background(), "tt1", posterURL)
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestSaveTransportError(t *testing.T) {
	d, _ := newMockedDownloader(t)
	httpmock.RegisterResponder(http.MethodGet, posterURL, httpmock.NewErrorResponder(errors.New("connection reset")))

	_, err := d.Save(context.Background(), "tt1", posterURL)
	assert.Error(t, err)
}

func TestSaveEmptyURL(t *testing.T) {
	d, _ := newMockedDownloader(t)

	_, err := d.Save(context.Background(), "tt1", "  ")
	assert.ErrorIs(t, err, ErrNoPoster)
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestSaveInvalidURL(t *testing.T) {
	d, _ := newMockedDownloader(t)

	_, err := d.Save(context.Background(), "tt1", "://bad")
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	d, err := NewDownloader(Config{Dir: "thumbs"}, nil, memory.NewBlobStore(), nil)
	require.NoError(t, err)
	assert.Equal(t, "thumbs/tt0068646.jpg", d.Path("tt0068646"))
}
