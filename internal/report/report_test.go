package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func readDoc(t *testing.T, path string) map[string]json.RawMessage {
	t.Helper()
	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "movies.json")
	w, err := NewWriter(path)
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())

	movies := []json.RawMessage{
		json.RawMessage(`{"Title":"The Shawshank Redemption","imdbID":"tt0111161"}`),
		json.RawMessage(`{"Title":"The Godfather","imdbID":"tt0068646","Ratings":[{"Source":"x","Value":"9/10"}]}`),
	}
	date := time.Date(2024, time.March, 5, 23, 0, 0, 0, time.UTC)
	require.NoError(t, w.Write(context.Background(), date, movies))

	doc := readDoc(t, path)
	assert.Len(t, doc, 2)

	var gotDate string
	require.NoError(t, json.Unmarshal(doc["date"], &gotDate))
	assert.Equal(t, "2024-03-05", gotDate)
	assert.Regexp(t, datePattern, gotDate)

	var gotMovies []json.RawMessage
	require.NoError(t, json.Unmarshal(doc["movies"], &gotMovies))
	require.Len(t, gotMovies, len(movies))
	for i := range movies {
		assert.JSONEq(t, string(movies[i]), string(gotMovies[i]))
	}
}

func TestWriteEmptyMovies(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "movies.json")
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), time.Now(), nil))

	doc := readDoc(t, path)
	assert.JSONEq(t, `[]`, string(doc["movies"]))

	var gotDate string
	require.NoError(t, json.Unmarshal(doc["date"], &gotDate))
	assert.Regexp(t, datePattern, gotDate)
}

func TestWriteOverwritesPreviousRun(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "movies.json")
	w, err := NewWriter(path)
	require.NoError(t, err)

	many := make([]json.RawMessage, 20)
	for i := range many {
		many[i] = json.RawMessage(`{"Title":"padding padding padding"}`)
	}
	require.NoError(t, w.Write(context.Background(), time.Now(), many))
	require.NoError(t, w.Write(context.Background(), time.Now(), []json.RawMessage{json.RawMessage(`{"a":1}`)}))

	doc := readDoc(t, path)
	var gotMovies []json.RawMessage
	require.NoError(t, json.Unmarshal(doc["movies"], &gotMovies))
	assert.Len(t, gotMovies, 1)
}

func TestWriteErrors(t *testing.T) {
	t.Parallel()

	_, err := NewWriter("")
	assert.Error(t, err)

	w, err := NewWriter(filepath.Join(t.TempDir(), "missing", "movies.json"))
	require.NoError(t, err)
	assert.Error(t, w.Write(context.Background(), time.Now(), nil), "parent dir must exist")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, time.Now(), nil), context.Canceled)

	bad := []json.RawMessage{json.RawMessage(`{not json`)}
	w2, err := NewWriter(filepath.Join(t.TempDir(), "movies.json"))
	require.NoError(t, err)
	assert.Error(t, w2.Write(context.Background(), time.Now(), bad))
}

func TestEncodeKeepsURLs(t *testing.T) {
	t.Parallel()

	out, err := Encode(NewDocument(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), []json.RawMessage{
		json.RawMessage(`{"Poster":"https://img/x.jpg?a=1&b=2"}`),
	}))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date": "2025-01-02"`)
	assert.Contains(t, string(out), `a=1&b=2`)
}
