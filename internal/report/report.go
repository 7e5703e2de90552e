// Package report serializes the collected metadata into the dated report file.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DateLayout is the fixed YYYY-MM-DD format of the date field.
const DateLayout = "2006-01-02"

// Document is the persisted report. Movies are written as received.
type Document struct {
	Date   string            `json:"date"`
	Movies []json.RawMessage `json:"movies"`
}

// NewDocument builds a Document for date. A nil movies slice is written as [].
func NewDocument(date time.Time, movies []json.RawMessage) Document {
	if movies == nil {
		movies = []json.RawMessage{}
	}
	return Document{
		Date:   date.Format(DateLayout),
		Movies: movies,
	}
}

// Writer writes report documents to a fixed path.
type Writer struct {
	path string
}

// NewWriter returns a Writer targeting path.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, fmt.Errorf("report path is required")
	}
	return &Writer{path: path}, nil
}

// Path returns the report location.
func (w *Writer) Path() string {
	return w.path
}

// Write overwrites the report file with date and movies in order.
func (w *Writer) Write(ctx context.Context, date time.Time, movies []json.RawMessage) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	payload, err := Encode(NewDocument(date, movies))
	if err != nil {
		return err
	}

	// #nosec G304 -- report path comes from configuration.
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open report %s: %w", w.path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report %s: %w", w.path, closeErr)
		}
	}()

	if _, err := file.Write(payload); err != nil {
		return fmt.Errorf("write report %s: %w", w.path, err)
	}
	return nil
}

// Encode renders doc as indented JSON followed by a newline.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}
