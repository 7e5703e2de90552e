// Package render produces fully rendered page markup for downstream parsing.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrRendererDisabled indicates no renderer has been configured.
var ErrRendererDisabled = errors.New("renderer disabled")

// Renderer returns the rendered markup for a URL.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Static returns fixed markup regardless of URL.
type Static struct {
	Markup string
}

// NewStatic creates a renderer that always returns markup.
func NewStatic(markup string) *Static {
	return &Static{Markup: markup}
}

// NewStaticFromFile loads markup saved from a previous render.
func NewStaticFromFile(path string) (*Static, error) {
	// #nosec G304 -- path comes from operator-supplied configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markup file %s: %w", path, err)
	}
	return &Static{Markup: string(data)}, nil
}

// Render honors cancellation and returns the fixed markup.
func (s *Static) Render(ctx context.Context, _ string) (string, error) {
	if s == nil {
		return "", ErrRendererDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("render canceled: %w", err)
	}
	return s.Markup, nil
}
