// Package fetcher defines the request/response types shared by HTTP fetchers.
package fetcher

import (
	"context"
	"net/http"
	"time"
)

// Request captures everything needed to fetch a URL.
type Request struct {
	URL     string
	Headers http.Header
}

// Response is the result returned by a Fetcher implementation.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports whether the response carries a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}
