package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"
)

// maxCSVBytes caps remote downloads.
var maxCSVBytes int64 = 256 << 20

// HTTPSource downloads a CSV export from a fixed URL.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source for url with the given request timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Name implements Source.
func (s *HTTPSource) Name() string { return s.url }

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) (*RawTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPSource.Fetch: build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTPSource.Fetch: GET %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("HTTPSource.Fetch: GET %s: unexpected status %s", s.url, resp.Status)
	}

	// File hosts answer with an HTML interstitial instead of the file when
	// the link is not a direct download.
	if mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil && mediaType == "text/html" {
		return nil, fmt.Errorf("HTTPSource.Fetch: GET %s: got an HTML page, not CSV", s.url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVBytes+1))
	if err != nil {
		return nil, fmt.Errorf("HTTPSource.Fetch: read body: %w", err)
	}
	if int64(len(data)) > maxCSVBytes {
		return nil, fmt.Errorf("HTTPSource.Fetch: body exceeds %d bytes", maxCSVBytes)
	}

	return ParseCSV(data)
}

// Close implements Source.
func (s *HTTPSource) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
