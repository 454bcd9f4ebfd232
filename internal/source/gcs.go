package source

import (
	"context"
	"fmt"

	"github.com/dvloznov/techmart-analytics/internal/gcs"
)

// GCSSource reads a CSV export stored in Cloud Storage.
type GCSSource struct {
	uri     string
	fetcher gcs.ObjectFetcher
	closer  func() error
}

// NewGCSSource creates a source for a gs:// URI using Application Default
// Credentials.
func NewGCSSource(ctx context.Context, uri string) (*GCSSource, error) {
	if _, _, err := gcs.ParseURI(uri); err != nil {
		return nil, fmt.Errorf("NewGCSSource: %w", err)
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewGCSSource: %w", err)
	}
	return &GCSSource{uri: uri, fetcher: client, closer: client.Close}, nil
}

// NewGCSSourceWithFetcher creates a source over an existing fetcher.
func NewGCSSourceWithFetcher(uri string, fetcher gcs.ObjectFetcher) *GCSSource {
	return &GCSSource{uri: uri, fetcher: fetcher}
}

// Name implements Source.
func (s *GCSSource) Name() string { return s.uri }

// Fetch implements Source.
func (s *GCSSource) Fetch(ctx context.Context) (*RawTable, error) {
	data, err := s.fetcher.FetchFromGCS(ctx, s.uri)
	if err != nil {
		return nil, fmt.Errorf("GCSSource.Fetch: %w", err)
	}
	return ParseCSV(data)
}

// Close implements Source.
func (s *GCSSource) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}
