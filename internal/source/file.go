package source

import (
	"context"
	"fmt"
	"os"
)

// FileSource reads a CSV export from the local filesystem.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the CSV file at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return "file://" + s.path }

// Fetch implements Source.
func (s *FileSource) Fetch(ctx context.Context) (*RawTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("FileSource.Fetch: %w", err)
	}
	return ParseCSV(data)
}

// Close implements Source.
func (s *FileSource) Close() error { return nil }
