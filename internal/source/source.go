// Package source fetches the raw transactions table from a configured data
// source. Sources differ only in transport; all of them return a RawTable
// whose cells keep the types the transport produced.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// RawTable is an untyped tabular result: ordered column labels (as the
// source spells them) and rows of cells. A nil cell is a missing value.
type RawTable struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Source is a named, read-only provider of the transactions table.
type Source interface {
	// Name identifies the source in logs and status output.
	Name() string

	// Fetch retrieves the full table. Any error means the source could not
	// be read or returned malformed data.
	Fetch(ctx context.Context) (*RawTable, error)

	// Close releases connections held by the source.
	Close() error
}

// Options tune how Open builds a Source.
type Options struct {
	// Table is queried by SQL and BigQuery sources.
	Table string

	// HTTPTimeout bounds remote CSV downloads.
	HTTPTimeout time.Duration

	// NotionToken authenticates notion:// sources.
	NotionToken string
}

func (o Options) withDefaults() Options {
	if o.Table == "" {
		o.Table = "transactions"
	}
	if o.HTTPTimeout <= 0 {
		o.HTTPTimeout = 60 * time.Second
	}
	return o
}

// Open selects a Source implementation from the URI scheme:
//
//	http(s)://...                       CSV download
//	file:///path/to/data.csv or a path  local CSV
//	gs://bucket/object.csv              CSV in Cloud Storage
//	postgres://, postgresql://          PostgreSQL
//	clickhouse://                       ClickHouse
//	sqlite:///path/to/db                SQLite
//	bigquery://project/dataset[/table]  BigQuery
//	notion://<database-id>              Notion database
func Open(ctx context.Context, uri string, opts Options) (Source, error) {
	opts = opts.withDefaults()

	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("source.Open: empty source URI")
	}

	scheme := ""
	if idx := strings.Index(uri, "://"); idx > 0 {
		scheme = strings.ToLower(uri[:idx])
	}

	switch scheme {
	case "http", "https":
		return NewHTTPSource(uri, opts.HTTPTimeout), nil
	case "", "file":
		return NewFileSource(strings.TrimPrefix(uri, "file://")), nil
	case "gs":
		return NewGCSSource(ctx, uri)
	case "postgres", "postgresql":
		return OpenSQL(ctx, DriverPostgres, uri, opts.Table)
	case "clickhouse":
		return OpenSQL(ctx, DriverClickHouse, uri, opts.Table)
	case "sqlite":
		return OpenSQL(ctx, DriverSQLite, strings.TrimPrefix(uri, "sqlite://"), opts.Table)
	case "bigquery":
		project, dataset, table, err := parseBigQueryURI(uri)
		if err != nil {
			return nil, err
		}
		if table == "" {
			table = opts.Table
		}
		return NewBigQuerySource(ctx, project, dataset, table)
	case "notion":
		src, err := NewNotionSource(opts.NotionToken, uri[len("notion://"):])
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("source.Open: unsupported scheme %q", scheme)
	}
}

// parseBigQueryURI splits bigquery://project/dataset[/table].
func parseBigQueryURI(uri string) (project, dataset, table string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", "", fmt.Errorf("source.Open: parse %q: %w", uri, err)
	}
	project = u.Host
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if project == "" || len(parts) == 0 || parts[0] == "" || len(parts) > 2 {
		return "", "", "", fmt.Errorf("source.Open: want bigquery://project/dataset[/table], got %q", uri)
	}
	dataset = parts[0]
	if len(parts) == 2 {
		table = parts[1]
	}
	return project, dataset, table, nil
}
