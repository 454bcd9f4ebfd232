package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// database/sql driver names registered by the imported drivers.
const (
	DriverPostgres   = "postgres"
	DriverClickHouse = "clickhouse"
	DriverSQLite     = "sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource runs SELECT * FROM <table> against a relational database.
type SQLSource struct {
	name  string
	db    *sql.DB
	query string
}

// OpenSQL opens a connection with the named driver and verifies it with a ping.
func OpenSQL(ctx context.Context, driver, dsn, table string) (*SQLSource, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenSQL: open %s: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenSQL: ping %s: %w", driver, err)
	}

	src, err := NewSQLSource(db, driver, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return src, nil
}

// NewSQLSource wraps an open database handle. The source owns db and closes it.
func NewSQLSource(db *sql.DB, name, table string) (*SQLSource, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("NewSQLSource: invalid table name %q", table)
	}
	return &SQLSource{
		name:  name + ":" + table,
		db:    db,
		query: "SELECT * FROM " + table,
	}, nil
}

// Name implements Source.
func (s *SQLSource) Name() string { return s.name }

// Fetch implements Source.
func (s *SQLSource) Fetch(ctx context.Context) (*RawTable, error) {
	rows, err := s.db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("SQLSource.Fetch: query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("SQLSource.Fetch: columns: %w", err)
	}

	table := &RawTable{Columns: columns}
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("SQLSource.Fetch: scan row %d: %w", len(table.Rows)+1, err)
		}
		for i, c := range cells {
			// Drivers may reuse byte buffers between rows.
			if b, ok := c.([]byte); ok {
				cells[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SQLSource.Fetch: iterate rows: %w", err)
	}

	return table, nil
}

// Close implements Source.
func (s *SQLSource) Close() error {
	return s.db.Close()
}
