package source

import (
	"context"
	"fmt"

	infraBQ "github.com/dvloznov/techmart-analytics/internal/infra/bigquery"
)

// BigQuerySource reads the transactions table from BigQuery.
type BigQuerySource struct {
	name string
	repo infraBQ.TransactionsRepository
}

// NewBigQuerySource creates a source for project.dataset.table.
func NewBigQuerySource(ctx context.Context, project, dataset, table string) (*BigQuerySource, error) {
	repo, err := infraBQ.NewBigQueryTransactionsRepository(ctx, project, dataset, table)
	if err != nil {
		return nil, fmt.Errorf("NewBigQuerySource: %w", err)
	}
	return NewBigQuerySourceWithRepo(fmt.Sprintf("bigquery://%s/%s/%s", project, dataset, table), repo), nil
}

// NewBigQuerySourceWithRepo creates a source over an existing repository.
func NewBigQuerySourceWithRepo(name string, repo infraBQ.TransactionsRepository) *BigQuerySource {
	return &BigQuerySource{name: name, repo: repo}
}

// Name implements Source.
func (s *BigQuerySource) Name() string { return s.name }

// Fetch implements Source.
func (s *BigQuerySource) Fetch(ctx context.Context) (*RawTable, error) {
	t, err := s.repo.ReadTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("BigQuerySource.Fetch: %w", err)
	}
	return &RawTable{Columns: t.Columns, Rows: t.Rows}, nil
}

// Close implements Source.
func (s *BigQuerySource) Close() error {
	return s.repo.Close()
}
