package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
)

// TransactionsRepository reads the retail transactions table.
type TransactionsRepository interface {
	// ReadTransactions returns every row of the configured table along with
	// its column names in schema order.
	ReadTransactions(ctx context.Context) (*Table, error)

	// Close releases the underlying client.
	Close() error
}

// BigQueryTransactionsRepository is the concrete implementation of
// TransactionsRepository. It holds a shared BigQuery client to avoid creating
// a new connection for each load.
type BigQueryTransactionsRepository struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewBigQueryTransactionsRepository creates a repository reading
// project.dataset.table.
func NewBigQueryTransactionsRepository(ctx context.Context, projectID, dataset, table string) (*BigQueryTransactionsRepository, error) {
	if err := validateIdentifier(dataset); err != nil {
		return nil, fmt.Errorf("NewBigQueryTransactionsRepository: dataset: %w", err)
	}
	if err := validateIdentifier(table); err != nil {
		return nil, fmt.Errorf("NewBigQueryTransactionsRepository: table: %w", err)
	}

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryTransactionsRepository: creating client: %w", err)
	}
	return &BigQueryTransactionsRepository{
		client:  client,
		dataset: dataset,
		table:   table,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryTransactionsRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// ReadTransactions delegates to ReadTransactionsWithClient with the shared client.
func (r *BigQueryTransactionsRepository) ReadTransactions(ctx context.Context) (*Table, error) {
	return ReadTransactionsWithClient(ctx, r.client, r.dataset, r.table)
}

var _ TransactionsRepository = (*BigQueryTransactionsRepository)(nil)
