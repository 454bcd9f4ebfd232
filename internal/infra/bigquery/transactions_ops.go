package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// ReadTransactionsWithClient runs SELECT * over dataset.table using the
// provided BigQuery client and returns all rows.
func ReadTransactionsWithClient(ctx context.Context, client *bigquery.Client, dataset, table string) (*Table, error) {
	if err := validateIdentifier(dataset); err != nil {
		return nil, fmt.Errorf("ReadTransactions: dataset: %w", err)
	}
	if err := validateIdentifier(table); err != nil {
		return nil, fmt.Errorf("ReadTransactions: table: %w", err)
	}

	q := client.Query(fmt.Sprintf("SELECT * FROM `%s.%s`", dataset, table))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ReadTransactions: query read: %w", err)
	}

	result := &Table{}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadTransactions: iter next: %w", err)
		}

		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = convertValue(v)
		}
		result.Rows = append(result.Rows, cells)
	}

	// Schema is populated once the iterator has fetched its first page.
	result.Columns = columnNames(it.Schema)
	if len(result.Columns) == 0 {
		return nil, fmt.Errorf("ReadTransactions: %s.%s returned no schema", dataset, table)
	}

	return result, nil
}
