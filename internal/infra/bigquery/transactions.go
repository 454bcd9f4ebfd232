package bigquery

import (
	"fmt"
	"math/big"
	"regexp"

	"cloud.google.com/go/bigquery"
)

// Table is a schema-ordered result set. Cells hold the values BigQuery
// returns (string, int64, float64, bool, time.Time, civil.Date,
// civil.DateTime, nil) with NUMERIC values rendered as decimal strings.
type Table struct {
	Columns []string
	Rows    [][]any
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func columnNames(schema bigquery.Schema) []string {
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

// convertValue maps a BigQuery cell to a loader-friendly value.
func convertValue(v bigquery.Value) any {
	switch x := v.(type) {
	case *big.Rat:
		if x == nil {
			return nil
		}
		return x.FloatString(9)
	default:
		return x
	}
}
