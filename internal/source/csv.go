package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// nullMarkers are the CSV spellings read as missing values.
var nullMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "<nil>"}

var utf8BOM = []byte("\ufeff")

// ParseCSV reads CSV bytes into a RawTable. Every column is kept as text;
// the loader decides how to interpret each one. Missing values become nil.
//
// Rows shorter than the header are padded with missing values. Rows longer
// than the header are an error.
func ParseCSV(data []byte) (*RawTable, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("ParseCSV: empty document")
	}

	records, err := readRecords(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 1 {
		return &RawTable{Columns: records[0]}, nil
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nullMarkers),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("ParseCSV: read frame: %w", df.Err)
	}

	names := df.Names()
	table := &RawTable{
		Columns: names,
		Rows:    make([][]any, df.Nrow()),
	}

	for c, name := range names {
		col := df.Col(name)
		for r := 0; r < df.Nrow(); r++ {
			if table.Rows[r] == nil {
				table.Rows[r] = make([]any, len(names))
			}
			elem := col.Elem(r)
			if elem.IsNA() {
				continue
			}
			table.Rows[r][c] = elem.String()
		}
	}

	return table, nil
}

// readRecords splits data into the header and records, each record exactly
// as wide as the header.
func readRecords(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("ParseCSV: read header: %w", err)
	}
	records := [][]string{header}

	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ParseCSV: %w", err)
		}

		switch {
		case len(rec) > len(header):
			line, _ := r.FieldPos(0)
			return nil, fmt.Errorf("ParseCSV: record on line %d has %d fields, header has %d", line, len(rec), len(header))
		case len(rec) < len(header):
			padded := make([]string, len(header))
			copy(padded, rec)
			rec = padded
		}
		records = append(records, rec)
	}

	return records, nil
}
