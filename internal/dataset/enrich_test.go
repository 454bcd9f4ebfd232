package dataset

import (
	"math"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/domain"
	"github.com/dvloznov/techmart-analytics/internal/source"
)

var rawColumns = []string{
	" Timestamp ", "County", "StoreName", "Category", "Product",
	"PaymentMethod", "Gender", "Age", "Revenue", "Discount",
}

func rawRow(ts, county, store any, age any, revenue any) []any {
	return []any{ts, county, store, "Electronics", "Phone", "M-Pesa", "Female", age, revenue, "0"}
}

func TestNormalizeColumn(t *testing.T) {
	tests := map[string]string{
		" Timestamp ":     "timestamp",
		"StoreName":       "store_name",
		"store_name":      "store_name",
		"PAYMENTMETHOD":   "payment_method",
		"payment_method":  "payment_method",
		"Revenue":         "revenue",
		"Store Name":      "store_name",
		"Payment  Method": "payment_method",
		"\ufeff Timestamp": "timestamp",
	}
	for in, want := range tests {
		if got := NormalizeColumn(in); got != want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnrich(t *testing.T) {
	table := &source.RawTable{
		Columns: rawColumns,
		Rows: [][]any{
			rawRow("2024-01-15 10:30:00", "Nairobi", "Westgate", "29", "1500.50"),
			rawRow("not a date", "NaN", nil, "abc", "oops"),
			rawRow(nil, "", "Nyali", nil, nil),
		},
	}

	rows, stats, err := Enrich(table)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	first := rows[0]
	if first.Timestamp == nil || first.Calendar == nil {
		t.Fatal("first row should have a parsed timestamp")
	}
	if first.Calendar.Month != "2024-01" || first.Calendar.Hour != 10 || first.Calendar.Quarter != "2024Q1" {
		t.Errorf("calendar = %+v", *first.Calendar)
	}
	if first.County == nil || *first.County != "Nairobi" {
		t.Errorf("county = %v", first.County)
	}
	if first.StoreName == nil || *first.StoreName != "Westgate" {
		t.Errorf("store name = %v", first.StoreName)
	}
	if first.AgeGroup != domain.AgeGroupYouth || first.Age != "29" {
		t.Errorf("age = %q group %q", first.Age, first.AgeGroup)
	}
	if !first.Revenue.Valid || !first.Revenue.Decimal.Equal(decimal.RequireFromString("1500.5")) {
		t.Errorf("revenue = %v", first.Revenue)
	}

	second := rows[1]
	if second.Timestamp != nil || second.Calendar != nil {
		t.Error("unparseable timestamp should be null with null calendar")
	}
	if second.County != nil || second.StoreName != nil {
		t.Error("null markers should become nil")
	}
	if second.AgeGroup != domain.AgeGroupUnknown {
		t.Errorf("age group = %q, want Unknown", second.AgeGroup)
	}
	if second.Revenue.Valid {
		t.Error("unparseable revenue should be null")
	}

	third := rows[2]
	if third.County != nil {
		t.Error("empty county should be nil")
	}
	if third.Age != "" || third.AgeGroup != domain.AgeGroupUnknown {
		t.Errorf("missing age = %q group %q", third.Age, third.AgeGroup)
	}

	want := ParseStats{UnparsedTimestamps: 2, UnknownAges: 2, UnparsedAmounts: 1}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}

func TestEnrich_MissingColumns(t *testing.T) {
	table := &source.RawTable{
		Columns: []string{"timestamp", "county", "revenue"},
		Rows:    [][]any{{"2024-01-01", "Nairobi", "10"}},
	}
	_, _, err := Enrich(table)
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	for _, col := range []string{"store_name", "age", "discount"} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("error %q should name %s", err, col)
		}
	}
}

func TestEnrich_ShortRow(t *testing.T) {
	table := &source.RawTable{
		Columns: rawColumns,
		Rows:    [][]any{{"2024-01-01", "Nairobi"}},
	}
	rows, _, err := Enrich(table)
	if err != nil {
		t.Fatalf("Enrich() error = %v", err)
	}
	if rows[0].Product != nil || rows[0].Revenue.Valid {
		t.Error("cells past the end of a short row should be null")
	}
}

func TestParseTimestamp(t *testing.T) {
	utc := func(y int, m time.Month, d, h, min, s int) time.Time {
		return time.Date(y, m, d, h, min, s, 0, time.UTC)
	}
	tests := []struct {
		name string
		cell any
		want time.Time
		ok   bool
	}{
		{"sql datetime", "2024-01-15 10:30:00", utc(2024, 1, 15, 10, 30, 0), true},
		{"fractional seconds", "2024-01-15 10:30:00.250", time.Date(2024, 1, 15, 10, 30, 0, 250e6, time.UTC), true},
		{"iso", "2024-01-15T10:30:00", utc(2024, 1, 15, 10, 30, 0), true},
		{"rfc3339", "2024-01-15T10:30:00Z", utc(2024, 1, 15, 10, 30, 0), true},
		{"minutes", "2024-01-15 10:30", utc(2024, 1, 15, 10, 30, 0), true},
		{"date only", "2024-01-15", utc(2024, 1, 15, 0, 0, 0), true},
		{"slashes", "2024/01/15 08:00:00", utc(2024, 1, 15, 8, 0, 0), true},
		{"us date", "01/15/2024 10:30", utc(2024, 1, 15, 10, 30, 0), true},
		{"padded", "  2024-01-15  ", utc(2024, 1, 15, 0, 0, 0), true},
		{"bytes", []byte("2024-01-15"), utc(2024, 1, 15, 0, 0, 0), true},
		{"time value", utc(2023, 12, 31, 23, 0, 0), utc(2023, 12, 31, 23, 0, 0), true},
		{"civil datetime", civil.DateTime{Date: civil.Date{Year: 2024, Month: 3, Day: 2}, Time: civil.Time{Hour: 5}}, utc(2024, 3, 2, 5, 0, 0), true},
		{"civil date", civil.Date{Year: 2024, Month: 3, Day: 2}, utc(2024, 3, 2, 0, 0, 0), true},
		{"garbage", "yesterday", time.Time{}, false},
		{"invalid day", "2024-02-30", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"nil", nil, time.Time{}, false},
		{"zero time", time.Time{}, time.Time{}, false},
		{"number", int64(1700000000), time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.cell)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%v) ok = %v, want %v", tt.cell, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%v) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		cell      any
		want      string
		wantValid bool
		wantOK    bool
	}{
		{"text", "1500.50", "1500.5", true, true},
		{"thousands separator", "1,250", "1250", true, true},
		{"int64", int64(200), "200", true, true},
		{"float", 99.95, "99.95", true, true},
		{"nil", nil, "", false, true},
		{"null marker", "NaN", "", false, true},
		{"nan float", math.NaN(), "", false, true},
		{"garbage", "ten", "", false, false},
		{"bool", true, "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.cell)
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got.Valid != tt.wantValid {
				t.Fatalf("Valid = %v, want %v", got.Valid, tt.wantValid)
			}
			if got.Valid && !got.Decimal.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("amount = %s, want %s", got.Decimal, tt.want)
			}
		})
	}
}

func TestParseCategorical(t *testing.T) {
	for _, cell := range []any{nil, "", "  ", "NaN", "NA", "null"} {
		if got := ParseCategorical(cell); got != nil {
			t.Errorf("ParseCategorical(%q) = %q, want nil", cell, *got)
		}
	}
	if got := ParseCategorical("Nairobi"); got == nil || *got != "Nairobi" {
		t.Errorf("ParseCategorical(Nairobi) = %v", got)
	}
	if got := ParseCategorical(int64(7)); got == nil || *got != "7" {
		t.Errorf("ParseCategorical(7) = %v", got)
	}
}
