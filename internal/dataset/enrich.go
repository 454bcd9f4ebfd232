package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/domain"
	"github.com/dvloznov/techmart-analytics/internal/source"
)

// Canonical column names after normalization.
const (
	ColTimestamp     = "timestamp"
	ColCounty        = "county"
	ColStoreName     = "store_name"
	ColCategory      = "category"
	ColProduct       = "product"
	ColPaymentMethod = "payment_method"
	ColGender        = "gender"
	ColAge           = "age"
	ColRevenue       = "revenue"
	ColDiscount      = "discount"
)

// RequiredColumns must all be present after normalization.
var RequiredColumns = []string{
	ColTimestamp, ColCounty, ColStoreName, ColCategory, ColProduct,
	ColPaymentMethod, ColGender, ColAge, ColRevenue, ColDiscount,
}

var columnAliases = map[string]string{
	"storename":     ColStoreName,
	"paymentmethod": ColPaymentMethod,
}

// categoricalNulls are text values read as a missing category.
var categoricalNulls = map[string]struct{}{
	"":     {},
	"NaN":  {},
	"nan":  {},
	"NA":   {},
	"N/A":  {},
	"null": {},
	"NULL": {},
}

// timestampLayouts are tried in order against textual timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseStats counts cells that could not be interpreted during a load.
type ParseStats struct {
	UnparsedTimestamps int `json:"unparsed_timestamps"`
	UnknownAges        int `json:"unknown_ages"`
	UnparsedAmounts    int `json:"unparsed_amounts"`
}

// NormalizeColumn trims and lower-cases a column label, joins words with
// underscores and resolves aliases. A leading byte order mark is dropped.
func NormalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	n := strings.Join(strings.Fields(strings.ToLower(name)), "_")
	if alias, ok := columnAliases[n]; ok {
		return alias
	}
	return n
}

// columnIndex maps canonical names to cell positions. The first occurrence of
// a duplicated column wins.
func columnIndex(columns []string) (map[string]int, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		n := NormalizeColumn(c)
		if _, seen := idx[n]; !seen {
			idx[n] = i
		}
	}

	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := idx[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// Enrich converts a raw table into transactions. It fails only when a
// required column is absent; bad cells degrade to null values and are
// counted in the returned stats.
func Enrich(table *source.RawTable) ([]domain.Transaction, ParseStats, error) {
	var stats ParseStats
	if table == nil {
		return nil, stats, fmt.Errorf("Enrich: nil table")
	}

	idx, err := columnIndex(table.Columns)
	if err != nil {
		return nil, stats, fmt.Errorf("Enrich: %w", err)
	}

	rows := make([]domain.Transaction, 0, len(table.Rows))
	for _, cells := range table.Rows {
		cell := func(col string) any {
			i := idx[col]
			if i >= len(cells) {
				return nil
			}
			return cells[i]
		}

		var tx domain.Transaction

		if ts, ok := ParseTimestamp(cell(ColTimestamp)); ok {
			tx.Timestamp = &ts
			cal := domain.DeriveCalendar(ts)
			tx.Calendar = &cal
		} else {
			stats.UnparsedTimestamps++
		}

		tx.County = ParseCategorical(cell(ColCounty))
		tx.StoreName = ParseCategorical(cell(ColStoreName))
		tx.Category = ParseCategorical(cell(ColCategory))
		tx.Product = ParseCategorical(cell(ColProduct))
		tx.PaymentMethod = ParseCategorical(cell(ColPaymentMethod))
		tx.Gender = ParseCategorical(cell(ColGender))

		rawAge := cell(ColAge)
		if rawAge != nil {
			tx.Age = cellText(rawAge)
		}
		tx.AgeGroup = domain.ClassifyAge(rawAge)
		if tx.AgeGroup == domain.AgeGroupUnknown {
			stats.UnknownAges++
		}

		var ok bool
		if tx.Revenue, ok = ParseAmount(cell(ColRevenue)); !ok {
			stats.UnparsedAmounts++
		}
		if tx.Discount, ok = ParseAmount(cell(ColDiscount)); !ok {
			stats.UnparsedAmounts++
		}

		rows = append(rows, tx)
	}

	return rows, stats, nil
}

// ParseTimestamp interprets a timestamp cell. The second result is false
// when the cell is missing or unrecognized.
func ParseTimestamp(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case time.Time:
		return v, !v.IsZero()
	case civil.DateTime:
		if !v.IsValid() {
			return time.Time{}, false
		}
		return v.In(time.UTC), true
	case civil.Date:
		if !v.IsValid() {
			return time.Time{}, false
		}
		return v.In(time.UTC), true
	case []byte:
		return parseTimestampText(string(v))
	case string:
		return parseTimestampText(v)
	default:
		return time.Time{}, false
	}
}

func parseTimestampText(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCategorical returns nil for missing values and null markers.
func ParseCategorical(cell any) *string {
	if cell == nil {
		return nil
	}
	s := cellText(cell)
	if _, isNull := categoricalNulls[strings.TrimSpace(s)]; isNull {
		return nil
	}
	return &s
}

// ParseAmount interprets a currency cell. A missing cell yields a null amount
// with ok=true; an unparseable one yields a null amount with ok=false.
func ParseAmount(cell any) (decimal.NullDecimal, bool) {
	switch v := cell.(type) {
	case nil:
		return decimal.NullDecimal{}, true
	case decimal.Decimal:
		return decimal.NewNullDecimal(v), true
	case int:
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(v))), true
	case int32:
		return decimal.NewNullDecimal(decimal.NewFromInt32(v)), true
	case int64:
		return decimal.NewNullDecimal(decimal.NewFromInt(v)), true
	case float32:
		return amountFromFloat(float64(v))
	case float64:
		return amountFromFloat(v)
	case []byte:
		return amountFromText(string(v))
	case string:
		return amountFromText(v)
	default:
		return decimal.NullDecimal{}, false
	}
}

func amountFromFloat(f float64) (decimal.NullDecimal, bool) {
	if math.IsNaN(f) {
		return decimal.NullDecimal{}, true
	}
	if math.IsInf(f, 0) {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(f)), true
}

func amountFromText(s string) (decimal.NullDecimal, bool) {
	s = strings.TrimSpace(s)
	if _, isNull := categoricalNulls[s]; isNull {
		return decimal.NullDecimal{}, true
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(d), true
}

func cellText(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
