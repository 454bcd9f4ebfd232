package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// Pivot is a dense category by month revenue table. Rows and Columns are
// sorted ascending and every cell is present; combinations with no sales
// hold zero.
type Pivot struct {
	Title        string              `json:"title"`
	Chart        ChartKind           `json:"chart"`
	Rows         []string            `json:"rows"`
	Columns      []string            `json:"columns"`
	Cells        [][]decimal.Decimal `json:"cells"`
	Unattributed decimal.Decimal     `json:"unattributed"`
}

// Cell returns the revenue at category, month and whether both exist.
func (p *Pivot) Cell(category, month string) (decimal.Decimal, bool) {
	r := sort.SearchStrings(p.Rows, category)
	c := sort.SearchStrings(p.Columns, month)
	if r == len(p.Rows) || p.Rows[r] != category || c == len(p.Columns) || p.Columns[c] != month {
		return decimal.Zero, false
	}
	return p.Cells[r][c], true
}

// RowTotals returns the revenue of each category across all months.
func (p *Pivot) RowTotals() []decimal.Decimal {
	totals := make([]decimal.Decimal, len(p.Rows))
	for r, row := range p.Cells {
		for _, v := range row {
			totals[r] = totals[r].Add(v)
		}
	}
	return totals
}

// BuildPivot cross-tabulates revenue by category and month. Rows missing
// either key are counted in Unattributed.
func BuildPivot(rows []domain.Transaction) *Pivot {
	p := &Pivot{
		Title:   "Revenue Heatmap: Category vs Month",
		Chart:   ChartHeatmap,
		Rows:    []string{},
		Columns: []string{},
		Cells:   [][]decimal.Decimal{},
	}

	type cellKey struct{ category, month string }
	sums := make(map[cellKey]decimal.Decimal)
	categories := make(map[string]struct{})
	months := make(map[string]struct{})

	for i := range rows {
		tx := &rows[i]
		month, ok := tx.Month()
		if tx.Category == nil || !ok {
			p.Unattributed = p.Unattributed.Add(tx.RevenueOrZero())
			continue
		}
		k := cellKey{*tx.Category, month}
		sums[k] = sums[k].Add(tx.RevenueOrZero())
		categories[k.category] = struct{}{}
		months[k.month] = struct{}{}
	}

	for c := range categories {
		p.Rows = append(p.Rows, c)
	}
	for m := range months {
		p.Columns = append(p.Columns, m)
	}
	sort.Strings(p.Rows)
	sort.Strings(p.Columns)

	p.Cells = make([][]decimal.Decimal, len(p.Rows))
	for r, category := range p.Rows {
		p.Cells[r] = make([]decimal.Decimal, len(p.Columns))
		for c, month := range p.Columns {
			p.Cells[r][c] = sums[cellKey{category, month}]
		}
	}

	return p
}
