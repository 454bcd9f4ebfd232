package pipeline

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// ChartKind hints how a series is best drawn.
type ChartKind string

const (
	ChartBar     ChartKind = "bar"
	ChartLine    ChartKind = "line"
	ChartHeatmap ChartKind = "heatmap"
)

// Point is one group of a series.
type Point struct {
	Key     string          `json:"key"`
	Revenue decimal.Decimal `json:"revenue"`
	Count   int             `json:"count"`
}

// Series is an ordered list of groups keyed by one dimension.
//
// Rows whose key is null form no group. Their revenue is reported in
// Unattributed, so the points plus Unattributed always sum to the revenue of
// the input rows.
type Series struct {
	Dimension         string          `json:"dimension"`
	Title             string          `json:"title"`
	Chart             ChartKind       `json:"chart"`
	Points            []Point         `json:"points"`
	Unattributed      decimal.Decimal `json:"unattributed"`
	UnattributedCount int             `json:"unattributed_count"`
}

// Total returns the revenue of all points plus Unattributed.
func (s *Series) Total() decimal.Decimal {
	total := s.Unattributed
	for _, p := range s.Points {
		total = total.Add(p.Revenue)
	}
	return total
}

// Result is the output of Aggregate. Exactly one of Series or Pivot is set.
type Result struct {
	View   string  `json:"view"`
	Series *Series `json:"series,omitempty"`
	Pivot  *Pivot  `json:"pivot,omitempty"`
}

// Aggregate computes view over rows.
func Aggregate(rows []domain.Transaction, view View) (Result, error) {
	switch v := view.(type) {
	case LocationView:
		s := groupBy(rows, func(tx *domain.Transaction) (string, bool) {
			if tx.County == nil {
				return "", false
			}
			return *tx.County, true
		})
		sortByRevenueDesc(s.Points)
		s.Dimension, s.Title, s.Chart = "county", "Revenue by County", ChartBar
		return Result{View: KindLocation, Series: s}, nil

	case DrillView:
		var s *Series
		switch v.Level {
		case DrillMonthly:
			s = groupBy(rows, (*domain.Transaction).Month)
			s.Dimension, s.Title, s.Chart = "month", "Monthly Sales Trend", ChartLine
		case DrillDaily:
			s = groupBy(rows, dayKey)
			s.Dimension, s.Title, s.Chart = "day", "Daily Sales Trend", ChartLine
		case DrillHourly:
			s = groupBy(rows, hourKey)
			s.Dimension, s.Title, s.Chart = "hour", "Hourly Sales Trend", ChartBar
		default:
			return Result{}, fmt.Errorf("Aggregate: %w: drill level %q", ErrUnknownView, v.Level)
		}
		sortByKey(s.Points)
		return Result{View: KindDrill, Series: s}, nil

	case RollupView:
		var s *Series
		switch v.Period {
		case RollupMonthly:
			s = groupBy(rows, (*domain.Transaction).Month)
			s.Dimension, s.Title = "month", "Monthly Total Sales"
		case RollupQuarterly:
			s = groupBy(rows, (*domain.Transaction).Quarter)
			s.Dimension, s.Title = "quarter", "Quarterly Total Sales"
		default:
			return Result{}, fmt.Errorf("Aggregate: %w: roll-up period %q", ErrUnknownView, v.Period)
		}
		s.Chart = ChartBar
		sortByKey(s.Points)
		return Result{View: KindRollup, Series: s}, nil

	case PivotView:
		return Result{View: KindPivot, Pivot: BuildPivot(rows)}, nil

	case nil:
		return Result{}, fmt.Errorf("Aggregate: %w: nil view", ErrUnknownView)

	default:
		return Result{}, fmt.Errorf("Aggregate: %w: %T", ErrUnknownView, view)
	}
}

// Run validates filters, applies them and aggregates the view.
func Run(rows []domain.Transaction, f Filters, view View) (Result, error) {
	if err := f.Validate(); err != nil {
		return Result{}, err
	}
	return Aggregate(Apply(rows, f), view)
}

func dayKey(tx *domain.Transaction) (string, bool) {
	d, ok := tx.Day()
	if !ok {
		return "", false
	}
	return d.String(), true
}

// hourKey zero-pads so that keys order the same as hours.
func hourKey(tx *domain.Transaction) (string, bool) {
	h, ok := tx.Hour()
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%02d", h), true
}

func groupBy(rows []domain.Transaction, key func(*domain.Transaction) (string, bool)) *Series {
	s := &Series{Points: []Point{}}
	index := make(map[string]int)

	for i := range rows {
		tx := &rows[i]
		k, ok := key(tx)
		if !ok {
			s.Unattributed = s.Unattributed.Add(tx.RevenueOrZero())
			s.UnattributedCount++
			continue
		}
		pos, seen := index[k]
		if !seen {
			pos = len(s.Points)
			index[k] = pos
			s.Points = append(s.Points, Point{Key: k})
		}
		s.Points[pos].Revenue = s.Points[pos].Revenue.Add(tx.RevenueOrZero())
		s.Points[pos].Count++
	}
	return s
}

func sortByKey(points []Point) {
	sort.Slice(points, func(i, j int) bool { return points[i].Key < points[j].Key })
}

func sortByRevenueDesc(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if c := points[i].Revenue.Cmp(points[j].Revenue); c != 0 {
			return c > 0
		}
		return points[i].Key < points[j].Key
	})
}
