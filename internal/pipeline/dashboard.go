package pipeline

import (
	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// Dashboard is every presentation output over one filtered row-set.
type Dashboard struct {
	KPIs     KPIs    `json:"kpis"`
	Location *Series `json:"location"`
	Drill    *Series `json:"drill"`
	Rollup   *Series `json:"rollup"`
	Pivot    *Pivot  `json:"pivot"`
}

// BuildDashboard validates and applies f once, then computes the KPIs, the
// location series, the drill-down at level, the roll-up at period and the
// pivot.
func BuildDashboard(rows []domain.Transaction, f Filters, level DrillLevel, period RollupPeriod) (Dashboard, error) {
	if err := f.Validate(); err != nil {
		return Dashboard{}, err
	}
	filtered := Apply(rows, f)

	location, err := Aggregate(filtered, LocationView{})
	if err != nil {
		return Dashboard{}, err
	}
	drill, err := Aggregate(filtered, DrillView{Level: level})
	if err != nil {
		return Dashboard{}, err
	}
	rollup, err := Aggregate(filtered, RollupView{Period: period})
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		KPIs:     ComputeKPIs(filtered),
		Location: location.Series,
		Drill:    drill.Series,
		Rollup:   rollup.Series,
		Pivot:    BuildPivot(filtered),
	}, nil
}
