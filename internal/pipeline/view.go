package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownView is wrapped when a view kind, drill level or roll-up period
// is not recognized.
var ErrUnknownView = errors.New("unknown view")

// View selects one aggregation. The set of views is closed: LocationView,
// DrillView, RollupView and PivotView.
type View interface {
	// Kind is the view's name as used in URLs and CLI flags.
	Kind() string
	isView()
}

// View kinds.
const (
	KindLocation = "location"
	KindDrill    = "drill"
	KindRollup   = "rollup"
	KindPivot    = "pivot"
)

// DrillLevel is the time granularity of the drill-down view.
type DrillLevel string

const (
	DrillMonthly DrillLevel = "monthly"
	DrillDaily   DrillLevel = "daily"
	DrillHourly  DrillLevel = "hourly"
)

// RollupPeriod is the period of the roll-up view.
type RollupPeriod string

const (
	RollupMonthly   RollupPeriod = "monthly"
	RollupQuarterly RollupPeriod = "quarterly"
)

// LocationView totals revenue per county.
type LocationView struct{}

// DrillView totals revenue per month, day or hour of day.
type DrillView struct {
	Level DrillLevel
}

// RollupView totals revenue per month or quarter.
type RollupView struct {
	Period RollupPeriod
}

// PivotView cross-tabulates revenue by category and month.
type PivotView struct{}

func (LocationView) Kind() string { return KindLocation }
func (DrillView) Kind() string    { return KindDrill }
func (RollupView) Kind() string   { return KindRollup }
func (PivotView) Kind() string    { return KindPivot }

func (LocationView) isView() {}
func (DrillView) isView()    {}
func (RollupView) isView()   {}
func (PivotView) isView()    {}

// ParseDrillLevel accepts monthly, daily or hourly in any case. An empty
// string selects monthly.
func ParseDrillLevel(s string) (DrillLevel, error) {
	switch DrillLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", DrillMonthly:
		return DrillMonthly, nil
	case DrillDaily:
		return DrillDaily, nil
	case DrillHourly:
		return DrillHourly, nil
	default:
		return "", fmt.Errorf("%w: drill level %q", ErrUnknownView, s)
	}
}

// ParseRollupPeriod accepts monthly or quarterly in any case. An empty
// string selects monthly.
func ParseRollupPeriod(s string) (RollupPeriod, error) {
	switch RollupPeriod(strings.ToLower(strings.TrimSpace(s))) {
	case "", RollupMonthly:
		return RollupMonthly, nil
	case RollupQuarterly:
		return RollupQuarterly, nil
	default:
		return "", fmt.Errorf("%w: roll-up period %q", ErrUnknownView, s)
	}
}

// ParseView builds a view from its kind and, for drill and roll-up views,
// the level or period.
func ParseView(kind, granularity string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindLocation:
		return LocationView{}, nil
	case KindDrill:
		level, err := ParseDrillLevel(granularity)
		if err != nil {
			return nil, err
		}
		return DrillView{Level: level}, nil
	case KindRollup:
		period, err := ParseRollupPeriod(granularity)
		if err != nil {
			return nil, err
		}
		return RollupView{Period: period}, nil
	case KindPivot:
		return PivotView{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, kind)
	}
}
