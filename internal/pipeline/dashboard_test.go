package pipeline

import (
	"errors"
	"testing"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

func TestBuildDashboard(t *testing.T) {
	d, err := BuildDashboard(scenarioRows(), Filters{Counties: []string{"Nairobi"}}, DrillDaily, RollupMonthly)
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}

	if d.KPIs.Transactions != 2 || !d.KPIs.TotalRevenue.Equal(dec("150")) {
		t.Errorf("KPIs = %+v", d.KPIs)
	}
	if want := []string{"Nairobi"}; !equalStrings(keys(d.Location), want) {
		t.Errorf("location keys = %v, want %v", keys(d.Location), want)
	}
	if want := []string{"2024-01-10", "2024-02-03"}; !equalStrings(keys(d.Drill), want) {
		t.Errorf("drill keys = %v, want %v", keys(d.Drill), want)
	}
	if want := []string{"2024-01", "2024-02"}; !equalStrings(keys(d.Rollup), want) {
		t.Errorf("rollup keys = %v, want %v", keys(d.Rollup), want)
	}
	if want := []string{"Electronics", "Groceries"}; !equalStrings(d.Pivot.Rows, want) {
		t.Errorf("pivot rows = %v, want %v", d.Pivot.Rows, want)
	}
}

func TestBuildDashboard_EmptySelection(t *testing.T) {
	d, err := BuildDashboard(scenarioRows(), Filters{Counties: []string{"Kisumu"}}, DrillMonthly, RollupQuarterly)
	if err != nil {
		t.Fatalf("BuildDashboard() error = %v", err)
	}
	if d.KPIs.Transactions != 0 || d.KPIs.AverageSale.Valid {
		t.Errorf("KPIs = %+v", d.KPIs)
	}
	if len(d.Location.Points) != 0 || len(d.Drill.Points) != 0 || len(d.Rollup.Points) != 0 {
		t.Error("series should be empty")
	}
	if len(d.Pivot.Rows) != 0 {
		t.Error("pivot should be empty")
	}
}

func TestBuildDashboard_InvalidFilter(t *testing.T) {
	_, err := BuildDashboard(scenarioRows(), Filters{AgeGroups: []domain.AgeGroup{domain.AgeGroupUnknown}}, DrillMonthly, RollupMonthly)
	if !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("error = %v, want ErrInvalidFilter", err)
	}
}
