package pipeline

import (
	"testing"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

func TestBuildPivot_DenseZeroFilled(t *testing.T) {
	rows := []domain.Transaction{
		tx("100", category("Electronics"), at("2024-01-10 10:00")),
		tx("40", category("Groceries"), at("2024-02-10 10:00")),
		tx("60", category("Electronics"), at("2024-01-20 10:00")),
		tx("9", noCategory(), at("2024-01-20 10:00")),
		tx("11", category("Groceries"), noTimestamp()),
	}

	p := BuildPivot(rows)

	if want := []string{"Electronics", "Groceries"}; !equalStrings(p.Rows, want) {
		t.Errorf("rows = %v, want %v", p.Rows, want)
	}
	if want := []string{"2024-01", "2024-02"}; !equalStrings(p.Columns, want) {
		t.Errorf("columns = %v, want %v", p.Columns, want)
	}

	if len(p.Cells) != 2 || len(p.Cells[0]) != 2 || len(p.Cells[1]) != 2 {
		t.Fatalf("cells not dense: %v", p.Cells)
	}

	expect := map[[2]string]string{
		{"Electronics", "2024-01"}: "160",
		{"Electronics", "2024-02"}: "0",
		{"Groceries", "2024-01"}:   "0",
		{"Groceries", "2024-02"}:   "40",
	}
	for k, want := range expect {
		got, ok := p.Cell(k[0], k[1])
		if !ok {
			t.Errorf("Cell(%s, %s) missing", k[0], k[1])
			continue
		}
		if !got.Equal(dec(want)) {
			t.Errorf("Cell(%s, %s) = %s, want %s", k[0], k[1], got, want)
		}
	}

	if !p.Unattributed.Equal(dec("20")) {
		t.Errorf("unattributed = %s, want 20", p.Unattributed)
	}
	if _, ok := p.Cell("Toys", "2024-01"); ok {
		t.Error("Cell for an absent category should report false")
	}
}

func TestBuildPivot_Hints(t *testing.T) {
	p := BuildPivot(nil)
	if p.Chart != ChartHeatmap || p.Title == "" {
		t.Errorf("hints = %q %q", p.Chart, p.Title)
	}
	if p.Rows == nil || p.Columns == nil || p.Cells == nil {
		t.Error("empty pivot should have non-nil slices")
	}
}
