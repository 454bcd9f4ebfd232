package pipeline

import (
	"testing"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

func TestComputeKPIs(t *testing.T) {
	rows := []domain.Transaction{
		tx("100", discount("10")),
		tx("50", discount("2.5")),
		tx("0", noRevenue()),
		tx("30"),
	}

	k := ComputeKPIs(rows)

	if k.Transactions != 4 {
		t.Errorf("Transactions = %d, want 4", k.Transactions)
	}
	if !k.TotalRevenue.Equal(dec("180")) {
		t.Errorf("TotalRevenue = %s, want 180", k.TotalRevenue)
	}
	if !k.TotalDiscount.Equal(dec("12.5")) {
		t.Errorf("TotalDiscount = %s, want 12.5", k.TotalDiscount)
	}
	// Null revenue is excluded from the denominator.
	if !k.AverageSale.Valid || !k.AverageSale.Decimal.Equal(dec("60")) {
		t.Errorf("AverageSale = %v, want 60", k.AverageSale)
	}
}

func TestComputeKPIs_Empty(t *testing.T) {
	k := ComputeKPIs(nil)
	if k.Transactions != 0 || !k.TotalRevenue.IsZero() || !k.TotalDiscount.IsZero() {
		t.Errorf("kpis = %+v", k)
	}
	if k.AverageSale.Valid {
		t.Error("AverageSale should be null for an empty set")
	}
}

func TestComputeKPIs_AllRevenueNull(t *testing.T) {
	k := ComputeKPIs([]domain.Transaction{tx("0", noRevenue()), tx("0", noRevenue())})
	if k.Transactions != 2 || k.AverageSale.Valid {
		t.Errorf("kpis = %+v", k)
	}
}

func TestComputeKPIs_RepeatingAverage(t *testing.T) {
	k := ComputeKPIs([]domain.Transaction{tx("10"), tx("10"), tx("20")})
	if !k.AverageSale.Decimal.Equal(dec("13.3333")) {
		t.Errorf("AverageSale = %s, want 13.3333", k.AverageSale.Decimal)
	}
}
