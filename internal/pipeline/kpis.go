package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// KPIs are the headline metrics of a filtered row-set.
type KPIs struct {
	Transactions  int                 `json:"transactions"`
	TotalRevenue  decimal.Decimal     `json:"total_revenue"`
	TotalDiscount decimal.Decimal     `json:"total_discount"`
	AverageSale   decimal.NullDecimal `json:"average_sale"`
}

// averagePrecision is the number of decimal places kept by AverageSale.
const averagePrecision = 4

// ComputeKPIs summarizes rows. Null amounts add nothing to the totals and
// are left out of the average; AverageSale is null when no row has a
// revenue.
func ComputeKPIs(rows []domain.Transaction) KPIs {
	k := KPIs{Transactions: len(rows)}

	withRevenue := 0
	for i := range rows {
		tx := &rows[i]
		if tx.Revenue.Valid {
			k.TotalRevenue = k.TotalRevenue.Add(tx.Revenue.Decimal)
			withRevenue++
		}
		k.TotalDiscount = k.TotalDiscount.Add(tx.DiscountOrZero())
	}

	if withRevenue > 0 {
		avg := k.TotalRevenue.DivRound(decimal.NewFromInt(int64(withRevenue)), averagePrecision)
		k.AverageSale = decimal.NewNullDecimal(avg)
	}
	return k
}
