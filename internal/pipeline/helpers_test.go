package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// txOpt customizes a test transaction.
type txOpt func(*domain.Transaction)

func at(ts string) txOpt {
	return func(tx *domain.Transaction) {
		t, err := time.Parse("2006-01-02 15:04", ts)
		if err != nil {
			panic(err)
		}
		tx.Timestamp = &t
		cal := domain.DeriveCalendar(t)
		tx.Calendar = &cal
	}
}

func county(c string) txOpt   { return func(tx *domain.Transaction) { tx.County = domain.StringPtr(c) } }
func store(s string) txOpt    { return func(tx *domain.Transaction) { tx.StoreName = domain.StringPtr(s) } }
func category(c string) txOpt { return func(tx *domain.Transaction) { tx.Category = domain.StringPtr(c) } }
func gender(g string) txOpt   { return func(tx *domain.Transaction) { tx.Gender = domain.StringPtr(g) } }
func ageGroup(g domain.AgeGroup) txOpt {
	return func(tx *domain.Transaction) { tx.AgeGroup = g }
}
func discount(d string) txOpt {
	return func(tx *domain.Transaction) { tx.Discount = decimal.NewNullDecimal(decimal.RequireFromString(d)) }
}
func noCounty() txOpt   { return func(tx *domain.Transaction) { tx.County = nil } }
func noRevenue() txOpt  { return func(tx *domain.Transaction) { tx.Revenue = decimal.NullDecimal{} } }
func noCategory() txOpt { return func(tx *domain.Transaction) { tx.Category = nil } }
func noTimestamp() txOpt {
	return func(tx *domain.Transaction) { tx.Timestamp, tx.Calendar = nil, nil }
}

// tx builds a transaction with revenue and sensible defaults.
func tx(revenue string, opts ...txOpt) domain.Transaction {
	t := domain.Transaction{
		County:        domain.StringPtr("Nairobi"),
		StoreName:     domain.StringPtr("Westgate"),
		Category:      domain.StringPtr("Electronics"),
		Product:       domain.StringPtr("Phone"),
		PaymentMethod: domain.StringPtr("M-Pesa"),
		Gender:        domain.StringPtr("Female"),
		Age:           "30",
		AgeGroup:      domain.AgeGroupYouth,
		Revenue:       decimal.NewNullDecimal(decimal.RequireFromString(revenue)),
	}
	at("2024-01-15 10:00")(&t)
	for _, o := range opts {
		o(&t)
	}
	return t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func totalRevenue(rows []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for i := range rows {
		total = total.Add(rows[i].RevenueOrZero())
	}
	return total
}

// scenarioRows is a small multi-county, multi-month dataset.
func scenarioRows() []domain.Transaction {
	return []domain.Transaction{
		tx("100", county("Nairobi"), store("Westgate"), at("2024-01-10 09:00")),
		tx("50", county("Nairobi"), store("Sarit"), at("2024-02-03 14:30"), category("Groceries")),
		tx("200", county("Mombasa"), store("Nyali"), at("2024-01-21 18:45")),
	}
}
