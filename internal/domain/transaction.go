package domain

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one enriched sale event. Optional categorical fields are nil
// when the source row had no value. Calendar is nil when the timestamp could
// not be parsed; the row itself is still part of the row-set.
type Transaction struct {
	Timestamp *time.Time `json:"timestamp"`

	County        *string `json:"county"`
	StoreName     *string `json:"store_name"`
	Category      *string `json:"category"`
	Product       *string `json:"product"`
	PaymentMethod *string `json:"payment_method"`
	Gender        *string `json:"gender"`

	Age      string   `json:"age"` // raw source value, kept for display
	AgeGroup AgeGroup `json:"age_group"`

	Revenue  decimal.NullDecimal `json:"revenue"`
	Discount decimal.NullDecimal `json:"discount"`

	Calendar *Calendar `json:"calendar,omitempty"`
}

// Calendar holds the buckets derived from a parsed timestamp.
type Calendar struct {
	Month   string     `json:"month"`   // 2024-01
	Day     civil.Date `json:"day"`     // 2024-01-15
	Hour    int        `json:"hour"`    // 0-23
	Quarter string     `json:"quarter"` // 2024Q1
}

// DeriveCalendar computes the calendar buckets of t in t's own location.
func DeriveCalendar(t time.Time) Calendar {
	return Calendar{
		Month:   t.Format("2006-01"),
		Day:     civil.DateOf(t),
		Hour:    t.Hour(),
		Quarter: fmt.Sprintf("%dQ%d", t.Year(), (int(t.Month())-1)/3+1),
	}
}

// Month returns the month bucket, or false when the timestamp is null.
func (t *Transaction) Month() (string, bool) {
	if t.Calendar == nil {
		return "", false
	}
	return t.Calendar.Month, true
}

// Day returns the calendar date bucket, or false when the timestamp is null.
func (t *Transaction) Day() (civil.Date, bool) {
	if t.Calendar == nil {
		return civil.Date{}, false
	}
	return t.Calendar.Day, true
}

// Hour returns the hour-of-day bucket, or false when the timestamp is null.
func (t *Transaction) Hour() (int, bool) {
	if t.Calendar == nil {
		return 0, false
	}
	return t.Calendar.Hour, true
}

// Quarter returns the quarter bucket, or false when the timestamp is null.
func (t *Transaction) Quarter() (string, bool) {
	if t.Calendar == nil {
		return "", false
	}
	return t.Calendar.Quarter, true
}

// RevenueOrZero treats a null revenue as zero for summation.
func (t *Transaction) RevenueOrZero() decimal.Decimal {
	if !t.Revenue.Valid {
		return decimal.Zero
	}
	return t.Revenue.Decimal
}

// DiscountOrZero treats a null discount as zero for summation.
func (t *Transaction) DiscountOrZero() decimal.Decimal {
	if !t.Discount.Valid {
		return decimal.Zero
	}
	return t.Discount.Decimal
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
