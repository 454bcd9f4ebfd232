// Package pipeline filters enriched transactions and aggregates them into
// the series and tables the dashboard renders.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// ErrInvalidFilter is wrapped by every filter validation failure.
var ErrInvalidFilter = errors.New("invalid filter")

// DateLayout is the accepted spelling of a date filter endpoint.
const DateLayout = "2006-01-02"

// DateRange selects rows by calendar day. Zero endpoints means no
// restriction; one endpoint selects that single day; two select an
// inclusive range.
type DateRange struct {
	dates []civil.Date
}

// NewDateRange builds a range from zero, one or two dates. A reversed pair is
// rejected.
func NewDateRange(dates ...civil.Date) (DateRange, error) {
	switch len(dates) {
	case 0:
		return DateRange{}, nil
	case 1:
		if !dates[0].IsValid() {
			return DateRange{}, fmt.Errorf("%w: invalid date %s", ErrInvalidFilter, dates[0])
		}
		return DateRange{dates: []civil.Date{dates[0]}}, nil
	case 2:
		if !dates[0].IsValid() || !dates[1].IsValid() {
			return DateRange{}, fmt.Errorf("%w: invalid date range %s..%s", ErrInvalidFilter, dates[0], dates[1])
		}
		if dates[1].Before(dates[0]) {
			return DateRange{}, fmt.Errorf("%w: date range end %s is before start %s", ErrInvalidFilter, dates[1], dates[0])
		}
		return DateRange{dates: []civil.Date{dates[0], dates[1]}}, nil
	default:
		return DateRange{}, fmt.Errorf("%w: date filter takes at most two dates, got %d", ErrInvalidFilter, len(dates))
	}
}

// ParseDateRange parses zero, one or two YYYY-MM-DD strings.
func ParseDateRange(values ...string) (DateRange, error) {
	dates := make([]civil.Date, 0, len(values))
	for _, v := range values {
		t, err := time.Parse(DateLayout, v)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: date %q: want YYYY-MM-DD", ErrInvalidFilter, v)
		}
		dates = append(dates, civil.DateOf(t))
	}
	return NewDateRange(dates...)
}

// Active reports whether the range restricts anything.
func (r DateRange) Active() bool { return len(r.dates) > 0 }

// Bounds returns the inclusive start and end days. For a single date both
// are that date.
func (r DateRange) Bounds() (start, end civil.Date, ok bool) {
	switch len(r.dates) {
	case 1:
		return r.dates[0], r.dates[0], true
	case 2:
		return r.dates[0], r.dates[1], true
	default:
		return civil.Date{}, civil.Date{}, false
	}
}

// Contains reports whether day falls within the range.
func (r DateRange) Contains(day civil.Date) bool {
	start, end, ok := r.Bounds()
	if !ok {
		return true
	}
	return !day.Before(start) && !day.After(end)
}

// Filters is a conjunction of optional criteria. An empty slice leaves that
// field unrestricted. Matching is exact and case-sensitive, and a row whose
// field is null never matches an active criterion on that field.
type Filters struct {
	Counties       []string
	StoreNames     []string
	Categories     []string
	Products       []string
	PaymentMethods []string
	Genders        []string
	AgeGroups      []domain.AgeGroup
	Dates          DateRange
}

// Validate rejects age groups that cannot be selected.
func (f Filters) Validate() error {
	for _, g := range f.AgeGroups {
		if _, ok := domain.ParseAgeGroup(string(g)); !ok {
			return fmt.Errorf("%w: age group %q is not selectable", ErrInvalidFilter, g)
		}
	}
	return nil
}

// Active reports whether any criterion is set.
func (f Filters) Active() bool {
	return len(f.Counties) > 0 || len(f.StoreNames) > 0 || len(f.Categories) > 0 ||
		len(f.Products) > 0 || len(f.PaymentMethods) > 0 || len(f.Genders) > 0 ||
		len(f.AgeGroups) > 0 || f.Dates.Active()
}

// compiled holds set lookups for one Apply call.
type compiled struct {
	counties, stores, categories, products, payments, genders map[string]struct{}
	ageGroups                                                  map[domain.AgeGroup]struct{}
	dates                                                      DateRange
}

func toSet[T comparable](values []T) map[T]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func (f Filters) compile() compiled {
	return compiled{
		counties:   toSet(f.Counties),
		stores:     toSet(f.StoreNames),
		categories: toSet(f.Categories),
		products:   toSet(f.Products),
		payments:   toSet(f.PaymentMethods),
		genders:    toSet(f.Genders),
		ageGroups:  toSet(f.AgeGroups),
		dates:      f.Dates,
	}
}

func matchField(set map[string]struct{}, v *string) bool {
	if set == nil {
		return true
	}
	if v == nil {
		return false
	}
	_, ok := set[*v]
	return ok
}

func (c compiled) match(tx *domain.Transaction) bool {
	if !matchField(c.counties, tx.County) ||
		!matchField(c.stores, tx.StoreName) ||
		!matchField(c.categories, tx.Category) ||
		!matchField(c.products, tx.Product) ||
		!matchField(c.payments, tx.PaymentMethod) ||
		!matchField(c.genders, tx.Gender) {
		return false
	}
	if c.ageGroups != nil {
		if _, ok := c.ageGroups[tx.AgeGroup]; !ok {
			return false
		}
	}
	if c.dates.Active() {
		day, ok := tx.Day()
		if !ok || !c.dates.Contains(day) {
			return false
		}
	}
	return true
}

// Apply returns the rows matching every active criterion, in input order.
// The input is not modified and the result never aliases it.
func Apply(rows []domain.Transaction, f Filters) []domain.Transaction {
	c := f.compile()
	out := make([]domain.Transaction, 0, len(rows))
	for i := range rows {
		if c.match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}
