package handlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dvloznov/techmart-analytics/internal/domain"
	"github.com/dvloznov/techmart-analytics/internal/pipeline"
)

// Query parameter names accepted by the analytics endpoints.
const (
	ParamCounty        = "county"
	ParamStoreName     = "store_name"
	ParamCategory      = "category"
	ParamProduct       = "product"
	ParamPaymentMethod = "payment_method"
	ParamGender        = "gender"
	ParamAgeGroup      = "age_group"
	ParamDate          = "date"
	ParamDrill         = "drill"
	ParamRollup        = "rollup"
	ParamLevel         = "level"
	ParamPeriod        = "period"
)

// values returns every non-empty value of key. Values are also split on
// commas so that ?county=A,B and ?county=A&county=B are equivalent.
func values(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// ParseFilters builds filters from query parameters.
func ParseFilters(q url.Values) (pipeline.Filters, error) {
	f := pipeline.Filters{
		Counties:       values(q, ParamCounty),
		StoreNames:     values(q, ParamStoreName),
		Categories:     values(q, ParamCategory),
		Products:       values(q, ParamProduct),
		PaymentMethods: values(q, ParamPaymentMethod),
		Genders:        values(q, ParamGender),
	}

	for _, label := range values(q, ParamAgeGroup) {
		g, ok := domain.ParseAgeGroup(label)
		if !ok {
			return pipeline.Filters{}, fmt.Errorf("%w: age group %q (want one of Minor, Youth, Adult)", pipeline.ErrInvalidFilter, label)
		}
		f.AgeGroups = append(f.AgeGroups, g)
	}

	dates, err := pipeline.ParseDateRange(values(q, ParamDate)...)
	if err != nil {
		return pipeline.Filters{}, err
	}
	f.Dates = dates

	return f, f.Validate()
}
