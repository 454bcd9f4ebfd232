package pipeline

import (
	"sort"

	"github.com/dvloznov/techmart-analytics/internal/domain"
)

// Domains lists the values offered by each filter control.
type Domains struct {
	Counties       []string          `json:"counties"`
	StoreNames     []string          `json:"store_names"`
	Categories     []string          `json:"categories"`
	Products       []string          `json:"products"`
	PaymentMethods []string          `json:"payment_methods"`
	Genders        []string          `json:"genders"`
	AgeGroups      []domain.AgeGroup `json:"age_groups"`
}

// FilterDomains collects the sorted distinct non-null values of each
// filterable field. When counties is non-empty, store names are limited to
// stores seen in those counties; every other domain ignores the selection.
func FilterDomains(rows []domain.Transaction, counties []string) Domains {
	selected := toSet(counties)

	var (
		countySet   = map[string]struct{}{}
		storeSet    = map[string]struct{}{}
		categorySet = map[string]struct{}{}
		productSet  = map[string]struct{}{}
		paymentSet  = map[string]struct{}{}
		genderSet   = map[string]struct{}{}
	)

	add := func(set map[string]struct{}, v *string) {
		if v != nil {
			set[*v] = struct{}{}
		}
	}

	for i := range rows {
		tx := &rows[i]
		add(countySet, tx.County)
		add(categorySet, tx.Category)
		add(productSet, tx.Product)
		add(paymentSet, tx.PaymentMethod)
		add(genderSet, tx.Gender)
		if matchField(selected, tx.County) {
			add(storeSet, tx.StoreName)
		}
	}

	ageGroups := make([]domain.AgeGroup, len(domain.SelectableAgeGroups))
	copy(ageGroups, domain.SelectableAgeGroups)

	return Domains{
		Counties:       sortedKeys(countySet),
		StoreNames:     sortedKeys(storeSet),
		Categories:     sortedKeys(categorySet),
		Products:       sortedKeys(productSet),
		PaymentMethods: sortedKeys(paymentSet),
		Genders:        sortedKeys(genderSet),
		AgeGroups:      ageGroups,
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
