package domain

import (
	"math"
	"strconv"
	"strings"
)

// AgeGroup is the four-way classification of a customer's age.
type AgeGroup string

const (
	AgeGroupMinor   AgeGroup = "Minor"
	AgeGroupYouth   AgeGroup = "Youth"
	AgeGroupAdult   AgeGroup = "Adult"
	AgeGroupUnknown AgeGroup = "Unknown"
)

// SelectableAgeGroups are the groups a user may filter on. Unknown is not
// offered, but Unknown rows still pass when no age group filter is active.
var SelectableAgeGroups = []AgeGroup{AgeGroupMinor, AgeGroupYouth, AgeGroupAdult}

// ParseAgeGroup maps a label to a selectable AgeGroup.
func ParseAgeGroup(label string) (AgeGroup, bool) {
	for _, g := range SelectableAgeGroups {
		if string(g) == label {
			return g, true
		}
	}
	return "", false
}

// ParseAge converts a raw age cell to an integer. The second result is false
// when the value is not recognized as an age: nil, non-numeric text, text
// with a fractional part, NaN or infinite floats.
func ParseAge(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float32:
		return truncateAge(float64(v))
	case float64:
		return truncateAge(v)
	case []byte:
		return parseAgeString(string(v))
	case string:
		return parseAgeString(v)
	default:
		return 0, false
	}
}

func truncateAge(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func parseAgeString(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// ClassifyAge is a total function from a raw age cell to an AgeGroup.
func ClassifyAge(raw any) AgeGroup {
	age, ok := ParseAge(raw)
	if !ok {
		return AgeGroupUnknown
	}
	switch {
	case age < 18:
		return AgeGroupMinor
	case age < 35:
		return AgeGroupYouth
	default:
		return AgeGroupAdult
	}
}
