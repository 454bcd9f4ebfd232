package domain

import (
	"math"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestClassifyAge(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want AgeGroup
	}{
		{"seventeen is minor", 17, AgeGroupMinor},
		{"zero is minor", "0", AgeGroupMinor},
		{"negative is minor", int64(-4), AgeGroupMinor},
		{"eighteen is youth", "18", AgeGroupYouth},
		{"thirty four is youth", 34, AgeGroupYouth},
		{"thirty five is adult", 35, AgeGroupAdult},
		{"ninety is adult", float64(90), AgeGroupAdult},
		{"padded string", "  42 ", AgeGroupAdult},
		{"float is truncated", 34.9, AgeGroupYouth},
		{"text is unknown", "abc", AgeGroupUnknown},
		{"fractional text is unknown", "34.5", AgeGroupUnknown},
		{"empty is unknown", "", AgeGroupUnknown},
		{"nil is unknown", nil, AgeGroupUnknown},
		{"nan is unknown", math.NaN(), AgeGroupUnknown},
		{"bytes", []byte("20"), AgeGroupYouth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyAge(tt.raw); got != tt.want {
				t.Errorf("ClassifyAge(%v) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassifyAge_Deterministic(t *testing.T) {
	for _, raw := range []any{"17", 34, "abc", nil, 35.0} {
		first := ClassifyAge(raw)
		for i := 0; i < 5; i++ {
			if got := ClassifyAge(raw); got != first {
				t.Fatalf("ClassifyAge(%v) changed from %q to %q", raw, first, got)
			}
		}
	}
}

func TestParseAgeGroup(t *testing.T) {
	for _, label := range []string{"Minor", "Youth", "Adult"} {
		if _, ok := ParseAgeGroup(label); !ok {
			t.Errorf("ParseAgeGroup(%q) not recognized", label)
		}
	}
	for _, label := range []string{"Unknown", "adult", ""} {
		if _, ok := ParseAgeGroup(label); ok {
			t.Errorf("ParseAgeGroup(%q) should not be selectable", label)
		}
	}
}

func TestDeriveCalendar(t *testing.T) {
	ts := time.Date(2024, time.August, 3, 21, 15, 0, 0, time.UTC)
	cal := DeriveCalendar(ts)

	if cal.Month != "2024-08" {
		t.Errorf("Month = %q, want 2024-08", cal.Month)
	}
	if cal.Day != (civil.Date{Year: 2024, Month: time.August, Day: 3}) {
		t.Errorf("Day = %v, want 2024-08-03", cal.Day)
	}
	if cal.Hour != 21 {
		t.Errorf("Hour = %d, want 21", cal.Hour)
	}
	if cal.Quarter != "2024Q3" {
		t.Errorf("Quarter = %q, want 2024Q3", cal.Quarter)
	}
}

func TestDeriveCalendar_Quarters(t *testing.T) {
	want := map[time.Month]string{
		time.January: "2023Q1", time.March: "2023Q1",
		time.April: "2023Q2", time.June: "2023Q2",
		time.July: "2023Q3", time.September: "2023Q3",
		time.October: "2023Q4", time.December: "2023Q4",
	}
	for m, q := range want {
		got := DeriveCalendar(time.Date(2023, m, 1, 0, 0, 0, 0, time.UTC)).Quarter
		if got != q {
			t.Errorf("month %s: quarter = %q, want %q", m, got, q)
		}
	}
}

func TestTransaction_NullCalendar(t *testing.T) {
	tx := &Transaction{}
	if _, ok := tx.Month(); ok {
		t.Error("Month should be absent without a timestamp")
	}
	if _, ok := tx.Day(); ok {
		t.Error("Day should be absent without a timestamp")
	}
	if _, ok := tx.Hour(); ok {
		t.Error("Hour should be absent without a timestamp")
	}
	if _, ok := tx.Quarter(); ok {
		t.Error("Quarter should be absent without a timestamp")
	}
	if !tx.RevenueOrZero().IsZero() || !tx.DiscountOrZero().IsZero() {
		t.Error("null amounts should sum as zero")
	}
}
