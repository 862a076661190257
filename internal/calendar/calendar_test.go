package calendar

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestCountReadingDaysBetween(t *testing.T) {
	tests := []struct {
		name        string
		start, end  string
		allowedDays []int
		want        int
	}{
		// 2024-01-01 is a Monday.
		{"MonWedFri", "2024-01-01", "2024-01-07", []int{1, 3, 5}, 3},
		{"EveryDay", "2024-01-01", "2024-01-31", nil, 31},
		{"SingleDayMatching", "2024-01-01", "2024-01-01", []int{1}, 1},
		{"SingleDayNotMatching", "2024-01-02", "2024-01-02", []int{1}, 0},
		{"Reversed", "2024-01-10", "2024-01-01", nil, 0},
		{"InvalidStart", "2024-13-01", "2024-01-01", nil, 0},
		{"LeapYear", "2024-02-01", "2024-03-01", nil, 30},
		{"SundaysOf2024", "2024-01-01", "2024-12-31", []int{0}, 52},
		{"PartialWeekTail", "2024-01-01", "2024-01-10", []int{2, 3}, 4},
		{"NoValidWeekday", "2024-01-01", "2024-01-31", []int{9}, 0},
		{"Centuries", "1700-01-01", "2024-01-01", nil, 118339},
		{"CenturiesMonWedFri", "1700-01-01", "2024-01-01", []int{1, 3, 5}, 50717},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CountReadingDaysBetween(tc.start, tc.end, tc.allowedDays)
			if got != tc.want {
				t.Errorf("CountReadingDaysBetween(%s, %s, %v) = %d, want %d", tc.start, tc.end, tc.allowedDays, got, tc.want)
			}
		})
	}
}

func TestDateForReadingDay(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		ordinal     int
		allowedDays []int
		want        string
	}{
		{"BaseCountsWhenAllowed", "2024-01-01", 1, []int{1}, "2024-01-01"},
		{"SkipsToFirstMatch", "2024-01-02", 1, []int{1}, "2024-01-08"},
		{"EveryDay", "2024-01-30", 3, nil, "2024-02-01"},
		{"MonWedFriFourth", "2024-01-01", 4, []int{1, 3, 5}, "2024-01-08"},
		{"WrapsWeekWithinPattern", "2024-01-05", 2, []int{1, 5}, "2024-01-08"},
		{"LongSundayPlan", "2024-01-07", 53, []int{0}, "2025-01-05"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := DateForReadingDay(tc.base, tc.ordinal, tc.allowedDays)
			if !ok {
				t.Fatalf("DateForReadingDay returned no date")
			}
			if got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		if _, ok := DateForReadingDay("2024-01-01", 0, nil); ok {
			t.Error("ordinal 0 should fail")
		}
		if _, ok := DateForReadingDay("01/01/2024", 1, nil); ok {
			t.Error("bad date should fail")
		}
		if _, ok := DateForReadingDay("2024-01-01", 1, []int{7, -1}); ok {
			t.Error("weekday set matching nothing should fail")
		}
		if _, ok := DateForReadingDay("2024-01-01", 7*366*MaxYearsAhead, []int{0}); ok {
			t.Error("ordinal beyond the horizon should fail")
		}
		for _, ordinal := range []int{1 << 60, math.MaxInt} {
			if got, ok := DateForReadingDay("2024-01-01", ordinal, nil); ok {
				t.Errorf("ordinal %d: got %s, want failure", ordinal, got)
			}
			if got, ok := DateForReadingDay("2024-01-01", ordinal, []int{1, 3, 5}); ok {
				t.Errorf("ordinal %d on Mon/Wed/Fri: got %s, want failure", ordinal, got)
			}
		}
	})
}

func TestDateForReadingDayMonotonic(t *testing.T) {
	patterns := [][]int{nil, {0}, {1, 3, 5}, {6, 0}, {0, 1, 2, 3, 4, 5}}
	for _, allowed := range patterns {
		prev := ""
		for k := 1; k <= 400; k++ {
			got, ok := DateForReadingDay("2023-12-29", k, allowed)
			if !ok {
				t.Fatalf("allowed=%v k=%d: no date", allowed, k)
			}
			if got <= prev {
				t.Fatalf("allowed=%v k=%d: %s not after %s", allowed, k, got, prev)
			}
			d, _ := ParseDate(got)
			if len(allowed) > 0 && !slices.Contains(allowed, int(d.Weekday())) {
				t.Fatalf("allowed=%v k=%d: %s falls on weekday %d", allowed, k, got, d.Weekday())
			}
			prev = got
		}
	}
}

func TestDateAndCountAgree(t *testing.T) {
	allowed := []int{2, 4, 6}
	for k := 1; k <= 60; k++ {
		date, ok := DateForReadingDay("2024-03-01", k, allowed)
		if !ok {
			t.Fatalf("k=%d: no date", k)
		}
		if n := CountReadingDaysBetween("2024-03-01", date, allowed); n != k {
			t.Errorf("k=%d: count up to %s is %d", k, date, n)
		}
	}
}

func TestEffectiveDateForPlanDay(t *testing.T) {
	a := Anchors{StartDate: "2024-01-01", AllowedDays: []int{1, 3, 5}}

	got, ok := EffectiveDateForPlanDay(a, 2)
	if !ok || got != "2024-01-03" {
		t.Errorf("original schedule: got %s, %v", got, ok)
	}

	a.BaseDay = 5
	a.BaseDate = "2024-02-01" // Thursday
	got, ok = EffectiveDateForPlanDay(a, 5)
	if !ok || got != "2024-02-02" {
		t.Errorf("base day: got %s, %v", got, ok)
	}
	got, ok = EffectiveDateForPlanDay(a, 6)
	if !ok || got != "2024-02-05" {
		t.Errorf("after base day: got %s, %v", got, ok)
	}
	got, ok = EffectiveDateForPlanDay(a, 4)
	if !ok || got != "2024-01-08" {
		t.Errorf("before base day: got %s, %v", got, ok)
	}

	if _, ok := EffectiveDateForPlanDay(a, 0); ok {
		t.Error("ordinal 0 should fail")
	}
	if _, ok := EffectiveDateForPlanDay(Anchors{}, 1); ok {
		t.Error("missing start date should fail")
	}
}

func TestNormalizeWeekdays(t *testing.T) {
	got, err := NormalizeWeekdays([]int{5, 1, 5, 3})
	if err != nil {
		t.Fatalf("NormalizeWeekdays: %v", err)
	}
	if !slices.Equal(got, []int{1, 3, 5}) {
		t.Errorf("got %v", got)
	}
	if _, err := NormalizeWeekdays([]int{1, 7}); !errors.Is(err, ErrInvalidWeekday) {
		t.Errorf("expected ErrInvalidWeekday, got %v", err)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2024-02-28", 2)
	if err != nil || got != "2024-03-01" {
		t.Errorf("AddDays: got %s, %v", got, err)
	}
	if _, err := AddDays("2024-01-01", math.MaxInt); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("huge shift: expected ErrOutOfRange, got %v", err)
	}
	if _, err := AddDays("2024-1-1", 1); err == nil {
		t.Error("bad date should fail")
	}
}
