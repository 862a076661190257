// internal/calendar/calendar.go
package calendar

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// DateLayout is the storage format of every calendar date (UTC).
const DateLayout = "2006-01-02"

// MaxYearsAhead bounds how far past its base date a reading day may fall.
const MaxYearsAhead = 100

// MaxReadingDays is the most calendar days, and so the most reading days,
// that fit in MaxYearsAhead years.
const MaxReadingDays = MaxYearsAhead * 366

var (
	// ErrInvalidWeekday is returned by NormalizeWeekdays for values outside 0..6.
	ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrOutOfRange     = errors.New("date shift exceeds the scheduling horizon")
)

// ParseDate parses a YYYY-MM-DD string as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) string {
	return FormatDate(now)
}

// IsDate reports whether s is a valid YYYY-MM-DD date.
func IsDate(s string) bool {
	_, err := ParseDate(s)
	return err == nil
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	if n > MaxReadingDays || n < -MaxReadingDays {
		return "", fmt.Errorf("%w: %d days", ErrOutOfRange, n)
	}
	return FormatDate(d.AddDate(0, 0, n)), nil
}

// NormalizeWeekdays validates, deduplicates and sorts weekday indices.
// An empty input stays empty, meaning every day.
func NormalizeWeekdays(days []int) ([]int, error) {
	out := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWeekday, d)
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	slices.Sort(out)
	return out, nil
}

// weekdayMask returns which weekdays count as reading days and how many do.
// Out-of-range entries never match; an empty list matches every day.
func weekdayMask(allowedDays []int) (mask [7]bool, n int) {
	if len(allowedDays) == 0 {
		return [7]bool{true, true, true, true, true, true, true}, 7
	}
	for _, d := range allowedDays {
		if d >= 0 && d <= 6 && !mask[d] {
			mask[d] = true
			n++
		}
	}
	return mask, n
}

// DateForReadingDay returns the date of the ordinal-th reading day counted
// forward from baseDate inclusive. It reports false for invalid input, for an
// allowed-days set that matches nothing, or for a date more than
// MaxYearsAhead years past baseDate.
func DateForReadingDay(baseDate string, ordinal int, allowedDays []int) (string, bool) {
	if ordinal < 1 || ordinal > MaxReadingDays {
		return "", false
	}
	base, err := ParseDate(baseDate)
	if err != nil {
		return "", false
	}
	mask, n := weekdayMask(allowedDays)
	if n == 0 {
		return "", false
	}

	d := base
	for i := 0; i < 7 && !mask[d.Weekday()]; i++ {
		d = d.AddDate(0, 0, 1)
	}
	if !mask[d.Weekday()] {
		return "", false
	}

	// Each whole week holds exactly n reading days.
	rest := ordinal - 1
	d = d.AddDate(0, 0, 7*(rest/n))
	for k := rest % n; k > 0; {
		d = d.AddDate(0, 0, 1)
		if mask[d.Weekday()] {
			k--
		}
	}

	if d.After(base.AddDate(MaxYearsAhead, 0, 0)) {
		return "", false
	}
	return FormatDate(d), true
}

// CountReadingDaysBetween counts the reading days in [startDate, endDate].
// It returns 0 when either date is invalid or startDate is after endDate.
func CountReadingDaysBetween(startDate, endDate string, allowedDays []int) int {
	start, err := ParseDate(startDate)
	if err != nil {
		return 0
	}
	end, err := ParseDate(endDate)
	if err != nil || start.After(end) {
		return 0
	}
	mask, n := weekdayMask(allowedDays)
	if n == 0 {
		return 0
	}

	total := int((end.Unix()-start.Unix())/86400) + 1
	count := (total / 7) * n
	d := start.AddDate(0, 0, (total/7)*7)
	for i := 0; i < total%7; i++ {
		if mask[d.Weekday()] {
			count++
		}
		d = d.AddDate(0, 0, 1)
	}
	return count
}

// Anchors carries what is needed to date a plan-relative reading day.
// BaseDay of zero means the plan was never recalculated.
type Anchors struct {
	StartDate   string
	AllowedDays []int
	BaseDay     int
	BaseDate    string
}

// EffectiveDateForPlanDay resolves the calendar date of a plan ordinal,
// switching to the recalculation anchor for ordinals at or after BaseDay.
func EffectiveDateForPlanDay(a Anchors, ordinal int) (string, bool) {
	if ordinal < 1 {
		return "", false
	}
	if a.BaseDay > 0 && a.BaseDate != "" && ordinal >= a.BaseDay {
		return DateForReadingDay(a.BaseDate, ordinal-a.BaseDay+1, a.AllowedDays)
	}
	if a.StartDate == "" {
		return "", false
	}
	return DateForReadingDay(a.StartDate, ordinal, a.AllowedDays)
}
