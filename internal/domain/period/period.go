// internal/domain/period/period.go
package period

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Period is a reporting window keyword.
type Period string

const (
	Today Period = "today"
	Week  Period = "week"
	Month Period = "month"
)

// ErrInvalidPeriod is returned for any keyword outside {today, week, month}.
var ErrInvalidPeriod = errors.New("invalid report period")

// DateLayout is the ISO calendar date layout used for visit dates.
const DateLayout = "2006-01-02"

// All lists the periods in menu order.
var All = []Period{Today, Week, Month}

// Parse maps a keyword (case-insensitive, surrounding spaces ignored) to a Period.
func Parse(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return p, nil
}

func (p Period) Valid() bool {
	switch p {
	case Today, Week, Month:
		return true
	}
	return false
}

// Label is the Arabic name shown to users ("اليوم", "الأسبوع", "الشهر").
func (p Period) Label() string {
	switch p {
	case Today:
		return "اليوم"
	case Week:
		return "الأسبوع"
	case Month:
		return "الشهر"
	default:
		return string(p)
	}
}

// Range is an inclusive [Start, End] span of calendar dates.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls on a day inside the range.
func (r Range) Contains(d time.Time) bool {
	day := DateOf(d)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Days is the number of calendar days covered, bounds included.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

func (r Range) String() string {
	return r.Start.Format(DateLayout) + " → " + r.End.Format(DateLayout)
}

// DateOf strips the clock from t, keeping its calendar day in t's own location,
// and returns midnight UTC of that day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Resolver turns a Period into a date range.
// WeekStart anchors the business week; the zero value (Sunday) is valid.
type Resolver struct {
	WeekStart time.Weekday
}

// NewResolver returns a Resolver whose weeks begin on weekStart.
func NewResolver(weekStart time.Weekday) Resolver {
	return Resolver{WeekStart: weekStart}
}

// Resolve maps p to an inclusive range anchored on today. It is pure: the same
// inputs always produce the same range.
func (r Resolver) Resolve(p Period, today time.Time) (Range, error) {
	day := DateOf(today)

	switch p {
	case Today:
		return Range{Start: day, End: day}, nil
	case Week:
		offset := (int(day.Weekday()) - int(r.WeekStart) + 7) % 7
		start := day.AddDate(0, 0, -offset)
		return Range{Start: start, End: start.AddDate(0, 0, 6)}, nil
	case Month:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		// time.Date normalises month 13 into January of the following year.
		firstOfNext := time.Date(day.Year(), day.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		return Range{Start: start, End: firstOfNext.AddDate(0, 0, -1)}, nil
	default:
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, string(p))
	}
}

// ParseWeekday accepts English weekday names ("friday", "Fri") used in configuration.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
