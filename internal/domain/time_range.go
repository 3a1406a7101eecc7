package domain

import (
	"fmt"
	"time"
)

const (
	DayLayout = "2006-01-02"
	day       = 24 * time.Hour
)

// TimeRange is a half-open interval [Start, End).
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange builds a range, rejecting empty or inverted intervals.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w: %s >= %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{Start: start, End: end}, nil
}

// ParseDayRange parses two yyyy-mm-dd dates in loc. The end date is exclusive.
func ParseDayRange(startStr, endStr string, loc *time.Location) (TimeRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	start, err := time.ParseInLocation(DayLayout, startStr, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: start date: %v", ErrInvalidRange, err)
	}
	end, err := time.ParseInLocation(DayLayout, endStr, loc)
	if err != nil {
		return TimeRange{}, fmt.Errorf("%w: end date: %v", ErrInvalidRange, err)
	}
	return NewTimeRange(start, end)
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

func (r TimeRange) ContainsInstant(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Intersect returns the overlapping part of both ranges, if any.
func (r TimeRange) Intersect(other TimeRange) (TimeRange, bool) {
	if !r.Overlaps(other) {
		return TimeRange{}, false
	}
	start := r.Start
	if other.Start.After(start) {
		start = other.Start
	}
	end := r.End
	if other.End.Before(end) {
		end = other.End
	}
	return TimeRange{Start: start, End: end}, true
}

// DurationDays counts started calendar days in the location of Start:
// day1 00:00 to day3 00:00 is 2, day1 10:00 to day2 11:00 is 2. A day that
// is 23h or 25h long across a DST change still counts as one.
func (r TimeRange) DurationDays() int {
	start := r.Start
	end := r.End.In(start.Location())

	dateStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	dateEnd := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	days := int(dateEnd.Sub(dateStart) / day)
	if clock(end) > clock(start) {
		days++
	}
	return days
}

// clock is the wall-clock offset into the day.
func clock(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// Shift moves both ends by the given number of calendar days.
func (r TimeRange) Shift(days int) TimeRange {
	return TimeRange{
		Start: r.Start.AddDate(0, 0, days),
		End:   r.End.AddDate(0, 0, days),
	}
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
}
