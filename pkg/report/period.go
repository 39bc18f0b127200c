package report

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of report dates
const DateLayout = "2006-01-02"

// Period is an inclusive range of whole days
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod builds a period from two ISO dates
func ParsePeriod(start, end string) (Period, error) {
	s, err := time.ParseInLocation(DateLayout, start, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DateLayout, end, time.UTC)
	if err != nil {
		return Period{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	p := Period{Start: s, End: e}
	if p.End.Before(p.Start) {
		return Period{}, fmt.Errorf("period end %s precedes start %s", end, start)
	}
	return p, nil
}

// StartDate returns the start as YYYY-MM-DD
func (p Period) StartDate() string { return p.Start.Format(DateLayout) }

// EndDate returns the end as YYYY-MM-DD
func (p Period) EndDate() string { return p.End.Format(DateLayout) }

// Days counts the days in the period, both ends included
func (p Period) Days() int {
	start := truncate(p.Start)
	end := truncate(p.End)
	return int(end.Sub(start).Hours()/24) + 1
}

func (p Period) String() string {
	return p.StartDate() + ".." + p.EndDate()
}

// HalvePeriod splits p into two contiguous whole-day periods. The earlier
// half gets the extra day when the day count is odd. A single-day period
// cannot be split.
func HalvePeriod(p Period) (Period, Period, error) {
	days := p.Days()
	if days < 2 {
		return Period{}, Period{}, fmt.Errorf("period %s cannot be split", p)
	}

	start := truncate(p.Start)
	mid := start.AddDate(0, 0, (days+1)/2-1)

	return Period{Start: start, End: mid},
		Period{Start: mid.AddDate(0, 0, 1), End: truncate(p.End)},
		nil
}

func truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
