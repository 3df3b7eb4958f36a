package reconcile

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date key format used everywhere a session or an
// entry is bucketed by day.
const DateLayout = "2006-01-02"

// DayRange returns the store-local half-open interval [start, end) covering
// the calendar date. Every component that buckets entries by day — ledger
// queries, live totals, closure, import — must go through this one function
// so live views and persisted records can never diverge.
func DayRange(date string, loc *time.Location) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return start, start.AddDate(0, 0, 1), nil
}

// DayOf returns the store-local calendar date key for a timestamp.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}
