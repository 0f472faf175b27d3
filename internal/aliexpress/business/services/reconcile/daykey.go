package reconcile

import "time"

const dayKeyLayout = "2006-01-02"

// Clock yields calendar-day keys in the catalog's fixed local time zone.
// Price history is indexed by these keys, one observation per day.
type Clock struct {
	loc *time.Location
}

// NewClock pins the clock to Korea Standard Time; day keys roll at KST
// midnight. KST has no DST, so the fixed-zone fallback is exact.
func NewClock() *Clock {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return &Clock{loc: loc}
}

// DayKey formats t as the calendar-day key of the clock's zone.
func (c *Clock) DayKey(t time.Time) string {
	return t.In(c.loc).Format(dayKeyLayout)
}

// Today returns the day key for the current instant.
func (c *Clock) Today() string {
	return c.DayKey(time.Now())
}
