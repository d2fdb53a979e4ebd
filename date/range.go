package date

import "time"

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// Year returns the calendar year as a Range, which is also the Irish tax year.
func Year(y int) Range {
	return Range{From: New(y, time.January, 1), To: New(y, time.December, 31)}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// String returns "from..to".
func (r Range) String() string { return r.From.String() + ".." + r.To.String() }
