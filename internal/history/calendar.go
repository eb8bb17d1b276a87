package history

import (
	"sort"
	"time"

	"github.com/abhisek/rcdrill/internal/session"
)

// DateLayout is the calendar key format.
const DateLayout = "2006-01-02"

// LocalDateKey returns the YYYY-MM-DD key for t in loc. A nil loc means
// time.Local.
func LocalDateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// CalendarIndex groups results by local calendar day. It is derived from the
// history on demand and never stored.
type CalendarIndex map[string][]session.StoredResult

// BuildCalendarIndex groups results by the local day of their timestamp.
// Within a day, results keep their history order.
func BuildCalendarIndex(results []session.StoredResult, loc *time.Location) CalendarIndex {
	idx := make(CalendarIndex)
	for _, r := range results {
		key := LocalDateKey(r.Date, loc)
		idx[key] = append(idx[key], r)
	}
	return idx
}

// On returns the results recorded on the given day key.
func (c CalendarIndex) On(day string) []session.StoredResult {
	return c[day]
}

// Days returns the day keys in ascending order.
func (c CalendarIndex) Days() []string {
	days := make([]string, 0, len(c))
	for d := range c {
		days = append(days, d)
	}
	sort.Strings(days)
	return days
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Attempts int    `json:"attempts"`
	BestPct  int    `json:"bestPct"`
}

// MonthGrid lays out a month as weeks starting on Sunday. Cells outside the
// month are nil.
type MonthGrid struct {
	Year  int              `json:"year"`
	Month time.Month       `json:"month"`
	Weeks [][]*CalendarDay `json:"weeks"`
}

// Month builds the grid for one month.
func (c CalendarIndex) Month(year int, month time.Month) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()

	grid := MonthGrid{Year: year, Month: month}
	week := make([]*CalendarDay, 7)
	col := int(first.Weekday())
	for d := 1; d <= days; d++ {
		key := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(DateLayout)
		cell := &CalendarDay{Date: key, Day: d}
		for _, r := range c[key] {
			cell.Attempts++
			if r.TotalPossibleScore > 0 {
				pct := r.Score * 100 / r.TotalPossibleScore
				if cell.Attempts == 1 || pct > cell.BestPct {
					cell.BestPct = pct
				}
			}
		}
		week[col] = cell
		col++
		if col == 7 {
			grid.Weeks = append(grid.Weeks, week)
			week = make([]*CalendarDay, 7)
			col = 0
		}
	}
	if col > 0 {
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}
