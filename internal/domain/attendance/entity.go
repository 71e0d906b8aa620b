package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/ledger"
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
	// AutoClosed entries were left open past their day and closed without
	// worked time.
	StatusAutoClosed Status = "AutoClosed"
)

// Entry is one day of attendance inside an employee's ledger.
type Entry struct {
	Date            string     `json:"date"`
	CheckIn         *time.Time `json:"check_in"`
	CheckOut        *time.Time `json:"check_out"`
	OvertimeMinutes int        `json:"overtime_minutes"`
	Overtime        string     `json:"overtime"`
	Status          Status     `json:"status"`
	employee.Snapshot
}

// IsOpen reports whether the entry is checked in but not out.
func (e Entry) IsOpen() bool {
	return e.CheckIn != nil && e.CheckOut == nil && e.Status == StatusPending
}

// Elapsed returns the running time of an open entry at now.
func (e Entry) Elapsed(now time.Time) time.Duration {
	if e.CheckIn == nil {
		return 0
	}
	if e.CheckOut != nil {
		return e.CheckOut.Sub(*e.CheckIn)
	}
	if now.Before(*e.CheckIn) {
		return 0
	}
	return now.Sub(*e.CheckIn)
}

type Ledger = ledger.Document[Entry]

// Entries is the attendance array of one employee.
type Entries []Entry

// Open returns the index of the open entry, if any.
func (es Entries) Open() (int, bool) {
	for i, e := range es {
		if e.IsOpen() {
			return i, true
		}
	}
	return -1, false
}

// OpenOn returns the index of the entry open on date. Entries left open on
// an earlier day do not count.
func (es Entries) OpenOn(date string) (int, bool) {
	i, open := es.Open()
	if !open || es[i].Date != date {
		return -1, false
	}
	return i, true
}

// CloseStale auto-closes every entry still open on a day before today. The
// check-out is set to the check-in, so no worked time is credited.
func (es Entries) CloseStale(today string) (Entries, int) {
	closed := 0
	out := make(Entries, len(es))
	copy(out, es)
	for i, e := range out {
		if !e.IsOpen() || e.Date >= today {
			continue
		}
		checkOut := *e.CheckIn
		out[i].CheckOut = &checkOut
		out[i].OvertimeMinutes = 0
		out[i].Overtime = FormatOvertime(0)
		out[i].Status = StatusAutoClosed
		closed++
	}
	if closed == 0 {
		return es, 0
	}
	return out, closed
}

// ForDate returns the index of the entry for date.
func (es Entries) ForDate(date string) (int, bool) {
	for i, e := range es {
		if e.Date == date {
			return i, true
		}
	}
	return -1, false
}

// CheckIn appends an open entry for the calendar day of now. Entries left
// open on earlier days are auto-closed first.
func (es Entries) CheckIn(now time.Time, snap employee.Snapshot) (Entries, Entry, error) {
	date := now.Format(ledger.DateLayout)
	es, _ = es.CloseStale(date)
	if _, open := es.Open(); open {
		return es, Entry{}, ErrAlreadyCheckedIn
	}
	if i, found := es.ForDate(date); found && es[i].Status != StatusAbsent {
		return es, Entry{}, ErrAttendanceExistsForDate
	}

	checkIn := now
	entry := Entry{
		Date:     date,
		CheckIn:  &checkIn,
		Status:   StatusPending,
		Snapshot: snap,
	}

	out := make(Entries, 0, len(es)+1)
	for _, e := range es {
		// a materialised Absent row for today is replaced by the real check-in
		if e.Date == date {
			continue
		}
		out = append(out, e)
	}
	return append(out, entry), entry, nil
}

// CheckOut closes today's open entry at now. An entry left open on an
// earlier day is not closed here; CloseStale handles it.
func (es Entries) CheckOut(now time.Time) (Entries, Entry, error) {
	i, open := es.OpenOn(now.Format(ledger.DateLayout))
	if !open {
		return es, Entry{}, ErrNotCheckedIn
	}

	out := make(Entries, len(es))
	copy(out, es)

	checkOut := now
	if checkOut.Before(*out[i].CheckIn) {
		checkOut = *out[i].CheckIn
	}
	minutes := OvertimeMinutes(*out[i].CheckIn, checkOut)
	out[i].CheckOut = &checkOut
	out[i].OvertimeMinutes = minutes
	out[i].Overtime = FormatOvertime(minutes)
	out[i].Status = StatusPresent
	return out, out[i], nil
}

// Remove drops the entry for date. The second return is false when there was
// nothing to remove.
func (es Entries) Remove(date string) (Entries, bool) {
	i, found := es.ForDate(date)
	if !found {
		return es, false
	}
	out := make(Entries, 0, len(es)-1)
	out = append(out, es[:i]...)
	return append(out, es[i+1:]...), true
}

// MarkAbsent records an Absent row for date unless the day already has one.
func (es Entries) MarkAbsent(date string, snap employee.Snapshot) (Entries, bool) {
	if _, found := es.ForDate(date); found {
		return es, false
	}
	return append(es, Entry{Date: date, Status: StatusAbsent, Snapshot: snap}), true
}

// NewestFirst returns a copy sorted by date descending.
func (es Entries) NewestFirst() Entries {
	out := make(Entries, len(es))
	copy(out, es)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// OvertimeMinutes is the whole minutes between check-in and check-out.
func OvertimeMinutes(in, out time.Time) int {
	if !out.After(in) {
		return 0
	}
	return int(out.Sub(in) / time.Minute)
}

// FormatOvertime renders minutes as "H hr M min".
func FormatOvertime(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d hr %d min", minutes/60, minutes%60)
}

// Day marks shown in calendar views.
const (
	MarkPresent  = "P"
	MarkPending  = "Pending"
	MarkAbsent   = "A"
	MarkUpcoming = "-"
)

type DayRow struct {
	Date            string
	Weekday         time.Weekday
	Mark            string
	Entry           *Entry
	OvertimeMinutes int
}

// DailyRows produces one row per calendar day of month. Days before today
// without an entry are absent; today and later without an entry are upcoming.
func (es Entries) DailyRows(year int, month time.Month, today time.Time) []DayRow {
	byDate := make(map[string]Entry, len(es))
	for _, e := range es {
		byDate[e.Date] = e
	}
	todayStr := today.Format(ledger.DateLayout)

	days := ledger.DaysIn(year, month)
	rows := make([]DayRow, 0, days)
	for d := 1; d <= days; d++ {
		day := time.Date(year, month, d, 0, 0, 0, 0, today.Location())
		date := day.Format(ledger.DateLayout)
		row := DayRow{Date: date, Weekday: day.Weekday()}

		if e, ok := byDate[date]; ok {
			entry := e
			row.Entry = &entry
			switch {
			case e.Status == StatusPresent, e.Status == StatusAutoClosed:
				row.Mark = MarkPresent
				row.OvertimeMinutes = e.OvertimeMinutes
			case e.IsOpen():
				row.Mark = MarkPending
			default:
				row.Mark = MarkAbsent
			}
		} else if date < todayStr {
			row.Mark = MarkAbsent
		} else {
			row.Mark = MarkUpcoming
		}
		rows = append(rows, row)
	}
	return rows
}

type Summary struct {
	Present       int
	Pending       int
	Absent        int
	Upcoming      int
	WorkedMinutes int
}

// Summarize counts the marks of rows.
func Summarize(rows []DayRow) Summary {
	var s Summary
	for _, r := range rows {
		switch r.Mark {
		case MarkPresent:
			s.Present++
		case MarkPending:
			s.Pending++
		case MarkAbsent:
			s.Absent++
		default:
			s.Upcoming++
		}
		s.WorkedMinutes += r.OvertimeMinutes
	}
	return s
}
