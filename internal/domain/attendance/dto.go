package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-ledger/internal/pkg/validator"
)

type EntryResponse struct {
	Date            string  `json:"date"`
	CheckIn         *string `json:"check_in"`
	CheckOut        *string `json:"check_out"`
	OvertimeMinutes int     `json:"overtime_minutes"`
	Overtime        string  `json:"overtime"`
	Status          string  `json:"status"`
	EmployeeName    string  `json:"employee_name"`
	BadgeID         string  `json:"badge_id"`
	Department      string  `json:"department,omitempty"`
	JobRole         string  `json:"job_role,omitempty"`
	Shift           string  `json:"shift,omitempty"`
	WorkType        string  `json:"work_type,omitempty"`
}

// ToResponse renders the entry with timestamps formatted in loc.
func (e Entry) ToResponse(loc *time.Location) EntryResponse {
	return EntryResponse{
		Date:            e.Date,
		CheckIn:         formatTime(e.CheckIn, loc),
		CheckOut:        formatTime(e.CheckOut, loc),
		OvertimeMinutes: e.OvertimeMinutes,
		Overtime:        e.Overtime,
		Status:          string(e.Status),
		EmployeeName:    e.EmployeeName,
		BadgeID:         e.BadgeID,
		Department:      e.Department,
		JobRole:         e.JobRole,
		Shift:           e.Shift,
		WorkType:        e.WorkType,
	}
}

func formatTime(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(time.RFC3339)
	return &s
}

type CheckInResponse struct {
	Entry          EntryResponse `json:"entry"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
}

type StatusResponse struct {
	CheckedIn      bool           `json:"checked_in"`
	Entry          *EntryResponse `json:"entry,omitempty"`
	ElapsedSeconds int64          `json:"elapsed_seconds"`
}

type DeleteEntryRequest struct {
	EmployeeID string `json:"-"`
	Date       string `json:"date"`
}

func (r *DeleteEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RangeFilter struct {
	EmployeeID string
	Month      int
	Year       int
}

func (f *RangeFilter) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if !validator.IsValidMonth(f.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}
	if f.Year < 1970 || f.Year > 9999 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 1970 and 9999",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DayRowResponse struct {
	Date     string  `json:"date"`
	Weekday  string  `json:"weekday"`
	Mark     string  `json:"mark"`
	CheckIn  *string `json:"check_in,omitempty"`
	CheckOut *string `json:"check_out,omitempty"`
	Overtime string  `json:"overtime,omitempty"`
}

type SummaryResponse struct {
	Present       int    `json:"present"`
	Pending       int    `json:"pending"`
	Absent        int    `json:"absent"`
	Upcoming      int    `json:"upcoming"`
	WorkedMinutes int    `json:"worked_minutes"`
	Worked        string `json:"worked"`
}

type MonthResponse struct {
	EmployeeID string           `json:"employee_id"`
	Month      int              `json:"month"`
	Year       int              `json:"year"`
	Days       []DayRowResponse `json:"days"`
	Summary    SummaryResponse  `json:"summary"`
}

// NewMonthResponse renders calendar rows and their summary.
func NewMonthResponse(employeeID string, year int, month time.Month, rows []DayRow, loc *time.Location) MonthResponse {
	days := make([]DayRowResponse, 0, len(rows))
	for _, r := range rows {
		d := DayRowResponse{
			Date:    r.Date,
			Weekday: r.Weekday.String(),
			Mark:    r.Mark,
		}
		if r.Entry != nil {
			d.CheckIn = formatTime(r.Entry.CheckIn, loc)
			d.CheckOut = formatTime(r.Entry.CheckOut, loc)
			d.Overtime = r.Entry.Overtime
		}
		days = append(days, d)
	}

	s := Summarize(rows)
	return MonthResponse{
		EmployeeID: employeeID,
		Month:      int(month),
		Year:       year,
		Days:       days,
		Summary: SummaryResponse{
			Present:       s.Present,
			Pending:       s.Pending,
			Absent:        s.Absent,
			Upcoming:      s.Upcoming,
			WorkedMinutes: s.WorkedMinutes,
			Worked:        FormatOvertime(s.WorkedMinutes),
		},
	}
}

