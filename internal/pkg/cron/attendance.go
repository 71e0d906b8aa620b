package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AttendanceMaintainer is the slice of the attendance service the nightly
// jobs need.
type AttendanceMaintainer interface {
	CloseStale(ctx context.Context, day time.Time) (int, error)
	MarkAbsent(ctx context.Context, day time.Time) (int, error)
}

type AttendanceJobs struct {
	attendance AttendanceMaintainer
	closeSpec  string
	absentSpec string
	loc        *time.Location
	now        func() time.Time
}

// NewAttendanceJobs builds the attendance jobs. An empty absentSpec leaves
// absent materialisation off.
func NewAttendanceJobs(attendance AttendanceMaintainer, closeSpec, absentSpec string, loc *time.Location) *AttendanceJobs {
	return &AttendanceJobs{
		attendance: attendance,
		closeSpec:  closeSpec,
		absentSpec: absentSpec,
		loc:        loc,
		now:        time.Now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	if err := scheduler.AddJob("auto_close_stale_attendances", j.closeSpec, j.AutoCloseStaleAttendances); err != nil {
		return err
	}
	if j.absentSpec == "" {
		return nil
	}
	return scheduler.AddJob("mark_absent_employees", j.absentSpec, j.MarkAbsentEmployees)
}

// AutoCloseStaleAttendances closes every entry left open on a day before
// today, so a forgotten check-out does not block the next check-in.
func (j *AttendanceJobs) AutoCloseStaleAttendances(ctx context.Context) error {
	today := j.now().In(j.loc)
	slog.Info("Cron: Starting auto-close stale attendances job", "before", today.Format("2006-01-02"))

	closed, err := j.attendance.CloseStale(ctx, today)
	slog.Info("Cron: Auto-closed stale attendances", "count", closed)
	if err != nil {
		return fmt.Errorf("auto-close before %s: %w", today.Format("2006-01-02"), err)
	}
	return nil
}

// MarkAbsentEmployees records Absent rows for the previous calendar day, so
// the day is closed before anyone is marked.
func (j *AttendanceJobs) MarkAbsentEmployees(ctx context.Context) error {
	yesterday := j.now().In(j.loc).AddDate(0, 0, -1)
	slog.Info("Cron: Starting mark absent job", "date", yesterday.Format("2006-01-02"))

	marked, err := j.attendance.MarkAbsent(ctx, yesterday)
	slog.Info("Cron: Mark absent job finished", "marked", marked)
	if err != nil {
		return fmt.Errorf("mark absent for %s: %w", yesterday.Format("2006-01-02"), err)
	}
	return nil
}
