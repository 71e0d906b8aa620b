package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attendanceStub struct {
	absentDays []time.Time
	closeDays  []time.Time
	err        error
}

func (m *attendanceStub) MarkAbsent(ctx context.Context, day time.Time) (int, error) {
	m.absentDays = append(m.absentDays, day)
	return 3, m.err
}

func (m *attendanceStub) CloseStale(ctx context.Context, day time.Time) (int, error) {
	m.closeDays = append(m.closeDays, day)
	return 1, m.err
}

func TestMarkAbsentEmployees_UsesPreviousDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	stub := &attendanceStub{}
	jobs := NewAttendanceJobs(stub, "0 0 * * *", "5 0 * * *", ist)
	// 20:00 UTC on the 9th is already the 10th in IST.
	jobs.now = func() time.Time { return time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.MarkAbsentEmployees(context.Background()))
	require.Len(t, stub.absentDays, 1)
	assert.Equal(t, "2025-03-09", stub.absentDays[0].Format("2006-01-02"))
}

func TestAutoCloseStaleAttendances_UsesToday(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	stub := &attendanceStub{}
	jobs := NewAttendanceJobs(stub, "0 0 * * *", "", ist)
	jobs.now = func() time.Time { return time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC) }

	require.NoError(t, jobs.AutoCloseStaleAttendances(context.Background()))
	require.Len(t, stub.closeDays, 1)
	assert.Equal(t, "2025-03-10", stub.closeDays[0].Format("2006-01-02"))
}

func TestAttendanceJobs_WrapErrors(t *testing.T) {
	stub := &attendanceStub{err: errors.New("boom")}
	jobs := NewAttendanceJobs(stub, "0 0 * * *", "5 0 * * *", time.UTC)

	assert.ErrorIs(t, jobs.MarkAbsentEmployees(context.Background()), stub.err)
	assert.ErrorIs(t, jobs.AutoCloseStaleAttendances(context.Background()), stub.err)
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	assert.Error(t, NewAttendanceJobs(&attendanceStub{}, "not a spec", "", time.UTC).RegisterJobs(NewScheduler(time.UTC)))
	assert.Error(t, NewAttendanceJobs(&attendanceStub{}, "@daily", "not a spec", time.UTC).RegisterJobs(NewScheduler(time.UTC)))
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(time.UTC)
	stub := &attendanceStub{}
	require.NoError(t, NewAttendanceJobs(stub, "@daily", "@daily", time.UTC).RegisterJobs(s))

	s.RunOnce(context.Background())
	assert.Len(t, stub.closeDays, 1)
	assert.Len(t, stub.absentDays, 1)
}

func TestScheduler_AbsentJobOptional(t *testing.T) {
	s := NewScheduler(time.UTC)
	stub := &attendanceStub{}
	require.NoError(t, NewAttendanceJobs(stub, "@daily", "", time.UTC).RegisterJobs(s))

	s.RunOnce(context.Background())
	assert.Len(t, stub.closeDays, 1)
	assert.Empty(t, stub.absentDays)
}
